package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"

	"aviary/internal/domain/service"
)

// FivemerrBackend talks to the Fivemerr media CDN directly; there is no
// official client library.
type FivemerrBackend struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewFivemerrBackend(apiURL, apiKey string) *FivemerrBackend {
	return &FivemerrBackend{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (b *FivemerrBackend) Name() string {
	return "fivemerr"
}

type fivemerrUploadResponse struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Size int64  `json:"size"`
}

func (b *FivemerrBackend) Upload(ctx context.Context, file io.Reader, filename string) (*service.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentTypeFor(filename))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build fivemerr request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build fivemerr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", b.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fivemerr upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fivemerr upload failed: status %d", resp.StatusCode)
	}

	var uploadResp fivemerrUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, fmt.Errorf("failed to parse fivemerr response: %w", err)
	}

	return &service.UploadResult{
		URL:  uploadResp.URL,
		ID:   uploadResp.ID,
		Size: uploadResp.Size,
	}, nil
}

func (b *FivemerrBackend) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", b.apiURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fivemerr deletion failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fivemerr deletion failed: status %d", resp.StatusCode)
	}

	return nil
}

// contentTypeFor is kept close to the upload path; Fivemerr infers the
// type from the part but some proxies want it explicit.
func contentTypeFor(filename string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(filename)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}
