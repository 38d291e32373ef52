package optimize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "aviary/pkg/errors"
	"aviary/pkg/logger"
)

// Request are the normalized parameters of one optimization. Width and
// Height stay raw query strings so that absent dimensions fingerprint as
// "" regardless of the caller.
type Request struct {
	URL     string
	Width   string
	Height  string
	Quality int
	Format  string
}

// Result is ready for a direct HTTP response.
type Result struct {
	Data        []byte
	ContentType string
	Headers     map[string]string
}

type Config struct {
	CacheDir       string
	MaxEntries     int
	FetchTimeout   time.Duration
	DefaultQuality int
}

type cacheEntry struct {
	data        []byte
	contentType string
	lastAccess  time.Time
}

// Engine serves re-encoded image renditions through a two-tier cache:
// a bounded in-memory table in front of an unbounded disk mirror.
type Engine struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	cacheDir   string
	maxEntries int
	httpClient *http.Client
}

func NewEngine(cfg Config) *Engine {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		logger.Warn("Failed to create image cache dir %s: %v", cfg.CacheDir, err)
	}

	return &Engine{
		entries:    make(map[string]*cacheEntry),
		cacheDir:   cfg.CacheDir,
		maxEntries: cfg.MaxEntries,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Fingerprint is the deterministic cache key for one rendition.
func Fingerprint(req Request) string {
	input := strings.Join([]string{
		req.URL,
		req.Width,
		req.Height,
		strconv.Itoa(req.Quality),
		req.Format,
	}, "|")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Get serves a rendition: memory tier, then disk tier, then a full
// fetch/transform/encode round trip that populates both tiers.
func (e *Engine) Get(req Request) (*Result, error) {
	key := Fingerprint(req)

	if entry := e.lookup(key); entry != nil {
		result := e.buildResult(entry.data, req.Format)
		result.Headers["X-Cache"] = "HIT"
		return result, nil
	}

	if data, ok := e.readDisk(key, req.Format); ok {
		if e.insert(key, data, req.Format) {
			go e.sweep()
		}
		result := e.buildResult(data, req.Format)
		result.Headers["X-Cache"] = "DISK"
		return result, nil
	}

	source, err := e.fetch(req.URL)
	if err != nil {
		return nil, err
	}

	data, err := transform(source, req.Width, req.Height, req.Quality, req.Format)
	if err != nil {
		return nil, apperrors.New("TRANSFORM_FAILED", "Failed to process image", http.StatusInternalServerError, err)
	}

	e.writeDisk(key, req.Format, data)
	if e.insert(key, data, req.Format) {
		go e.sweep()
	}

	result := e.buildResult(data, req.Format)
	result.Headers["X-Cache"] = "MISS"
	return result, nil
}

func (e *Engine) buildResult(data []byte, format string) *Result {
	sum := sha256.Sum256(data)
	return &Result{
		Data:        data,
		ContentType: ContentTypeForFormat(format),
		Headers: map[string]string{
			"Cache-Control": "public, max-age=31536000, immutable",
			"Vary":          "Accept",
			"ETag":          fmt.Sprintf("%q", hex.EncodeToString(sum[:16])),
		},
	}
}

// lookup is the fast path; it touches only the memory table.
func (e *Engine) lookup(key string) *cacheEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[key]
	if !ok {
		return nil
	}
	entry.lastAccess = time.Now()
	return entry
}

// insert stores the entry and reports whether the table is over its
// bound, in which case the caller dispatches a sweep off the hot path.
func (e *Engine) insert(key string, data []byte, format string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries[key] = &cacheEntry{
		data:        data,
		contentType: ContentTypeForFormat(format),
		lastAccess:  time.Now(),
	}
	return len(e.entries) > e.maxEntries
}

// sweep evicts the least recently accessed half of the table. Safe to run
// concurrently; the table lock serializes the actual mutation.
func (e *Engine) sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.entries) <= e.maxEntries {
		return
	}

	type keyed struct {
		key        string
		lastAccess time.Time
	}
	ordered := make([]keyed, 0, len(e.entries))
	for key, entry := range e.entries {
		ordered = append(ordered, keyed{key, entry.lastAccess})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].lastAccess.Before(ordered[j].lastAccess)
	})

	evict := (len(ordered) + 1) / 2
	for _, k := range ordered[:evict] {
		delete(e.entries, k.key)
	}
}

// Len reports the current memory-tier size.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

func (e *Engine) diskPath(key, format string) string {
	return filepath.Join(e.cacheDir, key+"."+extForFormat(format))
}

func (e *Engine) readDisk(key, format string) ([]byte, bool) {
	data, err := os.ReadFile(e.diskPath(key, format))
	if err != nil {
		return nil, false
	}
	return data, true
}

// writeDisk is best effort; concurrent writers for the same key produce
// identical content, so the last overwrite is harmless.
func (e *Engine) writeDisk(key, format string, data []byte) {
	if err := os.WriteFile(e.diskPath(key, format), data, 0o644); err != nil {
		logger.Warn("Failed to write image cache file: %v", err)
	}
}

func (e *Engine) fetch(url string) ([]byte, error) {
	resp, err := e.httpClient.Get(url)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, apperrors.GatewayTimeout("Timed out fetching source image", err)
		}
		return nil, apperrors.BadGateway("Failed to fetch source image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.BadGateway(fmt.Sprintf("Source image fetch returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, apperrors.GatewayTimeout("Timed out fetching source image", err)
		}
		return nil, apperrors.BadGateway("Failed to read source image", err)
	}

	return data, nil
}
