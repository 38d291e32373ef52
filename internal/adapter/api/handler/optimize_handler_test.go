package handler

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviary/internal/optimize"
)

func newOptimizeFixture(t *testing.T) *OptimizeHandler {
	t.Helper()
	engine := optimize.NewEngine(optimize.Config{
		CacheDir:       t.TempDir(),
		MaxEntries:     10,
		FetchTimeout:   5 * time.Second,
		DefaultQuality: 80,
	})
	return NewOptimizeHandler(engine, 80)
}

func performOptimize(t *testing.T, h *OptimizeHandler, query url.Values, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/photos/optimize?"+query.Encode(), nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h.OptimizeImage(c))
	return rec
}

func TestOptimizeImageRequiresURL(t *testing.T) {
	h := newOptimizeFixture(t)
	rec := performOptimize(t, h, url.Values{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestOptimizeImageRejectsBadDimensions(t *testing.T) {
	h := newOptimizeFixture(t)

	for _, dim := range []string{"abc", "0", "-5", "1.5"} {
		query := url.Values{"url": {"http://example.com/a.png"}, "width": {dim}}
		rec := performOptimize(t, h, query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "width=%s", dim)
	}
}

func TestOptimizeImageServesRendition(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer source.Close()

	h := newOptimizeFixture(t)
	query := url.Values{"url": {source.URL}, "format": {"png"}}
	rec := performOptimize(t, h, query, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
}

func TestOptimizeImageUpstreamFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	h := newOptimizeFixture(t)
	query := url.Values{"url": {source.URL}}
	rec := performOptimize(t, h, query, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_FAILED")
}
