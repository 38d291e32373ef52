package optimize

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aviary/pkg/errors"
)

func testEngine(t *testing.T, maxEntries int, timeout time.Duration) *Engine {
	t.Helper()
	return NewEngine(Config{
		CacheDir:       t.TempDir(),
		MaxEntries:     maxEntries,
		FetchTimeout:   timeout,
		DefaultQuality: 80,
	})
}

func sourcePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sourceServer(t *testing.T, body []byte, hits *int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFingerprintAbsentDimensionsCollide(t *testing.T) {
	a := Fingerprint(Request{URL: "http://example.com/a.png", Width: "", Height: "", Quality: 80, Format: FormatWebP})
	b := Fingerprint(Request{URL: "http://example.com/a.png", Width: "", Height: "", Quality: 80, Format: FormatWebP})
	assert.Equal(t, a, b)

	c := Fingerprint(Request{URL: "http://example.com/a.png", Width: "100", Height: "", Quality: 80, Format: FormatWebP})
	assert.NotEqual(t, a, c)

	d := Fingerprint(Request{URL: "http://example.com/a.png", Width: "", Height: "", Quality: 70, Format: FormatWebP})
	assert.NotEqual(t, a, d)
}

func TestRepeatedRequestSkipsUpstreamFetch(t *testing.T) {
	var hits int64
	server := sourceServer(t, sourcePNG(t, 40, 40), &hits)
	engine := testEngine(t, 10, 5*time.Second)

	req := Request{URL: server.URL, Quality: 80, Format: FormatPNG}

	first, err := engine.Get(req)
	require.NoError(t, err)
	assert.Equal(t, "MISS", first.Headers["X-Cache"])

	second, err := engine.Get(req)
	require.NoError(t, err)
	assert.Equal(t, "HIT", second.Headers["X-Cache"])
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestDiskTierSurvivesRestart(t *testing.T) {
	var hits int64
	server := sourceServer(t, sourcePNG(t, 40, 40), &hits)

	cacheDir := t.TempDir()
	cfg := Config{CacheDir: cacheDir, MaxEntries: 10, FetchTimeout: 5 * time.Second, DefaultQuality: 80}
	req := Request{URL: server.URL, Quality: 80, Format: FormatPNG}

	first, err := NewEngine(cfg).Get(req)
	require.NoError(t, err)

	// fresh engine, cold memory, same disk
	restarted := NewEngine(cfg)
	second, err := restarted.Get(req)
	require.NoError(t, err)
	assert.Equal(t, "DISK", second.Headers["X-Cache"])
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))

	// promotion lands in memory
	third, err := restarted.Get(req)
	require.NoError(t, err)
	assert.Equal(t, "HIT", third.Headers["X-Cache"])
}

func TestSweepKeepsMostRecentlyAccessedHalf(t *testing.T) {
	engine := testEngine(t, 4, time.Second)

	base := time.Now()
	keys := []string{"k0", "k1", "k2", "k3", "k4"}
	engine.mu.Lock()
	for i, key := range keys {
		engine.entries[key] = &cacheEntry{
			data:        []byte{byte(i)},
			contentType: "image/webp",
			lastAccess:  base.Add(time.Duration(i) * time.Second),
		}
	}
	engine.mu.Unlock()

	require.Equal(t, 5, engine.Len())
	engine.sweep()

	assert.Equal(t, 2, engine.Len())
	engine.mu.Lock()
	_, oldest := engine.entries["k0"]
	_, newest := engine.entries["k4"]
	_, second := engine.entries["k3"]
	engine.mu.Unlock()
	assert.False(t, oldest)
	assert.True(t, newest)
	assert.True(t, second)
}

func TestSweepNoopUnderBound(t *testing.T) {
	engine := testEngine(t, 4, time.Second)
	engine.insert("a", []byte{1}, FormatWebP)
	engine.insert("b", []byte{2}, FormatWebP)
	engine.sweep()
	assert.Equal(t, 2, engine.Len())
}

func TestInsertReportsOverBound(t *testing.T) {
	engine := testEngine(t, 2, time.Second)
	assert.False(t, engine.insert("a", []byte{1}, FormatWebP))
	assert.False(t, engine.insert("b", []byte{2}, FormatWebP))
	assert.True(t, engine.insert("c", []byte{3}, FormatWebP))
	// over the bound by exactly one before the sweep runs
	assert.Equal(t, 3, engine.Len())
}

func TestFetchFailureReturnsBadGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	engine := testEngine(t, 10, time.Second)
	_, err := engine.Get(Request{URL: server.URL, Quality: 80, Format: FormatWebP})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "UPSTREAM_FAILED"))
	assert.Equal(t, 0, engine.Len())
}

func TestFetchTimeoutReturnsGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	engine := testEngine(t, 10, 50*time.Millisecond)
	_, err := engine.Get(Request{URL: server.URL, Quality: 80, Format: FormatWebP})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "UPSTREAM_TIMEOUT"))
}

func TestUndecodableSourceDoesNotPolluteCache(t *testing.T) {
	var hits int64
	server := sourceServer(t, []byte("not an image"), &hits)

	engine := testEngine(t, 10, time.Second)
	_, err := engine.Get(Request{URL: server.URL, Quality: 80, Format: FormatWebP})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, "TRANSFORM_FAILED"))
	assert.Equal(t, 0, engine.Len())

	// a retry hits upstream again, nothing partial was cached
	_, err = engine.Get(Request{URL: server.URL, Quality: 80, Format: FormatWebP})
	require.Error(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
}

func TestResponseHeaders(t *testing.T) {
	var hits int64
	server := sourceServer(t, sourcePNG(t, 20, 20), &hits)
	engine := testEngine(t, 10, time.Second)

	result, err := engine.Get(Request{URL: server.URL, Quality: 80, Format: FormatJPEG})
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.Equal(t, "public, max-age=31536000, immutable", result.Headers["Cache-Control"])
	assert.Equal(t, "Accept", result.Headers["Vary"])
	assert.NotEmpty(t, result.Headers["ETag"])
}
