package optimize

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
)

const (
	FormatJPEG = "jpeg"
	FormatJPG  = "jpg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

func isSupportedFormat(format string) bool {
	switch format {
	case FormatJPEG, FormatJPG, FormatPNG, FormatWebP:
		return true
	}
	return false
}

func isJPEGFamily(format string) bool {
	return format == FormatJPEG || format == FormatJPG
}

// NegotiateFormat picks the output format: an explicit request wins,
// otherwise WebP unless the Accept header cannot take it.
func NegotiateFormat(explicit, acceptHeader string) string {
	if isSupportedFormat(explicit) {
		return explicit
	}
	if acceptHeader != "" && !acceptsWebP(acceptHeader) {
		return FormatJPEG
	}
	return FormatWebP
}

func acceptsWebP(acceptHeader string) bool {
	for _, part := range strings.Split(acceptHeader, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mediaType {
		case "image/webp", "image/*", "*/*":
			return true
		}
	}
	return false
}

// NormalizeQuality parses the raw quality parameter; absent or outside
// [1,100] falls back to the configured default.
func NormalizeQuality(raw string, defaultQuality int) int {
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 || q > 100 {
		return defaultQuality
	}
	return q
}

func ContentTypeForFormat(format string) string {
	switch format {
	case FormatJPEG, FormatJPG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	default:
		return "image/webp"
	}
}

func extForFormat(format string) string {
	if format == FormatJPEG {
		return FormatJPG
	}
	return format
}

// targetDimensions completes missing dimensions preserving the source
// aspect ratio. Returns ok=false when no resize was requested.
func targetDimensions(srcW, srcH int, width, height string) (uint, uint, bool) {
	w, _ := strconv.Atoi(width)
	h, _ := strconv.Atoi(height)
	if w <= 0 && h <= 0 {
		return 0, 0, false
	}
	if w <= 0 {
		w = srcW * h / srcH
	}
	if h <= 0 {
		h = srcH * w / srcW
	}
	return uint(w), uint(h), true
}

// transform decodes, optionally resizes and re-encodes the source bytes.
// Mild reductions get Lanczos3; when either dimension shrinks by more
// than half, Bilinear is close enough and much cheaper.
func transform(data []byte, width, height string, quality int, format string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	if w, h, ok := targetDimensions(srcW, srcH, width, height); ok {
		filter := resize.Lanczos3
		if int(w)*2 < srcW || int(h)*2 < srcH {
			filter = resize.Bilinear
		}
		img = resize.Resize(w, h, img, filter)
	}

	if isJPEGFamily(format) {
		img = flattenAlpha(img)
	}

	var buf bytes.Buffer
	switch {
	case isJPEGFamily(format):
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case format == FormatPNG:
		err = png.Encode(&buf, img)
	default:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: float32(quality)})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// flattenAlpha composites the image onto a white background; JPEG has no
// alpha channel.
func flattenAlpha(img image.Image) image.Image {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
