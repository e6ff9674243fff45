// Package imaging shrinks signature and stamp images before they are sent
// to the sheets endpoint.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // signature pads export PNG
	"strings"

	"golang.org/x/image/draw"
)

var ErrNotDataURL = errors.New("imaging: not a base64 data URL")

// Options controls the recompression
type Options struct {
	MaxDimension int // longer side after scaling, in pixels
	Quality      int // JPEG quality, 1-100
}

// DefaultOptions is 800px at quality 70
var DefaultOptions = Options{MaxDimension: 800, Quality: 70}

// CompressDataURL decodes a data URL (PNG or JPEG), scales it so the longer
// side is at most MaxDimension and re-encodes it as a JPEG data URL.
func CompressDataURL(dataURL string, opts Options) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("imaging: decode: %w", err)
	}

	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// Transparent signature strokes would turn black in JPEG without a background
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return "", fmt.Errorf("imaging: encode: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FitWithin scales (w, h) down so neither side exceeds limit, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func FitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w > h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: base64: %w", err)
	}
	return raw, nil
}
