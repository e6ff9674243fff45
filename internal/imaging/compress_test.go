package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResult(t *testing.T, dataURL string) image.Config {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{1600, 400, 800, 800, 200},
		{400, 1600, 800, 200, 800},
		{1000, 1000, 800, 800, 800},
		{640, 480, 800, 640, 480},
		{5000, 2, 800, 800, 1},
	}
	for _, c := range cases {
		w, h := FitWithin(c.w, c.h, c.limit)
		assert.Equal(t, c.wantW, w, "%dx%d", c.w, c.h)
		assert.Equal(t, c.wantH, h, "%dx%d", c.w, c.h)
	}
}

func TestCompressDataURL_ScalesLongerSide(t *testing.T) {
	out, err := CompressDataURL(pngDataURL(t, 1600, 400), DefaultOptions)
	require.NoError(t, err)

	cfg := decodeResult(t, out)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestCompressDataURL_KeepsSmallImageSize(t *testing.T) {
	out, err := CompressDataURL(pngDataURL(t, 300, 120), DefaultOptions)
	require.NoError(t, err)

	cfg := decodeResult(t, out)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestCompressDataURL_RejectsGarbage(t *testing.T) {
	_, err := CompressDataURL("not-a-data-url", DefaultOptions)
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = CompressDataURL("data:image/png;base64,!!!", DefaultOptions)
	assert.Error(t, err)

	_, err = CompressDataURL("data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("hello")), DefaultOptions)
	assert.Error(t, err)
}
