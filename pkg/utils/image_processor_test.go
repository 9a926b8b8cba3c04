package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOfWidth(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestProcessBannerImageResizesWideCreatives(t *testing.T) {
	data, contentType, err := ProcessBannerImage(pngOfWidth(t, 2400, 300))
	require.NoError(t, err)
	assert.Contains(t, []string{"image/webp", "image/jpeg"}, contentType)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if contentType == "image/webp" {
		// webp decoding is registered by the webp package import
		require.NoError(t, err)
	}
	if err == nil {
		assert.Equal(t, MaxBannerWidth, decoded.Bounds().Dx())
	}
}

func TestProcessBannerImageRejectsGarbage(t *testing.T) {
	_, _, err := ProcessBannerImage(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}
