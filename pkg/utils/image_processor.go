package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Banner creatives are shown full width; anything wider is wasted bytes.
const MaxBannerWidth = 1600

// ErrInvalidImage means the upload could not be decoded as an image.
var ErrInvalidImage = errors.New("unreadable image")

// AllowedCreativeTypes are the upload content types accepted for banner creatives.
var AllowedCreativeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProcessBannerImage decodes an uploaded creative, caps its width and
// re-encodes it as WebP, falling back to JPEG.
func ProcessBannerImage(r io.Reader) ([]byte, string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if img.Bounds().Dx() > MaxBannerWidth {
		img = imaging.Resize(img, MaxBannerWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}

	return buf.Bytes(), "image/webp", nil
}
