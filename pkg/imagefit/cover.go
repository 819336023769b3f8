// Package imagefit resizes arbitrary images into fixed-size JPEG frames.
package imagefit

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// Normalizer produces cover-fitted JPEGs. The source is scaled until it
// covers the whole target frame and the overflow is cropped around the
// center, so the output never has bars but may lose edges of the source.
type Normalizer struct {
	Quality int
}

// New returns a Normalizer with the given JPEG quality (1-100).
func New(quality int) *Normalizer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Normalizer{Quality: quality}
}

// Normalize decodes data (JPEG, PNG, GIF, BMP, TIFF or WebP) and returns a
// width x height JPEG.
func (n *Normalizer) Normalize(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imagefit: invalid target %dx%d", width, height)
	}
	if len(data) == 0 {
		return nil, errors.New("imagefit: empty image")
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imagefit: decode: %w", err)
	}
	dst := imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)

	quality := n.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("imagefit: encode: %w", err)
	}
	return buf.Bytes(), nil
}
