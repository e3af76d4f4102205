package images

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Upload size limits.
const (
	// maxUploadBytes bounds accepted gallery uploads (8 MiB).
	maxUploadBytes = 8 << 20
	// maxDimension caps stored image dimensions; larger uploads are
	// downscaled preserving aspect ratio.
	maxDimension = 2048
)

// Processed is a normalized gallery upload ready for storage.
type Processed struct {
	PNG      []byte
	Width    int
	Height   int
	BlurHash string
}

// ProcessUpload validates, normalizes, and fingerprints a gallery upload:
// decode (PNG/JPEG/GIF/WebP), downscale oversized images, re-encode as PNG,
// and compute the BlurHash placeholder.
func ProcessUpload(data []byte) (*Processed, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", maxUploadBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &Processed{
		PNG:      buf.Bytes(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		BlurHash: hash,
	}, nil
}
