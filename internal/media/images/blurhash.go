package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"github.com/disintegration/imaging"
)

// blurHashSize is the thumbnail size used for BlurHash computation. BlurHash
// output barely changes above this, and small inputs keep encoding fast.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash placeholder string for an image.
// Uses 4x3 components, roughly 30 characters.
func ComputeBlurHash(img image.Image) (string, error) {
	bounds := img.Bounds()
	if bounds.Dx() > blurHashSize || bounds.Dy() > blurHashSize {
		img = imaging.Fit(img, blurHashSize, blurHashSize, imaging.Box)
	}

	hash, err := blurhash.Encode(4, 3, img)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}
