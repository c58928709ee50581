// Package region cuts localized regions of interest out of a rectified card
// image and binarizes them for text extraction and fingerprinting.
package region

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// Corner strips cover the bottom corners where collector IDs are printed.
	stripWidthFrac  = 0.35
	stripHeightFrac = 0.20

	// Identity strips are resized to fixed dimensions so fingerprints stay
	// comparable across images.
	IdentityWidth  = 33
	IdentityHeight = 32
)

// ErrEmptyRegion is returned when a requested strip would have zero area.
var ErrEmptyRegion = errors.New("region has zero area")

// Strips holds the bottom-left and bottom-right crops of a rectified card.
type Strips struct {
	BottomLeft  *image.NRGBA
	BottomRight *image.NRGBA
}

// CornerStrips extracts the two bottom-corner regions of a rectified card at
// OCR-friendly resolution (35% width x 20% height each).
func CornerStrips(card image.Image) (Strips, error) {
	b := card.Bounds()
	w := b.Dx()
	h := b.Dy()
	sw := int(float64(w) * stripWidthFrac)
	sh := int(float64(h) * stripHeightFrac)
	if sw < 1 || sh < 1 {
		return Strips{}, ErrEmptyRegion
	}
	left := imaging.Crop(card, image.Rect(b.Min.X, b.Max.Y-sh, b.Min.X+sw, b.Max.Y))
	right := imaging.Crop(card, image.Rect(b.Max.X-sw, b.Max.Y-sh, b.Max.X, b.Max.Y))
	return Strips{BottomLeft: left, BottomRight: right}, nil
}

// IdentityStrips extracts the same two corners but normalized to the fixed
// fingerprint dimensions, independent of the OCR strips.
func IdentityStrips(card image.Image) (Strips, error) {
	s, err := CornerStrips(card)
	if err != nil {
		return Strips{}, err
	}
	return Strips{
		BottomLeft:  imaging.Resize(s.BottomLeft, IdentityWidth, IdentityHeight, imaging.Lanczos),
		BottomRight: imaging.Resize(s.BottomRight, IdentityWidth, IdentityHeight, imaging.Lanczos),
	}, nil
}
