package enhancer

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// gammaCorrector implements ToneCorrector with the remap
// v -> 255·(v/255)^(1/gamma) on each color channel
type gammaCorrector struct {
	gamma float64
}

// NewToneCorrector creates a gamma corrector. Gamma must be positive;
// gamma = 1 is the identity transform.
func NewToneCorrector(gamma float64) (ToneCorrector, error) {
	if gamma <= 0 {
		return nil, fmt.Errorf("gamma must be > 0 (got %g)", gamma)
	}
	return &gammaCorrector{gamma: gamma}, nil
}

// Correct remaps the red, green and blue channels independently and leaves
// alpha untouched. imaging.AdjustGamma builds the 256-entry lookup table for
// exactly this power law, clamping after rounding, so the remap is pointwise
// and order-independent.
func (c *gammaCorrector) Correct(img *image.NRGBA) *image.NRGBA {
	return imaging.AdjustGamma(img, c.gamma)
}
