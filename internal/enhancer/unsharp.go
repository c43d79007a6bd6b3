package enhancer

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// unsharpMasker implements DetailEnhancer via unsharp masking: the image is
// low-passed with a Gaussian kernel, and per-channel differences between the
// original and the blurred copy are amplified where they exceed a threshold
type unsharpMasker struct {
	amount    float64
	radius    float64
	threshold float64
}

// NewDetailEnhancer creates an unsharp masker. Amount is the sharpening
// strength (typically 0.5-2.0, 0 disables), radius the blur extent in pixels
// (> 0), threshold the minimum per-channel difference to trigger sharpening
// (>= 0).
func NewDetailEnhancer(amount, radius, threshold float64) (DetailEnhancer, error) {
	if amount < 0 {
		return nil, fmt.Errorf("sharpen amount must be >= 0 (got %g)", amount)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sharpen radius must be > 0 (got %g)", radius)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("sharpen threshold must be >= 0 (got %g)", threshold)
	}
	return &unsharpMasker{amount: amount, radius: radius, threshold: threshold}, nil
}

// Sharpen returns a new buffer of identical dimensions. For each pixel and
// color channel, diff = original − blurred; where |diff| >= threshold the
// output is clamp(original + diff·amount), otherwise the original value
// passes through. Alpha is never modified. Image borders rely on the blur
// kernel's edge replication, so no separate boundary case is needed.
func (u *unsharpMasker) Sharpen(img *image.NRGBA) *image.NRGBA {
	src := imaging.Clone(img)
	blurred := imaging.Clone(blur.Gaussian(src, u.radius))
	out := imaging.Clone(src)

	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			orig := float64(src.Pix[i+c])
			diff := orig - float64(blurred.Pix[i+c])
			if math.Abs(diff) < u.threshold {
				continue
			}
			out.Pix[i+c] = clampChannel(orig + diff*u.amount)
		}
	}
	return out
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
