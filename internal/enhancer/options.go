package enhancer

import "fmt"

// Options provides configuration for the per-still enhancement pipeline
type Options struct {
	// Gamma is the power-law brightening factor. 1 is a no-op, values above
	// 1 brighten underexposed stills.
	Gamma float64

	// SharpenAmount scales the unsharp-mask edge emphasis. 0 disables it.
	SharpenAmount float64

	// SharpenRadius is the Gaussian low-pass radius in pixels.
	SharpenRadius float64

	// SharpenThreshold is the minimum per-channel difference between the
	// original and the blurred copy that gets amplified. Differences below
	// it pass through, which keeps sensor noise in flat regions unamplified.
	SharpenThreshold float64

	// JPEGQuality is the encoder quality factor, 1-100.
	JPEGQuality int
}

// DefaultOptions returns the document-scan tuning used for ID-card stills:
// mild brightening that does not blow out highlights, sharpening sized for
// printed text.
func DefaultOptions() Options {
	return Options{
		Gamma:            1.1,
		SharpenAmount:    1.2,
		SharpenRadius:    0.8,
		SharpenThreshold: 5,
		JPEGQuality:      95,
	}
}

// NeutralOptions returns a pass-through configuration where both enhancement
// steps are identity transforms.
func NeutralOptions() Options {
	opts := DefaultOptions()
	opts.Gamma = 1
	opts.SharpenAmount = 0
	return opts
}

// StrongOptions returns a more aggressive tuning for captures from soft or
// badly focused sources.
func StrongOptions() Options {
	opts := DefaultOptions()
	opts.SharpenAmount = 1.8
	opts.SharpenRadius = 1.2
	opts.SharpenThreshold = 3
	return opts
}

// WithGamma returns options with a custom brightening factor
func (opts Options) WithGamma(gamma float64) Options {
	opts.Gamma = gamma
	return opts
}

// WithSharpen returns options with custom unsharp-mask parameters
func (opts Options) WithSharpen(amount, radius, threshold float64) Options {
	opts.SharpenAmount = amount
	opts.SharpenRadius = radius
	opts.SharpenThreshold = threshold
	return opts
}

// WithJPEGQuality returns options with a custom encoder quality factor
func (opts Options) WithJPEGQuality(quality int) Options {
	opts.JPEGQuality = quality
	return opts
}

// Validate rejects out-of-range parameters before any pixels are touched.
// Out-of-range values are contract violations, not runtime conditions.
func (opts Options) Validate() error {
	if opts.Gamma <= 0 {
		return fmt.Errorf("gamma must be > 0 (got %g)", opts.Gamma)
	}
	if opts.SharpenAmount < 0 {
		return fmt.Errorf("sharpen amount must be >= 0 (got %g)", opts.SharpenAmount)
	}
	if opts.SharpenRadius <= 0 {
		return fmt.Errorf("sharpen radius must be > 0 (got %g)", opts.SharpenRadius)
	}
	if opts.SharpenThreshold < 0 {
		return fmt.Errorf("sharpen threshold must be >= 0 (got %g)", opts.SharpenThreshold)
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		return fmt.Errorf("JPEG quality must be in [1,100] (got %d)", opts.JPEGQuality)
	}
	return nil
}
