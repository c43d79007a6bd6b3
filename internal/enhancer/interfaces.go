package enhancer

import "image"

// SharpnessEstimator scores a still by its high-frequency edge energy.
// Scores are comparable between stills of the same scene; they are not an
// absolute quality metric.
type SharpnessEstimator interface {
	Estimate(img *image.NRGBA) float64
}

// ToneCorrector applies a power-law brightness remap to the color channels.
type ToneCorrector interface {
	Correct(img *image.NRGBA) *image.NRGBA
}

// DetailEnhancer applies edge emphasis (unsharp masking) to a still.
type DetailEnhancer interface {
	Sharpen(img *image.NRGBA) *image.NRGBA
}

// FrameProcessor runs the full enhancement sequence on one captured still.
type FrameProcessor interface {
	Process(raw []byte) (*ProcessedFrame, error)
}
