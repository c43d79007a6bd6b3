package enhancer

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ProcessedFrame pairs the enhanced pixel buffer of a still with its encoded
// output. The buffer is used for sharpness scoring, the bytes for delivery.
type ProcessedFrame struct {
	Image   *image.NRGBA
	Encoded []byte
}

// frameProcessor implements FrameProcessor and owns the fixed enhancement
// sequence: decode, tone-correct, sharpen, re-encode
type frameProcessor struct {
	tone    ToneCorrector
	detail  DetailEnhancer
	quality int
}

// NewFrameProcessor creates a processor from validated options.
func NewFrameProcessor(opts Options) (FrameProcessor, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid enhancement options: %w", err)
	}

	tone, err := NewToneCorrector(opts.Gamma)
	if err != nil {
		return nil, err
	}
	detail, err := NewDetailEnhancer(opts.SharpenAmount, opts.SharpenRadius, opts.SharpenThreshold)
	if err != nil {
		return nil, err
	}

	return &frameProcessor{
		tone:    tone,
		detail:  detail,
		quality: opts.JPEGQuality,
	}, nil
}

// Process decodes a captured still, brightens and sharpens it, and re-encodes
// the result as JPEG. The sequence is fixed: gamma before sharpen, both steps
// always applied. Output dimensions match the decoded input.
func (p *frameProcessor) Process(raw []byte) (*ProcessedFrame, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode still: %w", err)
	}

	buf := imaging.Clone(img)
	buf = p.tone.Correct(buf)
	buf = p.detail.Sharpen(buf)

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, buf, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode enhanced still: %w", err)
	}

	return &ProcessedFrame{
		Image:   buf,
		Encoded: encoded.Bytes(),
	}, nil
}
