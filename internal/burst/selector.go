package burst

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardsnap/capture-enhancer-go/internal/capture"
	"github.com/cardsnap/capture-enhancer-go/internal/enhancer"
	apperrors "github.com/cardsnap/capture-enhancer-go/internal/errors"
	"github.com/cardsnap/capture-enhancer-go/internal/logger"
)

const (
	// DefaultSize is the number of capture attempts per burst
	DefaultSize = 3
	// DefaultDelay is the settle time between consecutive capture requests
	DefaultDelay = 100 * time.Millisecond
)

// Options control a single burst run
type Options struct {
	// Size is the number of capture attempts. Failed attempts still consume
	// a slot; they are never retried.
	Size int

	// Delay is the pause between consecutive capture requests, giving the
	// capture hardware time to settle between shots. It is a serialization
	// point: the next capture is never issued before the delay elapses.
	Delay time.Duration
}

// DefaultOptions returns the standard burst configuration.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Delay: DefaultDelay}
}

// Candidate is the winning enhanced still of one burst.
type Candidate struct {
	// Frame holds the enhanced pixel buffer and its encoded JPEG.
	Frame *enhancer.ProcessedFrame
	// Score is the sharpness score of the enhanced buffer.
	Score float64
	// Index is the zero-based capture slot the winner came from.
	Index int
	// Attempts is the total number of capture slots in the burst.
	Attempts int
	// Failed counts slots whose capture failed or was undecodable.
	Failed int
}

// Selector picks the sharpest enhanced still out of a capture burst.
//
// A Selector keeps no state across calls, so concurrent SelectBest calls are
// safe as long as each caller holds its own capture source handle.
type Selector struct {
	processor enhancer.FrameProcessor
	estimator enhancer.SharpnessEstimator
}

// NewSelector creates a burst selector.
func NewSelector(processor enhancer.FrameProcessor, estimator enhancer.SharpnessEstimator) *Selector {
	return &Selector{
		processor: processor,
		estimator: estimator,
	}
}

// SelectBest captures opts.Size stills sequentially from source, enhances and
// scores each one, and returns the candidate with the strictly maximum score.
// Exact ties keep the earliest capture. Each candidate is fully processed
// before the next capture request goes out; there is no pipelining across
// slots. A failed or undecodable capture is skipped, not retried. When every
// slot fails the burst is exhausted and an error of type
// apperrors.ErrorTypeBurstExhausted is returned.
func (s *Selector) SelectBest(ctx context.Context, source capture.StillSource, opts Options) (*Candidate, error) {
	if opts.Size < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("burst size must be >= 1 (got %d)", opts.Size), nil)
	}
	if opts.Delay < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("capture delay must be >= 0 (got %s)", opts.Delay), nil)
	}

	var best *Candidate
	failed := 0

	for i := 0; i < opts.Size; i++ {
		// Cancellation aborts the burst before the next slot, with or
		// without a settle delay
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewTimeoutError("burst interrupted", err)
		}
		if i > 0 && opts.Delay > 0 {
			// The settle delay separates shots even after a failed slot
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("burst interrupted", ctx.Err())
			case <-time.After(opts.Delay):
			}
		}

		raw, err := source.CaptureStill(ctx)
		if err != nil {
			failed++
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt": i,
			}).Warn("Capture attempt failed, skipping slot")
			continue
		}

		frame, err := s.processor.Process(raw)
		if err != nil {
			// An undecodable still counts as a failed capture
			failed++
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt": i,
				"bytes":   len(raw),
			}).Warn("Captured still unusable, skipping slot")
			continue
		}

		score := s.estimator.Estimate(frame.Image)
		logger.WithFields(logrus.Fields{
			"attempt": i,
			"score":   score,
		}).Debug("Scored burst candidate")

		if best == nil || score > best.Score {
			best = &Candidate{Frame: frame, Score: score, Index: i}
		}
	}

	if best == nil {
		return nil, apperrors.NewBurstExhaustedError(
			fmt.Sprintf("all %d capture attempts failed", opts.Size), nil)
	}

	best.Attempts = opts.Size
	best.Failed = failed
	return best, nil
}
