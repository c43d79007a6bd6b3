package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cardsnap/capture-enhancer-go/internal/burst"
	"github.com/cardsnap/capture-enhancer-go/internal/capture"
	"github.com/cardsnap/capture-enhancer-go/internal/enhancer"
	apperrors "github.com/cardsnap/capture-enhancer-go/internal/errors"
	"github.com/cardsnap/capture-enhancer-go/internal/logger"
	"github.com/cardsnap/capture-enhancer-go/internal/observer"
	"github.com/cardsnap/capture-enhancer-go/internal/storage"
	"github.com/cardsnap/capture-enhancer-go/pkg/models"
)

// CaptureService exposes the enhancement pipeline to the transport layer
type CaptureService interface {
	// EnhanceStill runs the fixed enhancement sequence on one raw still.
	EnhanceStill(ctx context.Context, raw []byte) (*models.EnhancedStill, error)

	// CaptureBest runs a burst against the given capture source and returns
	// the sharpest enhanced still. When archive is true and an archiver is
	// configured, the winner is uploaded and its URL recorded.
	CaptureBest(ctx context.Context, source capture.StillSource, opts burst.Options, archive bool) (*models.EnhancedStill, error)
}

// captureService implements CaptureService
type captureService struct {
	processor enhancer.FrameProcessor
	estimator enhancer.SharpnessEstimator
	selector  *burst.Selector
	archiver  storage.Archiver // nil when archiving is not configured
	events    observer.Subject
}

// NewCaptureService creates a new capture service.
func NewCaptureService(
	processor enhancer.FrameProcessor,
	estimator enhancer.SharpnessEstimator,
	selector *burst.Selector,
	archiver storage.Archiver,
	events observer.Subject,
) CaptureService {
	return &captureService{
		processor: processor,
		estimator: estimator,
		selector:  selector,
		archiver:  archiver,
		events:    events,
	}
}

// EnhanceStill enhances a single captured still.
func (s *captureService) EnhanceStill(ctx context.Context, raw []byte) (*models.EnhancedStill, error) {
	start := time.Now()

	if len(raw) == 0 {
		return nil, apperrors.NewValidationError("still payload is empty", nil)
	}

	frame, err := s.processor.Process(raw)
	if err != nil {
		s.notify(ctx, observer.CaptureEvent{
			EventType:    observer.EnhanceFailed,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, apperrors.NewProcessingError("failed to enhance still", err)
	}

	score := s.estimator.Estimate(frame.Image)
	s.notify(ctx, observer.CaptureEvent{
		EventType: observer.StillEnhanced,
		Success:   true,
		Score:     score,
	})

	still := s.toEnhancedStill(frame, score, 0, 1, 0)
	still.ProcessingTimeSec = time.Since(start).Seconds()
	return still, nil
}

// CaptureBest runs one burst and delivers the winner.
func (s *captureService) CaptureBest(ctx context.Context, source capture.StillSource, opts burst.Options, archive bool) (*models.EnhancedStill, error) {
	start := time.Now()

	s.notify(ctx, observer.CaptureEvent{
		EventType: observer.BurstStarted,
		Success:   true,
		Metadata: map[string]interface{}{
			"burst_size": opts.Size,
			"delay_ms":   opts.Delay.Milliseconds(),
		},
	})

	candidate, err := s.selector.SelectBest(ctx, source, opts)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeBurstExhausted) {
			s.notify(ctx, observer.CaptureEvent{
				EventType:    observer.BurstExhausted,
				Success:      false,
				ErrorMessage: err.Error(),
			})
		}
		return nil, err
	}

	s.notify(ctx, observer.CaptureEvent{
		EventType:  observer.BurstCompleted,
		Success:    true,
		BurstIndex: candidate.Index,
		Score:      candidate.Score,
	})

	still := s.toEnhancedStill(candidate.Frame, candidate.Score, candidate.Index, candidate.Attempts, candidate.Failed)
	still.ProcessingTimeSec = time.Since(start).Seconds()

	if archive && s.archiver != nil {
		name := fmt.Sprintf("stills/%s-%02d.jpg", start.UTC().Format("20060102T150405.000"), candidate.Index)
		url, err := s.archiver.Archive(ctx, name, candidate.Frame.Encoded)
		if err != nil {
			// The winner is already in hand; losing it over a failed upload
			// would be worse than delivering it unarchived.
			logger.WithError(err).Warn("Failed to archive winning still")
		} else {
			still.ArchiveURL = url
		}
	}

	return still, nil
}

func (s *captureService) toEnhancedStill(frame *enhancer.ProcessedFrame, score float64, index, attempts, failed int) *models.EnhancedStill {
	bounds := frame.Image.Bounds()
	return &models.EnhancedStill{
		Data:        frame.Encoded,
		Score:       score,
		BurstIndex:  index,
		Attempts:    attempts,
		FailedShots: failed,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		SizeBytes:   len(frame.Encoded),
	}
}

func (s *captureService) notify(ctx context.Context, event observer.CaptureEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
