package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/cardsnap/capture-enhancer-go/internal/burst"
	"github.com/cardsnap/capture-enhancer-go/internal/capture"
	"github.com/cardsnap/capture-enhancer-go/internal/enhancer"
	apperrors "github.com/cardsnap/capture-enhancer-go/internal/errors"
	"github.com/cardsnap/capture-enhancer-go/internal/observer"
)

// recordingArchiver captures Archive calls for assertions
type recordingArchiver struct {
	names []string
	data  [][]byte
	err   error
}

func (a *recordingArchiver) Archive(ctx context.Context, name string, data []byte) (string, error) {
	a.names = append(a.names, name)
	a.data = append(a.data, data)
	if a.err != nil {
		return "", a.err
	}
	return "https://captures.blob.core.windows.net/stills/" + name, nil
}

func testStill(t *testing.T, lo, hi uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := lo
			if (x+y)%2 == 1 {
				v = hi
			}
			p := y*img.Stride + x*4
			img.Pix[p] = v
			img.Pix[p+1] = v
			img.Pix[p+2] = v
			img.Pix[p+3] = 255
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test still: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, archiver *recordingArchiver) (CaptureService, *observer.MetricsObserver) {
	t.Helper()
	processor, err := enhancer.NewFrameProcessor(enhancer.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create frame processor: %v", err)
	}
	estimator := enhancer.NewSharpnessEstimator()
	selector := burst.NewSelector(processor, estimator)

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(metrics)

	var svc CaptureService
	if archiver != nil {
		svc = NewCaptureService(processor, estimator, selector, archiver, events)
	} else {
		svc = NewCaptureService(processor, estimator, selector, nil, events)
	}
	return svc, metrics
}

func TestEnhanceStill_EmptyPayload(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.EnhanceStill(context.Background(), nil)
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestEnhanceStill_UndecodablePayload(t *testing.T) {
	svc, metrics := newTestService(t, nil)

	_, err := svc.EnhanceStill(context.Background(), []byte("not an image"))
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Errorf("expected processing error, got %v", err)
	}
	if metrics.GetMetrics()["failed_enhances"].(int64) != 1 {
		t.Error("expected failed enhance to be counted")
	}
}

func TestEnhanceStill_Success(t *testing.T) {
	svc, metrics := newTestService(t, nil)

	still, err := svc.EnhanceStill(context.Background(), testStill(t, 96, 160))
	if err != nil {
		t.Fatalf("EnhanceStill failed: %v", err)
	}
	if len(still.Data) == 0 {
		t.Error("expected encoded output")
	}
	if still.Width != 16 || still.Height != 16 {
		t.Errorf("expected 16x16 result, got %dx%d", still.Width, still.Height)
	}
	if still.Score <= 0 {
		t.Errorf("expected positive sharpness score, got %g", still.Score)
	}
	if still.SizeBytes != len(still.Data) {
		t.Errorf("size mismatch: %d vs %d", still.SizeBytes, len(still.Data))
	}
	if metrics.GetMetrics()["enhanced_stills"].(int64) != 1 {
		t.Error("expected enhanced still to be counted")
	}
}

func TestCaptureBest_DeliversWinner(t *testing.T) {
	svc, metrics := newTestService(t, nil)

	stills := [][]byte{
		testStill(t, 120, 136),
		testStill(t, 64, 192),
		testStill(t, 112, 144),
	}
	calls := 0
	source := capture.SourceFunc(func(ctx context.Context) ([]byte, error) {
		raw := stills[calls%len(stills)]
		calls++
		return raw, nil
	})

	still, err := svc.CaptureBest(context.Background(), source,
		burst.Options{Size: 3, Delay: time.Millisecond}, false)
	if err != nil {
		t.Fatalf("CaptureBest failed: %v", err)
	}
	if still.BurstIndex != 1 {
		t.Errorf("expected winner index 1, got %d", still.BurstIndex)
	}
	if still.Attempts != 3 || still.FailedShots != 0 {
		t.Errorf("expected 3 attempts, 0 failures, got %d/%d", still.Attempts, still.FailedShots)
	}
	if still.ArchiveURL != "" {
		t.Error("expected no archive URL without archiving")
	}

	m := metrics.GetMetrics()
	if m["total_bursts"].(int64) != 1 || m["completed_bursts"].(int64) != 1 {
		t.Errorf("expected burst counters 1/1, got %v/%v", m["total_bursts"], m["completed_bursts"])
	}
}

func TestCaptureBest_Exhausted(t *testing.T) {
	svc, metrics := newTestService(t, nil)

	source := capture.SourceFunc(func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("sensor busy")
	})

	_, err := svc.CaptureBest(context.Background(), source,
		burst.Options{Size: 2, Delay: time.Millisecond}, false)
	if !apperrors.IsType(err, apperrors.ErrorTypeBurstExhausted) {
		t.Fatalf("expected burst exhausted error, got %v", err)
	}
	if metrics.GetMetrics()["exhausted_bursts"].(int64) != 1 {
		t.Error("expected exhausted burst to be counted")
	}
}

func TestCaptureBest_ArchivesWinner(t *testing.T) {
	archiver := &recordingArchiver{}
	svc, _ := newTestService(t, archiver)

	raw := testStill(t, 96, 160)
	source := capture.SourceFunc(func(ctx context.Context) ([]byte, error) {
		return raw, nil
	})

	still, err := svc.CaptureBest(context.Background(), source,
		burst.Options{Size: 1, Delay: 0}, true)
	if err != nil {
		t.Fatalf("CaptureBest failed: %v", err)
	}
	if len(archiver.names) != 1 {
		t.Fatalf("expected 1 archive call, got %d", len(archiver.names))
	}
	if !strings.HasPrefix(archiver.names[0], "stills/") || !strings.HasSuffix(archiver.names[0], ".jpg") {
		t.Errorf("unexpected blob name %q", archiver.names[0])
	}
	if !bytes.Equal(archiver.data[0], still.Data) {
		t.Error("archived bytes differ from delivered bytes")
	}
	if still.ArchiveURL == "" {
		t.Error("expected archive URL on delivered still")
	}
}

func TestCaptureBest_ArchiveFailureDoesNotFailDelivery(t *testing.T) {
	archiver := &recordingArchiver{err: errors.New("storage offline")}
	svc, _ := newTestService(t, archiver)

	source := capture.SourceFunc(func(ctx context.Context) ([]byte, error) {
		return testStill(t, 96, 160), nil
	})

	still, err := svc.CaptureBest(context.Background(), source,
		burst.Options{Size: 1, Delay: 0}, true)
	if err != nil {
		t.Fatalf("expected delivery despite archive failure, got %v", err)
	}
	if still.ArchiveURL != "" {
		t.Error("expected empty archive URL after failed upload")
	}
	if len(still.Data) == 0 {
		t.Error("expected winner payload to survive archive failure")
	}
}

func TestCaptureBest_ArchiveSkippedWhenNotRequested(t *testing.T) {
	archiver := &recordingArchiver{}
	svc, _ := newTestService(t, archiver)

	source := capture.SourceFunc(func(ctx context.Context) ([]byte, error) {
		return testStill(t, 96, 160), nil
	})

	if _, err := svc.CaptureBest(context.Background(), source,
		burst.Options{Size: 1, Delay: 0}, false); err != nil {
		t.Fatalf("CaptureBest failed: %v", err)
	}
	if len(archiver.names) != 0 {
		t.Errorf("expected no archive calls, got %d", len(archiver.names))
	}
}
