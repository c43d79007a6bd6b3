package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CaptureEvent represents a lifecycle event of the enhancement pipeline
type CaptureEvent struct {
	EventType    EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	Source       string                 `json:"source,omitempty"`
	BurstIndex   int                    `json:"burst_index,omitempty"`
	Score        float64                `json:"score,omitempty"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of capture event
type EventType string

const (
	// BurstStarted when a burst selection run begins
	BurstStarted EventType = "burst_started"
	// BurstCompleted when a burst produced a winning candidate
	BurstCompleted EventType = "burst_completed"
	// BurstExhausted when every capture attempt of a burst failed
	BurstExhausted EventType = "burst_exhausted"
	// StillEnhanced when a single still was enhanced successfully
	StillEnhanced EventType = "still_enhanced"
	// EnhanceFailed when enhancing a single still failed
	EnhanceFailed EventType = "enhance_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event CaptureEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event CaptureEvent)
}

// LoggingObserver logs capture events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles capture events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event CaptureEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"success":    event.Success,
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case BurstStarted:
		o.logger.WithFields(fields).Info("Burst capture started")
	case BurstCompleted:
		fields["burst_index"] = event.BurstIndex
		fields["score"] = event.Score
		o.logger.WithFields(fields).Info("Burst capture completed")
	case BurstExhausted:
		o.logger.WithFields(fields).Error("Burst capture exhausted")
	case StillEnhanced:
		fields["score"] = event.Score
		o.logger.WithFields(fields).Debug("Still enhanced")
	case EnhanceFailed:
		o.logger.WithFields(fields).Error("Still enhancement failed")
	default:
		o.logger.WithFields(fields).Info("Capture event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from capture events
type MetricsObserver struct {
	mu              sync.RWMutex
	totalBursts     int64
	completedBursts int64
	exhaustedBursts int64
	enhancedStills  int64
	failedEnhances  int64
	winningScoreSum float64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles capture events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event CaptureEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case BurstStarted:
		o.totalBursts++
	case BurstCompleted:
		o.completedBursts++
		o.winningScoreSum += event.Score
	case BurstExhausted:
		o.exhaustedBursts++
	case StillEnhanced:
		o.enhancedStills++
	case EnhanceFailed:
		o.failedEnhances++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a snapshot of the current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgWinningScore := 0.0
	if o.completedBursts > 0 {
		avgWinningScore = o.winningScoreSum / float64(o.completedBursts)
	}

	return map[string]interface{}{
		"total_bursts":      o.totalBursts,
		"completed_bursts":  o.completedBursts,
		"exhausted_bursts":  o.exhaustedBursts,
		"enhanced_stills":   o.enhancedStills,
		"failed_enhances":   o.failedEnhances,
		"avg_winning_score": avgWinningScore,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// Subscribe registers an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, o := range p.observers {
		if o.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			return
		}
	}
}

// NotifyObservers delivers the event to every subscribed observer
func (p *EventPublisher) NotifyObservers(ctx context.Context, event CaptureEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, o := range observers {
		o.OnEvent(ctx, event)
	}
}
