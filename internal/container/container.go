package container

import (
	"fmt"
	"net/http"

	"github.com/cardsnap/capture-enhancer-go/internal/burst"
	"github.com/cardsnap/capture-enhancer-go/internal/capture"
	"github.com/cardsnap/capture-enhancer-go/internal/config"
	"github.com/cardsnap/capture-enhancer-go/internal/enhancer"
	"github.com/cardsnap/capture-enhancer-go/internal/logger"
	"github.com/cardsnap/capture-enhancer-go/internal/observer"
	"github.com/cardsnap/capture-enhancer-go/internal/service"
	"github.com/cardsnap/capture-enhancer-go/internal/storage"
	"github.com/cardsnap/capture-enhancer-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	estimator      enhancer.SharpnessEstimator
	processor      enhancer.FrameProcessor
	selector       *burst.Selector
	sourceFactory  capture.SourceFactory
	archiver       storage.Archiver
	events         observer.Subject
	metrics        *observer.MetricsObserver
	captureService service.CaptureService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	estimator := enhancer.NewSharpnessEstimator()
	processor, err := enhancer.NewFrameProcessor(cfg.EnhanceOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build frame processor: %w", err)
	}

	selector := burst.NewSelector(processor, estimator)
	sourceFactory := capture.NewSourceFactory(cfg.CaptureTimeout, cfg.MaxStillBytes)

	var archiver storage.Archiver
	if cfg.ArchivingEnabled() {
		archiver, err = storage.NewAzureArchiver(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to build archiver: %w", err)
		}
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	metrics := observer.NewMetricsObserver()
	events.Subscribe(metrics)

	captureService := service.NewCaptureService(processor, estimator, selector, archiver, events)
	handler := transport.NewHandler(captureService, sourceFactory, cfg)

	return &Container{
		config:         cfg,
		estimator:      estimator,
		processor:      processor,
		selector:       selector,
		sourceFactory:  sourceFactory,
		archiver:       archiver,
		events:         events,
		metrics:        metrics,
		captureService: captureService,
		handler:        handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
