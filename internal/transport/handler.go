package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cardsnap/capture-enhancer-go/internal/capture"
	"github.com/cardsnap/capture-enhancer-go/internal/config"
	apperrors "github.com/cardsnap/capture-enhancer-go/internal/errors"
	"github.com/cardsnap/capture-enhancer-go/internal/logger"
	"github.com/cardsnap/capture-enhancer-go/internal/service"
)

func validateSnapshotURL(snapshotURL string) error {
	parsedURL, err := url.Parse(snapshotURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	return nil
}

type EnhanceRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type CaptureBestRequest struct {
	SnapshotURL string `json:"snapshot_url" binding:"required,url"`
	BurstSize   int    `json:"burst_size,omitempty"`
	DelayMs     *int   `json:"delay_ms,omitempty"`
	Archive     bool   `json:"archive,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(svc service.CaptureService, sources capture.SourceFactory, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/enhance", enhanceStill(svc, sources, cfg))
	r.POST("/capture/best", captureBest(svc, sources, cfg))

	return r
}

func enhanceStill(svc service.CaptureService, sources capture.SourceFactory, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing still enhancement request")

		var req EnhanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := validateSnapshotURL(req.URL); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Invalid still URL")
			respondError(c, apperrors.GetStatusCode(err), "invalid still URL", err)
			return
		}

		source, err := sources.CreateSource(capture.SourceHTTP, req.URL)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to create capture source", err)
			return
		}

		raw, err := source.CaptureStill(ctx)
		if err != nil {
			var fetchErr *apperrors.AppError
			if errors.Is(err, context.DeadlineExceeded) {
				fetchErr = apperrors.NewTimeoutError("Still fetch timeout", err)
			} else {
				fetchErr = apperrors.NewCaptureError("Failed to fetch still", err)
			}

			logger.WithError(fetchErr).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Failed to fetch still")

			respondError(c, fetchErr.StatusCode, "failed to fetch still", fetchErr)
			return
		}

		still, err := svc.EnhanceStill(ctx, raw)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to enhance still", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"score":              still.Score,
			"size_bytes":         still.SizeBytes,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Still enhancement completed successfully")

		c.Header("X-Sharpness-Score", strconv.FormatFloat(still.Score, 'f', -1, 64))
		c.Data(http.StatusOK, "image/jpeg", still.Data)
	}
}

func captureBest(svc service.CaptureService, sources capture.SourceFactory, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing burst capture request")

		var req CaptureBestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := validateSnapshotURL(req.SnapshotURL); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.SnapshotURL,
				"ip":  c.ClientIP(),
			}).Error("Invalid snapshot URL")
			respondError(c, apperrors.GetStatusCode(err), "invalid snapshot URL", err)
			return
		}

		// Configured burst tuning, overridable per request up to the
		// configured ceiling
		opts := cfg.BurstOptions()
		if req.BurstSize > 0 {
			if req.BurstSize > cfg.MaxBurstSize {
				err := apperrors.NewValidationError(
					fmt.Sprintf("burst size must be <= %d (got %d)", cfg.MaxBurstSize, req.BurstSize), nil)
				respondError(c, err.StatusCode, "invalid burst size", err)
				return
			}
			opts.Size = req.BurstSize
		}
		if req.DelayMs != nil {
			opts.Delay = time.Duration(*req.DelayMs) * time.Millisecond
		}

		source, err := sources.CreateSource(capture.SourceHTTP, req.SnapshotURL)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to create capture source", err)
			return
		}

		still, err := svc.CaptureBest(ctx, source, opts, req.Archive)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "burst capture failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"url":                req.SnapshotURL,
			"burst_size":         opts.Size,
			"winner_index":       still.BurstIndex,
			"failed_shots":       still.FailedShots,
			"score":              still.Score,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Burst capture completed successfully")

		c.Header("X-Sharpness-Score", strconv.FormatFloat(still.Score, 'f', -1, 64))
		c.Header("X-Burst-Index", strconv.Itoa(still.BurstIndex))
		if still.ArchiveURL != "" {
			c.Header("X-Archive-URL", still.ArchiveURL)
		}
		c.Data(http.StatusOK, "image/jpeg", still.Data)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first; gin wraps middleware errors,
	// so unwrap instead of type-asserting
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
