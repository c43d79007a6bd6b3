package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cardsnap/capture-enhancer-go/internal/burst"
	"github.com/cardsnap/capture-enhancer-go/internal/enhancer"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	CaptureTimeout     time.Duration
	MaxRequestBodySize int64
	MaxStillBytes      int64

	// Enhancement pipeline tuning
	Gamma            float64
	SharpenAmount    float64
	SharpenRadius    float64
	SharpenThreshold float64
	JPEGQuality      int

	// Burst tuning. MaxBurstSize caps per-request overrides.
	BurstSize    int
	MaxBurstSize int
	CaptureDelay time.Duration

	// Optional winner archiving
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// EnhanceOptions converts the configured pipeline tuning into enhancer options.
func (c *Config) EnhanceOptions() enhancer.Options {
	return enhancer.Options{
		Gamma:            c.Gamma,
		SharpenAmount:    c.SharpenAmount,
		SharpenRadius:    c.SharpenRadius,
		SharpenThreshold: c.SharpenThreshold,
		JPEGQuality:      c.JPEGQuality,
	}
}

// BurstOptions converts the configured burst tuning into burst options.
func (c *Config) BurstOptions() burst.Options {
	return burst.Options{
		Size:  c.BurstSize,
		Delay: c.CaptureDelay,
	}
}

// ArchivingEnabled reports whether Azure archiving credentials are configured.
func (c *Config) ArchivingEnabled() bool {
	return c.AzureAccountName != ""
}

func LoadFromEnv() (*Config, error) {
	defaults := enhancer.DefaultOptions()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		CaptureTimeout:     parseDurationOrDefault("CAPTURE_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1*1024*1024),
		MaxStillBytes:      parseIntOrDefault("MAX_STILL_BYTES", 20*1024*1024), // 20MB

		Gamma:            parseFloatOrDefault("GAMMA", defaults.Gamma),
		SharpenAmount:    parseFloatOrDefault("SHARPEN_AMOUNT", defaults.SharpenAmount),
		SharpenRadius:    parseFloatOrDefault("SHARPEN_RADIUS", defaults.SharpenRadius),
		SharpenThreshold: parseFloatOrDefault("SHARPEN_THRESHOLD", defaults.SharpenThreshold),
		JPEGQuality:      int(parseIntOrDefault("JPEG_QUALITY", int64(defaults.JPEGQuality))),

		BurstSize:    int(parseIntOrDefault("BURST_SIZE", int64(burst.DefaultSize))),
		MaxBurstSize: int(parseIntOrDefault("MAX_BURST_SIZE", 10)),
		CaptureDelay: parseDurationOrDefault("CAPTURE_DELAY", burst.DefaultDelay),

		AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:  os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:   os.Getenv("AZURE_STORAGE_CONTAINER"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxStillBytes <= 0 {
		return nil, fmt.Errorf("MAX_STILL_BYTES must be > 0 (got %d)", cfg.MaxStillBytes)
	}
	if cfg.RequestTimeout <= 0 || cfg.CaptureTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, capture=%s)",
			cfg.RequestTimeout, cfg.CaptureTimeout)
	}
	if err := cfg.EnhanceOptions().Validate(); err != nil {
		return nil, fmt.Errorf("invalid enhancement settings: %w", err)
	}
	if cfg.BurstSize < 1 {
		return nil, fmt.Errorf("BURST_SIZE must be >= 1 (got %d)", cfg.BurstSize)
	}
	if cfg.MaxBurstSize < cfg.BurstSize {
		return nil, fmt.Errorf("MAX_BURST_SIZE must be >= BURST_SIZE (got %d < %d)", cfg.MaxBurstSize, cfg.BurstSize)
	}
	if cfg.CaptureDelay < 0 {
		return nil, fmt.Errorf("CAPTURE_DELAY must be >= 0 (got %s)", cfg.CaptureDelay)
	}
	if cfg.AzureAccountName != "" && (cfg.AzureAccountKey == "" || cfg.AzureContainer == "") {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT is set but AZURE_STORAGE_KEY or AZURE_STORAGE_CONTAINER is missing")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
