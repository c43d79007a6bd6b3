package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSnapshotSource captures stills from a camera snapshot endpoint (e.g. an
// IP camera's /snapshot URL). Every CaptureStill issues exactly one GET; a
// failed request is reported as-is so the burst layer can decide whether to
// skip the slot. No retries happen here.
type HTTPSnapshotSource struct {
	client   *http.Client
	url      string
	maxBytes int64
}

// NewHTTPSnapshotSource creates a snapshot source for the given URL.
// maxBytes bounds the accepted response body size.
func NewHTTPSnapshotSource(snapshotURL string, timeout time.Duration, maxBytes int64) *HTTPSnapshotSource {
	// Transport tuned for repeated small downloads from a single endpoint
	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPSnapshotSource{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		url:      snapshotURL,
		maxBytes: maxBytes,
	}
}

// CaptureStill requests one still from the snapshot endpoint and returns its
// encoded bytes.
func (s *HTTPSnapshotSource) CaptureStill(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "Capture-Enhancer/1.0")
	// Some camera endpoints serve the previous frame from cache
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request failed: status code %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, fmt.Errorf("snapshot exceeds %d bytes", s.maxBytes)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("snapshot body is empty")
	}

	return raw, nil
}
