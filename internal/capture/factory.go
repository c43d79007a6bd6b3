package capture

import (
	"fmt"
	"time"
)

// SourceKind selects a capture collaborator implementation
type SourceKind string

const (
	// SourceHTTP captures from a camera snapshot endpoint
	SourceHTTP SourceKind = "http"
	// SourceFile replays stills from a local directory
	SourceFile SourceKind = "file"
)

// SourceFactory creates capture sources
type SourceFactory interface {
	CreateSource(kind SourceKind, target string) (StillSource, error)
}

// sourceFactory implements SourceFactory with shared transport settings
type sourceFactory struct {
	timeout  time.Duration
	maxBytes int64
}

// NewSourceFactory creates a factory. Timeout and maxBytes apply to every
// HTTP source it builds.
func NewSourceFactory(timeout time.Duration, maxBytes int64) SourceFactory {
	return &sourceFactory{timeout: timeout, maxBytes: maxBytes}
}

// CreateSource builds a source of the given kind. Target is a snapshot URL
// for SourceHTTP and a directory path for SourceFile.
func (f *sourceFactory) CreateSource(kind SourceKind, target string) (StillSource, error) {
	switch kind {
	case SourceHTTP:
		return NewHTTPSnapshotSource(target, f.timeout, f.maxBytes), nil
	case SourceFile:
		return NewFileReplaySource(target)
	default:
		return nil, fmt.Errorf("unsupported capture source kind: %s", kind)
	}
}
