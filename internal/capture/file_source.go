package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileReplaySource replays encoded stills from a directory in round-robin
// order. It stands in for camera hardware when tuning enhancement parameters
// against a fixed burst, and in tests.
type FileReplaySource struct {
	mu    sync.Mutex
	paths []string
	next  int
}

// NewFileReplaySource scans dir for still files (.jpg, .jpeg, .png) and
// returns a source cycling through them in lexical order.
func NewFileReplaySource(dir string) (*FileReplaySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read still directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no stills found in %s", dir)
	}
	sort.Strings(paths)

	return &FileReplaySource{paths: paths}, nil
}

// CaptureStill returns the next still in the cycle.
func (s *FileReplaySource) CaptureStill(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	path := s.paths[s.next%len(s.paths)]
	s.next++
	s.mu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read still %s: %w", path, err)
	}
	return raw, nil
}
