package capture

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStillFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestFileReplaySource_RoundRobin(t *testing.T) {
	dir := t.TempDir()
	writeStillFile(t, dir, "b.jpg", []byte("still-b"))
	writeStillFile(t, dir, "a.png", []byte("still-a"))
	writeStillFile(t, dir, "notes.txt", []byte("ignored"))

	source, err := NewFileReplaySource(dir)
	if err != nil {
		t.Fatalf("NewFileReplaySource failed: %v", err)
	}

	// Lexical order, then wrap around; non-still files are skipped
	want := [][]byte{[]byte("still-a"), []byte("still-b"), []byte("still-a")}
	for i, expected := range want {
		raw, err := source.CaptureStill(context.Background())
		if err != nil {
			t.Fatalf("capture %d failed: %v", i, err)
		}
		if !bytes.Equal(raw, expected) {
			t.Errorf("capture %d: expected %q, got %q", i, expected, raw)
		}
	}
}

func TestFileReplaySource_EmptyDirectory(t *testing.T) {
	if _, err := NewFileReplaySource(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without stills")
	}
}

func TestFileReplaySource_MissingDirectory(t *testing.T) {
	if _, err := NewFileReplaySource(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFileReplaySource_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeStillFile(t, dir, "a.jpg", []byte("still-a"))

	source, err := NewFileReplaySource(dir)
	if err != nil {
		t.Fatalf("NewFileReplaySource failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.CaptureStill(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
