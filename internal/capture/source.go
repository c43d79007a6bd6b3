package capture

import "context"

// StillSource is the external capture collaborator: each call yields one
// encoded still (opaque compressed bytes) or an error. How the collaborator
// selects devices, negotiates resolution or manages permissions is its own
// concern; callers hold a source handle instead of relying on ambient
// capture state.
type StillSource interface {
	CaptureStill(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a plain function to the StillSource interface.
type SourceFunc func(ctx context.Context) ([]byte, error)

// CaptureStill calls f
func (f SourceFunc) CaptureStill(ctx context.Context) ([]byte, error) {
	return f(ctx)
}
