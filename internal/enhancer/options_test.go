package enhancer

import "testing"

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Gamma != 1.1 {
		t.Errorf("expected default gamma 1.1, got %g", opts.Gamma)
	}
	if opts.SharpenAmount != 1.2 {
		t.Errorf("expected default sharpen amount 1.2, got %g", opts.SharpenAmount)
	}
	if opts.SharpenRadius != 0.8 {
		t.Errorf("expected default sharpen radius 0.8, got %g", opts.SharpenRadius)
	}
	if opts.SharpenThreshold != 5 {
		t.Errorf("expected default sharpen threshold 5, got %g", opts.SharpenThreshold)
	}
	if opts.JPEGQuality != 95 {
		t.Errorf("expected default JPEG quality 95, got %d", opts.JPEGQuality)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("default options failed validation: %v", err)
	}
}

func TestNeutralOptions(t *testing.T) {
	opts := NeutralOptions()
	if opts.Gamma != 1 {
		t.Errorf("expected neutral gamma 1, got %g", opts.Gamma)
	}
	if opts.SharpenAmount != 0 {
		t.Errorf("expected neutral sharpen amount 0, got %g", opts.SharpenAmount)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("neutral options failed validation: %v", err)
	}
}

func TestStrongOptions(t *testing.T) {
	opts := StrongOptions()
	if opts.SharpenAmount <= DefaultOptions().SharpenAmount {
		t.Error("expected strong options to sharpen more than defaults")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("strong options failed validation: %v", err)
	}
}

func TestOptions_Modifiers(t *testing.T) {
	opts := DefaultOptions().
		WithGamma(1.4).
		WithSharpen(2, 1.5, 8).
		WithJPEGQuality(80)

	if opts.Gamma != 1.4 {
		t.Errorf("WithGamma not applied: got %g", opts.Gamma)
	}
	if opts.SharpenAmount != 2 || opts.SharpenRadius != 1.5 || opts.SharpenThreshold != 8 {
		t.Errorf("WithSharpen not applied: got %+v", opts)
	}
	if opts.JPEGQuality != 80 {
		t.Errorf("WithJPEGQuality not applied: got %d", opts.JPEGQuality)
	}

	// Modifiers must not touch the original
	if DefaultOptions().Gamma != 1.1 {
		t.Error("modifier mutated shared defaults")
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"zero gamma", DefaultOptions().WithGamma(0), true},
		{"negative gamma", DefaultOptions().WithGamma(-2), true},
		{"negative amount", DefaultOptions().WithSharpen(-1, 0.8, 5), true},
		{"zero radius", DefaultOptions().WithSharpen(1, 0, 5), true},
		{"negative threshold", DefaultOptions().WithSharpen(1, 0.8, -1), true},
		{"quality zero", DefaultOptions().WithJPEGQuality(0), true},
		{"quality above range", DefaultOptions().WithJPEGQuality(101), true},
		{"quality lower bound", DefaultOptions().WithJPEGQuality(1), false},
		{"quality upper bound", DefaultOptions().WithJPEGQuality(100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
