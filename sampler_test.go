package portalcast

import "testing"

func TestPlaceholderSamplerChecker(t *testing.T) {
	s := PlaceholderSampler{}
	rgb, mask := s.SampleScaled(0, 0, 0, 1)
	if mask != 255 {
		t.Errorf("mask = %d, want 255", mask)
	}
	if rgb != ([3]uint8{255, 0, 255}) {
		t.Errorf("rgb at origin = %v, want magenta", rgb)
	}
}

func TestPlaceholderSamplerAlternatesTiles(t *testing.T) {
	s := PlaceholderSampler{}
	a, _ := s.SampleScaled(0, 0, 0, 1)
	b, _ := s.SampleScaled(0, 8, 0, 1)
	if a == b {
		t.Error("adjacent checker tiles should differ")
	}
}

func TestPlaceholderSamplerNormalizedNeverTransparent(t *testing.T) {
	s := PlaceholderSampler{}
	for _, fx := range []float64{0, 0.25, 0.5, 0.75, 1} {
		_, mask := s.SampleNormalized(0, fx, 0.5, 1)
		if mask == 0 {
			t.Errorf("SampleNormalized(%v) mask = 0, want opaque", fx)
		}
	}
}
