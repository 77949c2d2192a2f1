package render

import (
	"testing"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

func TestChooseSurfaceFormatPrefersBGRA8SRGB(t *testing.T) {
	// Preferred format deliberately last.
	formats := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}

	chosen := chooseSurfaceFormat(formats)
	if chosen.Format != core1_0.FormatB8G8R8A8SRGB {
		t.Errorf("expected preferred BGRA8 sRGB at index 2 to win, got %v", chosen.Format)
	}
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []khr_surface.SurfaceFormat{
		{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		{Format: core1_0.FormatB8G8R8A8UnsignedNormalized, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
	}

	chosen := chooseSurfaceFormat(formats)
	if chosen != formats[0] {
		t.Errorf("expected first advertised format as fallback, got %v", chosen)
	}
}

func TestChoosePresentModePrefersMailbox(t *testing.T) {
	modes := []khr_surface.PresentMode{
		khr_surface.PresentModeFIFO,
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeMailbox,
	}

	if chosen := choosePresentMode(modes); chosen != khr_surface.PresentModeMailbox {
		t.Errorf("expected mailbox, got %v", chosen)
	}
}

func TestChoosePresentModeFallsBackToFIFO(t *testing.T) {
	// Immediate is advertised but must not be chosen over FIFO.
	modes := []khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
		khr_surface.PresentModeFIFORelaxed,
	}

	if chosen := choosePresentMode(modes); chosen != khr_surface.PresentModeFIFO {
		t.Errorf("expected FIFO fallback, got %v", chosen)
	}
}

func TestChooseExtentUsesCurrentExtentVerbatim(t *testing.T) {
	caps := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: 800, Height: 450},
		MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}

	// Drawable size must be ignored when the extent is defined.
	extent := chooseExtent(caps, 1920, 1080)
	if extent != caps.CurrentExtent {
		t.Errorf("expected current extent verbatim, got %+v", extent)
	}
}

func TestChooseExtentClampsDrawableSizeOnSentinel(t *testing.T) {
	caps := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 200, Height: 200},
		MaxImageExtent: core1_0.Extent2D{Width: 1024, Height: 1024},
	}

	tests := []struct {
		name          string
		width, height int
		want          core1_0.Extent2D
	}{
		{"within bounds", 800, 450, core1_0.Extent2D{Width: 800, Height: 450}},
		{"clamped up", 100, 50, core1_0.Extent2D{Width: 200, Height: 200}},
		{"clamped down", 5000, 3000, core1_0.Extent2D{Width: 1024, Height: 1024}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseExtent(caps, tt.width, tt.height); got != tt.want {
				t.Errorf("chooseExtent(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     int
	}{
		{"one over minimum", 2, 8, 3},
		{"capped by maximum", 3, 3, 3},
		{"zero maximum is unbounded", 4, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := &khr_surface.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			if got := chooseImageCount(caps); got != tt.want {
				t.Errorf("chooseImageCount(min=%d, max=%d) = %d, want %d", tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestChooseSharingModeSameFamily(t *testing.T) {
	mode, families := chooseSharingMode(QueueFamilyIndices{Graphics: intPtr(1), Present: intPtr(1)})
	if mode != core1_0.SharingModeExclusive {
		t.Errorf("expected exclusive sharing for one family, got %v", mode)
	}
	if len(families) != 0 {
		t.Errorf("expected no listed families, got %v", families)
	}
}

func TestChooseSharingModeDistinctFamilies(t *testing.T) {
	mode, families := chooseSharingMode(QueueFamilyIndices{Graphics: intPtr(0), Present: intPtr(2)})
	if mode != core1_0.SharingModeConcurrent {
		t.Errorf("expected concurrent sharing for distinct families, got %v", mode)
	}
	if len(families) != 2 || families[0] != 0 || families[1] != 2 {
		t.Errorf("expected families [0 2], got %v", families)
	}
}

func TestSwapchainSupportAdequate(t *testing.T) {
	if (SwapchainSupportDetails{}).Adequate() {
		t.Error("empty support reported adequate")
	}
	if !adequateSupport().Adequate() {
		t.Error("populated support reported inadequate")
	}
}
