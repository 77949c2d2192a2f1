package render

import (
	"testing"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

func intPtr(v int) *int {
	return &v
}

func adequateSupport() SwapchainSupportDetails {
	return SwapchainSupportDetails{
		Capabilities: &khr_surface.SurfaceCapabilities{},
		Formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []khr_surface.PresentMode{khr_surface.PresentModeFIFO},
	}
}

func completeIndices() QueueFamilyIndices {
	return QueueFamilyIndices{Graphics: intPtr(0), Present: intPtr(0)}
}

func TestQueueFamilyIndicesIsComplete(t *testing.T) {
	var indices QueueFamilyIndices
	if indices.IsComplete() {
		t.Error("empty indices reported complete")
	}

	indices.Graphics = intPtr(1)
	if indices.IsComplete() {
		t.Error("graphics-only indices reported complete")
	}

	indices.Present = intPtr(2)
	if !indices.IsComplete() {
		t.Error("full indices reported incomplete")
	}
}

func TestScoreCandidateRejectsIncompleteIndices(t *testing.T) {
	// A discrete GPU with incomplete queue coverage must still be
	// unusable.
	score := scoreCandidate(QueueFamilyIndices{Graphics: intPtr(0)}, true, adequateSupport(), core1_0.PhysicalDeviceTypeDiscreteGPU)
	if score != unusableScore {
		t.Errorf("expected %d for incomplete indices, got %d", unusableScore, score)
	}
}

func TestScoreCandidateRejectsMissingExtensions(t *testing.T) {
	score := scoreCandidate(completeIndices(), false, adequateSupport(), core1_0.PhysicalDeviceTypeDiscreteGPU)
	if score != unusableScore {
		t.Errorf("expected %d for missing extensions, got %d", unusableScore, score)
	}
}

func TestScoreCandidateRejectsInadequateSwapchain(t *testing.T) {
	noFormats := adequateSupport()
	noFormats.Formats = nil
	if score := scoreCandidate(completeIndices(), true, noFormats, core1_0.PhysicalDeviceTypeDiscreteGPU); score != unusableScore {
		t.Errorf("expected %d with zero formats, got %d", unusableScore, score)
	}

	noModes := adequateSupport()
	noModes.PresentModes = nil
	if score := scoreCandidate(completeIndices(), true, noModes, core1_0.PhysicalDeviceTypeDiscreteGPU); score != unusableScore {
		t.Errorf("expected %d with zero present modes, got %d", unusableScore, score)
	}
}

func TestScoreCandidatePrefersDiscrete(t *testing.T) {
	discrete := scoreCandidate(completeIndices(), true, adequateSupport(), core1_0.PhysicalDeviceTypeDiscreteGPU)
	integrated := scoreCandidate(completeIndices(), true, adequateSupport(), core1_0.PhysicalDeviceTypeIntegratedGPU)

	if discrete != 100 {
		t.Errorf("expected discrete GPU score 100, got %d", discrete)
	}
	if integrated != 0 {
		t.Errorf("expected integrated GPU score 0, got %d", integrated)
	}
}

func TestScoreCandidateDeterministic(t *testing.T) {
	indices := completeIndices()
	support := adequateSupport()

	first := scoreCandidate(indices, true, support, core1_0.PhysicalDeviceTypeIntegratedGPU)
	for i := 0; i < 10; i++ {
		if got := scoreCandidate(indices, true, support, core1_0.PhysicalDeviceTypeIntegratedGPU); got != first {
			t.Fatalf("score changed between runs: %d then %d", first, got)
		}
	}
}

func TestBestCandidate(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, -1},
		{"all unusable", []int{-1, -1, -1}, -1},
		{"discrete beats integrated", []int{0, 100, 0}, 1},
		{"ties resolve to first", []int{100, 100, 100}, 0},
		{"usable integrated beats unusable discrete", []int{-1, 0}, 1},
		{"zero-score ties resolve to first", []int{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestCandidate(tt.scores); got != tt.want {
				t.Errorf("bestCandidate(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}
