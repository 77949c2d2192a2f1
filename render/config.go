package render

import (
	"path/filepath"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// DefaultFramesInFlight is how many frames the CPU may have submitted
// but not yet confirmed complete. Two allows the CPU to prepare one
// frame while the GPU executes the previous one.
const DefaultFramesInFlight = 2

// Config carries every knob the renderer needs up front: window
// geometry, the capability names to request, and where the compiled
// shader binaries live. It is passed in by value so tests can run the
// selection logic with alternate capability sets.
type Config struct {
	Title  string
	Width  int
	Height int

	FramesInFlight int

	EnableValidation bool
	ValidationLayers []string
	DeviceExtensions []string

	VertexShaderPath   string
	FragmentShaderPath string
}

// DefaultConfig returns the fixed-size configuration the voxel
// raytracer ships with.
func DefaultConfig() Config {
	return Config{
		Title:  "Voxel Raytracer",
		Width:  800,
		Height: 450,

		FramesInFlight: DefaultFramesInFlight,

		EnableValidation: true,
		ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions: []string{khr_swapchain.ExtensionName},

		VertexShaderPath:   filepath.Join("res", "shaders", "main.vert.spv"),
		FragmentShaderPath: filepath.Join("res", "shaders", "main.frag.spv"),
	}
}

// FromEnv layers VOXTRACE_* environment overrides on top of
// DefaultConfig.
func FromEnv() Config {
	cfg := DefaultConfig()

	shaderDir := envy.Get("VOXTRACE_SHADER_DIR", "")
	if shaderDir != "" {
		cfg.VertexShaderPath = filepath.Join(shaderDir, "main.vert.spv")
		cfg.FragmentShaderPath = filepath.Join(shaderDir, "main.frag.spv")
	}

	if validation, err := strconv.ParseBool(envy.Get("VOXTRACE_VALIDATION", "true")); err == nil {
		cfg.EnableValidation = validation
	}
	if width, err := strconv.Atoi(envy.Get("VOXTRACE_WIDTH", "")); err == nil && width > 0 {
		cfg.Width = width
	}
	if height, err := strconv.Atoi(envy.Get("VOXTRACE_HEIGHT", "")); err == nil && height > 0 {
		cfg.Height = height
	}

	return cfg
}
