// Package render bootstraps a Vulkan device and drives a
// double-buffered frame loop that rasterizes a single triangle. The
// bootstrap is a strict, order-dependent chain (instance, surface,
// device, swapchain, pipeline, sync objects); every created resource
// is pushed onto a teardown stack so destruction order is the exact
// reverse of creation order on every exit path.
package render

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

const frameReportInterval = 5 * time.Second

// Renderer owns the whole Vulkan object graph for the triangle loop.
type Renderer struct {
	cfg    Config
	window *sdl.Window
	loader core.Loader

	instance       core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	surface        khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	queueIndices   QueueFamilyIndices
	device         core1_0.Device

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension    khr_swapchain.Extension
	swapchain             khr_swapchain.Swapchain
	swapchainImages       []core1_0.Image
	swapchainImageFormat  core1_0.Format
	swapchainExtent       core1_0.Extent2D
	swapchainImageViews   []core1_0.ImageView
	swapchainFramebuffers []core1_0.Framebuffer

	renderPass       core1_0.RenderPass
	pipelineLayout   core1_0.PipelineLayout
	graphicsPipeline core1_0.Pipeline

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailableSemaphores []core1_0.Semaphore
	renderFinishedSemaphores []core1_0.Semaphore
	inFlightFences           []core1_0.Fence

	sync     *Synchronizer
	teardown teardownStack
}

// New returns a renderer for cfg. Nothing is created until Run.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Run creates the window and the full Vulkan object graph, drives the
// frame loop until the window is closed, then waits for the device to
// go idle and unwinds everything in reverse creation order. The
// teardown stack also runs when any bootstrap step fails, so a partial
// bootstrap never leaks the resources created before the failure.
func (r *Renderer) Run() error {
	defer r.cleanup()

	err := r.initWindow()
	if err != nil {
		return err
	}

	err = r.initVulkan()
	if err != nil {
		return err
	}

	err = r.mainLoop()

	// Drain in-flight submissions before the deferred teardown tears
	// down sync objects they may still reference. Runs on the error
	// path too.
	_, idleErr := r.device.WaitIdle()
	if err == nil {
		err = errors.Wrap(idleErr, "waiting for device idle before teardown")
	}
	return err
}

func (r *Renderer) initWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "initializing sdl video")
	}
	r.teardown.push(sdl.Quit)

	window, err := sdl.CreateWindow(r.cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(r.cfg.Width), int32(r.cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		return errors.Wrap(err, "creating window")
	}
	r.window = window
	r.teardown.push(func() { window.Destroy() })

	r.loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return errors.Wrap(err, "creating vulkan loader")
	}

	return nil
}

func (r *Renderer) initVulkan() error {
	err := r.createInstance()
	if err != nil {
		return err
	}

	err = r.setupDebugMessenger()
	if err != nil {
		return err
	}

	err = r.createSurface()
	if err != nil {
		return err
	}

	err = r.pickPhysicalDevice()
	if err != nil {
		return err
	}

	err = r.createLogicalDevice()
	if err != nil {
		return err
	}

	err = r.createSwapchain()
	if err != nil {
		return err
	}

	err = r.createImageViews()
	if err != nil {
		return err
	}

	err = r.createRenderPass()
	if err != nil {
		return err
	}

	err = r.createGraphicsPipeline()
	if err != nil {
		return err
	}

	err = r.createFramebuffers()
	if err != nil {
		return err
	}

	err = r.createCommandPool()
	if err != nil {
		return err
	}

	err = r.createCommandBuffers()
	if err != nil {
		return err
	}

	err = r.createSyncObjects()
	if err != nil {
		return err
	}

	r.sync = NewSynchronizer(r.cfg.FramesInFlight)
	return nil
}

func (r *Renderer) mainLoop() error {
	reportStart := hrtime.Now()
	frames := 0

appLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				break appLoop
			}
		}

		err := r.sync.DrawFrame(r)
		if err != nil {
			return err
		}

		frames++
		if elapsed := hrtime.Since(reportStart); elapsed >= frameReportInterval {
			log.WithFields(log.Fields{
				"frames":    frames,
				"avg_frame": (elapsed / time.Duration(frames)).String(),
			}).Debug("frame timing")
			reportStart = hrtime.Now()
			frames = 0
		}
	}

	return nil
}

func (r *Renderer) cleanup() {
	r.teardown.run()
}
