package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// SwapchainSupportDetails is a read-only snapshot of what a physical
// device can present to the surface.
type SwapchainSupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

// Adequate reports whether the device advertises at least one format
// and one present mode for the surface.
func (d SwapchainSupportDetails) Adequate() bool {
	return len(d.Formats) > 0 && len(d.PresentModes) > 0
}

func (r *Renderer) querySwapchainSupport(device core1_0.PhysicalDevice) (SwapchainSupportDetails, error) {
	var details SwapchainSupportDetails
	var err error

	details.Capabilities, _, err = r.surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return details, errors.Wrap(err, "querying surface capabilities")
	}

	details.Formats, _, err = r.surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return details, errors.Wrap(err, "querying surface formats")
	}

	details.PresentModes, _, err = r.surface.PhysicalDeviceSurfacePresentModes(device)
	return details, errors.Wrap(err, "querying surface present modes")
}

// chooseSurfaceFormat prefers 8-bit BGRA with the nonlinear sRGB color
// space; when absent the first advertised format is taken verbatim.
func chooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

// choosePresentMode prefers mailbox for non-blocking triple buffering,
// falling back to FIFO, the only mode the spec guarantees.
func choosePresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// chooseExtent uses the surface's current extent unless the backend
// reports the undefined-extent sentinel, in which case the drawable
// pixel size is clamped into the supported range.
func chooseExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	width := drawableWidth
	height := drawableHeight

	if width < capabilities.MinImageExtent.Width {
		width = capabilities.MinImageExtent.Width
	}
	if width > capabilities.MaxImageExtent.Width {
		width = capabilities.MaxImageExtent.Width
	}
	if height < capabilities.MinImageExtent.Height {
		height = capabilities.MinImageExtent.Height
	}
	if height > capabilities.MaxImageExtent.Height {
		height = capabilities.MaxImageExtent.Height
	}

	return core1_0.Extent2D{Width: width, Height: height}
}

// chooseImageCount asks for one image over the minimum so the driver
// never stalls waiting for us, capped by the maximum when one exists
// (zero means unbounded).
func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

// chooseSharingMode declares concurrent image access when the graphics
// and present roles live in different queue families; a single family
// gets the cheaper exclusive mode with no family list.
func chooseSharingMode(indices QueueFamilyIndices) (core1_0.SharingMode, []int) {
	if *indices.Graphics != *indices.Present {
		return core1_0.SharingModeConcurrent, []int{*indices.Graphics, *indices.Present}
	}
	return core1_0.SharingModeExclusive, nil
}

func (r *Renderer) createSwapchain() error {
	r.swapchainExtension = khr_swapchain.CreateExtensionFromDevice(r.device)

	swapchainSupport, err := r.querySwapchainSupport(r.physicalDevice)
	if err != nil {
		return err
	}

	surfaceFormat := chooseSurfaceFormat(swapchainSupport.Formats)
	presentMode := choosePresentMode(swapchainSupport.PresentModes)

	drawableWidth, drawableHeight := r.window.VulkanGetDrawableSize()
	extent := chooseExtent(swapchainSupport.Capabilities, int(drawableWidth), int(drawableHeight))

	sharingMode, queueFamilyIndices := chooseSharingMode(r.queueIndices)

	swapchain, _, err := r.swapchainExtension.CreateSwapchain(r.device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: r.surface,

		MinImageCount:    chooseImageCount(swapchainSupport.Capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "creating swapchain")
	}
	r.swapchainExtent = extent
	r.swapchain = swapchain
	r.swapchainImageFormat = surfaceFormat.Format
	r.teardown.push(func() { r.swapchain.Destroy(nil) })

	return nil
}

func (r *Renderer) createImageViews() error {
	images, _, err := r.swapchain.SwapchainImages()
	if err != nil {
		return errors.Wrap(err, "retrieving swapchain images")
	}
	r.swapchainImages = images

	// Pushed before the loop so a mid-loop failure still unwinds the
	// views created so far.
	r.teardown.push(func() {
		for _, imageView := range r.swapchainImageViews {
			imageView.Destroy(nil)
		}
	})

	for _, image := range images {
		view, _, err := r.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   r.swapchainImageFormat,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "creating swapchain image view")
		}

		r.swapchainImageViews = append(r.swapchainImageViews, view)
	}

	return nil
}
