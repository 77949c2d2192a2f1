package render

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
)

// QueueFamilyIndices holds the first queue family found for each of
// the two roles the renderer needs. The same family may fill both.
type QueueFamilyIndices struct {
	Graphics *int
	Present  *int
}

// IsComplete reports whether both roles were filled.
func (i QueueFamilyIndices) IsComplete() bool {
	return i.Graphics != nil && i.Present != nil
}

// unusableScore marks a device that must never be selected, regardless
// of its hardware type.
const unusableScore = -1

// scoreCandidate rates a physical device from its queried
// capabilities. Incomplete queue coverage, missing extensions, or an
// inadequate swapchain disqualify it outright; among usable devices a
// discrete GPU is preferred but never required.
func scoreCandidate(indices QueueFamilyIndices, extensionsSupported bool, support SwapchainSupportDetails, deviceType core1_0.PhysicalDeviceType) int {
	if !indices.IsComplete() || !extensionsSupported || !support.Adequate() {
		return unusableScore
	}
	if deviceType == core1_0.PhysicalDeviceTypeDiscreteGPU {
		return 100
	}
	return 0
}

// bestCandidate returns the index of the highest-scoring candidate,
// resolving ties to the first in enumeration order, or -1 when every
// candidate is unusable.
func bestCandidate(scores []int) int {
	best := -1
	bestScore := unusableScore
	for i, score := range scores {
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func (r *Renderer) pickPhysicalDevice() error {
	physicalDevices, _, err := r.instance.EnumeratePhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerating physical devices")
	}

	scores := make([]int, len(physicalDevices))
	allIndices := make([]QueueFamilyIndices, len(physicalDevices))
	for i, device := range physicalDevices {
		indices, err := r.findQueueFamilies(device)
		if err != nil {
			return err
		}
		allIndices[i] = indices

		extensionsSupported := r.checkDeviceExtensionSupport(device)

		var support SwapchainSupportDetails
		if extensionsSupported {
			support, err = r.querySwapchainSupport(device)
			if err != nil {
				return err
			}
		}

		properties, err := device.Properties()
		if err != nil {
			return errors.Wrap(err, "querying device properties")
		}

		scores[i] = scoreCandidate(indices, extensionsSupported, support, properties.DriverType)
	}

	best := bestCandidate(scores)
	if best < 0 {
		return errors.New("failed to find a suitable GPU")
	}
	r.physicalDevice = physicalDevices[best]
	r.queueIndices = allIndices[best]

	properties, err := r.physicalDevice.Properties()
	if err == nil {
		log.WithFields(log.Fields{
			"device": properties.DeviceName,
			"score":  scores[best],
		}).Info("selected physical device")
	}

	return nil
}

func (r *Renderer) createLogicalDevice() error {
	indices := r.queueIndices

	uniqueQueueFamilies := []int{*indices.Graphics}
	if uniqueQueueFamilies[0] != *indices.Present {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *indices.Present)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, r.cfg.DeviceExtensions...)

	// Necessary to run on top of vulkan portability (MoltenVK et al).
	extensions, _, err := r.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return errors.Wrap(err, "enumerating device extensions")
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	r.device, _, err = r.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrap(err, "creating logical device")
	}
	r.teardown.push(func() { r.device.Destroy(nil) })

	r.graphicsQueue = r.device.GetQueue(*indices.Graphics, 0)
	r.presentQueue = r.device.GetQueue(*indices.Present, 0)
	return nil
}

func (r *Renderer) checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return false
	}

	for _, extension := range r.cfg.DeviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

func (r *Renderer) findQueueFamilies(device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}
	queueFamilies := device.QueueFamilyProperties()

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if indices.Graphics == nil && (queueFamily.QueueFlags&core1_0.QueueGraphics) != 0 {
			indices.Graphics = new(int)
			*indices.Graphics = queueFamilyIdx
		}

		supported, _, err := r.surface.PhysicalDeviceSurfaceSupport(device, queueFamilyIdx)
		if err != nil {
			return indices, errors.Wrap(err, "querying surface support")
		}

		if indices.Present == nil && supported {
			indices.Present = new(int)
			*indices.Present = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}
