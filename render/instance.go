package render

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"
)

func (r *Renderer) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    r.cfg.Title,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	// The window system dictates which surface extensions the instance
	// must carry.
	sdlExtensions := r.window.VulkanGetInstanceExtensions()
	extensions, _, err := r.loader.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerating instance extensions")
	}

	for _, ext := range sdlExtensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("createInstance: window system requires missing instance extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if r.cfg.EnableValidation {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	layers, _, err := r.loader.AvailableLayers()
	if err != nil {
		return errors.Wrap(err, "enumerating instance layers")
	}

	if r.cfg.EnableValidation {
		for _, layer := range r.cfg.ValidationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Newf("createInstance: validation layer %s not available- install LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Covers messages emitted during instance creation itself.
		instanceOptions.Next = r.debugMessengerOptions()
	}

	r.instance, _, err = r.loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "creating instance")
	}
	r.teardown.push(func() { r.instance.Destroy(nil) })

	return nil
}

func (r *Renderer) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityVerbose | ext_debug_utils.SeverityInfo |
			ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError,
		MessageType:  ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: r.logDebug,
	}
}

func (r *Renderer) setupDebugMessenger() error {
	if !r.cfg.EnableValidation {
		return nil
	}

	var err error
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(r.instance)
	r.debugMessenger, _, err = debugLoader.CreateDebugUtilsMessenger(r.instance, nil, r.debugMessengerOptions())
	if err != nil {
		return errors.Wrap(err, "creating debug messenger")
	}
	r.teardown.push(func() { r.debugMessenger.Destroy(nil) })

	return nil
}

func (r *Renderer) createSurface() error {
	surfaceLoader := khr_surface.CreateExtensionFromInstance(r.instance)

	surface, err := vkng_sdl2.CreateSurface(r.instance, surfaceLoader, r.window)
	if err != nil {
		return errors.Wrap(err, "creating window surface")
	}

	r.surface = surface
	r.teardown.push(func() { r.surface.Destroy(nil) })
	return nil
}

// logDebug routes validation and performance messages from the driver
// into structured logging. Advisory only: returning false tells the
// backend never to abort the triggering call.
func (r *Renderer) logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	entry := log.WithField("type", msgType)

	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		entry.Error(data.Message)
	case severity&ext_debug_utils.SeverityWarning != 0:
		entry.Warn(data.Message)
	case severity&ext_debug_utils.SeverityInfo != 0:
		entry.Info(data.Message)
	default:
		entry.Debug(data.Message)
	}

	return false
}
