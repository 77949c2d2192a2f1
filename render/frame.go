package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

// FrameBackend is the set of per-frame operations the Synchronizer
// drives. Slot arguments index the in-flight sync triples and command
// buffers; image indices index the swapchain framebuffers. Renderer is
// the production implementation; tests substitute a recording fake.
type FrameBackend interface {
	// WaitFrame blocks until the slot's previous submission has
	// retired, then resets the slot's fence.
	WaitFrame(slot int) error

	// AcquireImage acquires the next presentable swapchain image,
	// signaling the slot's image-available semaphore. The returned
	// index is independent of the slot.
	AcquireImage(slot int) (int, error)

	// RecordCommands resets and re-records the slot's command buffer
	// against the framebuffer for imageIndex.
	RecordCommands(slot, imageIndex int) error

	// SubmitCommands submits the slot's command buffer, waiting on the
	// slot's image-available semaphore and signaling its
	// render-finished semaphore and fence.
	SubmitCommands(slot, imageIndex int) error

	// PresentImage queues imageIndex for presentation, gated on the
	// slot's render-finished semaphore.
	PresentImage(slot, imageIndex int) error
}

// Synchronizer cycles through the in-flight frame slots, running the
// steady-state submission protocol once per DrawFrame call. All GPU
// ordering lives in the semaphore/fence graph owned by the backend;
// the Synchronizer itself only guarantees that a slot is never reused
// before its fence wait and that the slot counter advances exactly
// once per submitted frame.
type Synchronizer struct {
	slots   int
	current int
}

// NewSynchronizer returns a Synchronizer cycling over slots in-flight
// frame slots, starting at slot zero.
func NewSynchronizer(slots int) *Synchronizer {
	return &Synchronizer{slots: slots}
}

// CurrentSlot returns the slot the next DrawFrame will use.
func (s *Synchronizer) CurrentSlot() int {
	return s.current
}

// DrawFrame runs one full frame against b. Once recording starts the
// frame always runs through present; any failure is terminal for the
// loop and leaves the slot counter unchanged.
func (s *Synchronizer) DrawFrame(b FrameBackend) error {
	slot := s.current

	err := b.WaitFrame(slot)
	if err != nil {
		return err
	}

	imageIndex, err := b.AcquireImage(slot)
	if err != nil {
		return err
	}

	err = b.RecordCommands(slot, imageIndex)
	if err != nil {
		return err
	}

	err = b.SubmitCommands(slot, imageIndex)
	if err != nil {
		return err
	}

	err = b.PresentImage(slot, imageIndex)
	if err != nil {
		return err
	}

	s.current = (slot + 1) % s.slots
	return nil
}

func (r *Renderer) createCommandPool() error {
	pool, _, err := r.device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: *r.queueIndices.Graphics,
		Flags:            core1_0.CommandPoolCreateResetBuffer,
	})
	if err != nil {
		return errors.Wrap(err, "creating command pool")
	}
	r.commandPool = pool
	r.teardown.push(func() { r.commandPool.Destroy(nil) })

	return nil
}

func (r *Renderer) createCommandBuffers() error {
	// One reusable buffer per in-flight slot, re-recorded every frame.
	buffers, _, err := r.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: r.cfg.FramesInFlight,
	})
	if err != nil {
		return errors.Wrap(err, "allocating command buffers")
	}
	r.commandBuffers = buffers

	return nil
}

func (r *Renderer) createSyncObjects() error {
	r.teardown.push(func() {
		for _, fence := range r.inFlightFences {
			fence.Destroy(nil)
		}
		for _, semaphore := range r.renderFinishedSemaphores {
			semaphore.Destroy(nil)
		}
		for _, semaphore := range r.imageAvailableSemaphores {
			semaphore.Destroy(nil)
		}
	})

	for i := 0; i < r.cfg.FramesInFlight; i++ {
		semaphore, _, err := r.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "creating image-available semaphore")
		}

		r.imageAvailableSemaphores = append(r.imageAvailableSemaphores, semaphore)

		semaphore, _, err = r.device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return errors.Wrap(err, "creating render-finished semaphore")
		}

		r.renderFinishedSemaphores = append(r.renderFinishedSemaphores, semaphore)

		// Pre-signaled so the first wait on each slot is a no-op.
		fence, _, err := r.device.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return errors.Wrap(err, "creating in-flight fence")
		}

		r.inFlightFences = append(r.inFlightFences, fence)
	}

	return nil
}

// WaitFrame implements FrameBackend.
func (r *Renderer) WaitFrame(slot int) error {
	fences := []core1_0.Fence{r.inFlightFences[slot]}

	_, err := r.device.WaitForFences(true, common.NoTimeout, fences)
	if err != nil {
		return errors.Wrap(err, "waiting for in-flight fence")
	}

	_, err = r.device.ResetFences(fences)
	return errors.Wrap(err, "resetting in-flight fence")
}

// AcquireImage implements FrameBackend. An out-of-date swapchain is
// terminal: the window is fixed-size, so there is no recreation path.
func (r *Renderer) AcquireImage(slot int) (int, error) {
	imageIndex, res, err := r.swapchain.AcquireNextImage(common.NoTimeout, r.imageAvailableSemaphores[slot], nil)
	if res == khr_swapchain.VKErrorOutOfDate {
		return 0, errors.New("swapchain out of date during acquire; the fixed-size window has no recreation path")
	} else if err != nil {
		return 0, errors.Wrap(err, "acquiring swapchain image")
	}

	return imageIndex, nil
}

// RecordCommands implements FrameBackend.
func (r *Renderer) RecordCommands(slot, imageIndex int) error {
	buffer := r.commandBuffers[slot]

	_, err := buffer.Reset(0)
	if err != nil {
		return errors.Wrap(err, "resetting command buffer")
	}

	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return errors.Wrap(err, "beginning command buffer")
	}

	err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  r.renderPass,
			Framebuffer: r.swapchainFramebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
			},
		})
	if err != nil {
		return errors.Wrap(err, "beginning render pass")
	}

	buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, r.graphicsPipeline)
	buffer.CmdDraw(3, 1, 0, 0)
	buffer.CmdEndRenderPass()

	_, err = buffer.End()
	return errors.Wrap(err, "ending command buffer")
}

// SubmitCommands implements FrameBackend. The wait happens at the
// color-attachment-output stage so earlier pipeline stages may run
// before the image is actually available.
func (r *Renderer) SubmitCommands(slot, imageIndex int) error {
	_, err := r.graphicsQueue.Submit(r.inFlightFences[slot], []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{r.imageAvailableSemaphores[slot]},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{r.commandBuffers[slot]},
			SignalSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[slot]},
		},
	})
	return errors.Wrap(err, "submitting to graphics queue")
}

// PresentImage implements FrameBackend.
func (r *Renderer) PresentImage(slot, imageIndex int) error {
	res, err := r.swapchainExtension.QueuePresent(r.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[slot]},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain},
		ImageIndices:   []int{imageIndex},
	})
	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return errors.New("swapchain out of date during present; the fixed-size window has no recreation path")
	}
	return errors.Wrap(err, "presenting swapchain image")
}
