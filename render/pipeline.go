package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"

	"github.com/voxtrace/voxtrace/shader"
)

func (r *Renderer) createRenderPass() error {
	renderPass, _, err := r.device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         r.swapchainImageFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		// Gate color writes until the presentation engine has released
		// the image; without this the subpass may scribble on an image
		// still being acquired.
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating render pass")
	}

	r.renderPass = renderPass
	r.teardown.push(func() { r.renderPass.Destroy(nil) })

	return nil
}

func (r *Renderer) createGraphicsPipeline() error {
	vertShader, _, err := r.device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: shader.Words(shader.Load(r.cfg.VertexShaderPath)),
	})
	if err != nil {
		return errors.Wrapf(err, "creating vertex shader module from %s", r.cfg.VertexShaderPath)
	}
	defer vertShader.Destroy(nil)

	fragShader, _, err := r.device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: shader.Words(shader.Load(r.cfg.FragmentShaderPath)),
	})
	if err != nil {
		return errors.Wrapf(err, "creating fragment shader module from %s", r.cfg.FragmentShaderPath)
	}
	defer fragShader.Destroy(nil)

	// The triangle is hardcoded in the vertex shader: no bindings, no
	// attributes.
	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(r.swapchainExtent.Width),
				Height:   float32(r.swapchainExtent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
		},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	r.pipelineLayout, _, err = r.device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return errors.Wrap(err, "creating pipeline layout")
	}
	r.teardown.push(func() { r.pipelineLayout.Destroy(nil) })

	pipelines, _, err := r.device.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			ColorBlendState:    colorBlend,
			Layout:             r.pipelineLayout,
			RenderPass:         r.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating graphics pipeline")
	}
	r.graphicsPipeline = pipelines[0]
	r.teardown.push(func() { r.graphicsPipeline.Destroy(nil) })

	return nil
}

func (r *Renderer) createFramebuffers() error {
	r.teardown.push(func() {
		for _, framebuffer := range r.swapchainFramebuffers {
			framebuffer.Destroy(nil)
		}
	})

	for _, imageView := range r.swapchainImageViews {
		framebuffer, _, err := r.device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: r.renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
			},
			Width:  r.swapchainExtent.Width,
			Height: r.swapchainExtent.Height,
		})
		if err != nil {
			return errors.Wrap(err, "creating framebuffer")
		}

		r.swapchainFramebuffers = append(r.swapchainFramebuffers, framebuffer)
	}

	return nil
}
