package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Pipeline is a compiled graphics pipeline and the layout it was built with.
type Pipeline struct {
	Name   string
	device vk.Device
	handle vk.Pipeline
	layout vk.PipelineLayout
	// set when the layout carries the texture binding set
	bindings bool
}

func (p *Pipeline) Handle() vk.Pipeline { return p.handle }

func (p *Pipeline) Layout() vk.PipelineLayout { return p.layout }

// HasBindings reports whether the pipeline expects the texture binding set at set 0.
func (p *Pipeline) HasBindings() bool { return p.bindings }

func (p *Pipeline) Destroy() {
	if p.handle != vk.NullPipeline {
		vk.DestroyPipeline(p.device, p.handle, nil)
		p.handle = vk.NullPipeline
	}
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.device, p.layout, nil)
		p.layout = vk.NullPipelineLayout
	}
}

// PipelineBuilder holds the fixed-function state shared by every pipeline:
// triangle lists, counter-clockwise front faces with back faces culled, no
// blending, one sample and no depth. Viewport and scissor are dynamic so
// pipelines survive swapchain resizes.
type PipelineBuilder struct {
	program       *ShaderProgram
	format        vk.Format
	vertexLayout  VertexLayout
	bindingLayout vk.DescriptorSetLayout
	hasBindings   bool

	inputAssembly vk.PipelineInputAssemblyStateCreateInfo
	rasterizer    vk.PipelineRasterizationStateCreateInfo
	multisampling vk.PipelineMultisampleStateCreateInfo
	blendAttach   vk.PipelineColorBlendAttachmentState
	dynamicStates []vk.DynamicState
}

// NewPipelineBuilder prepares a pipeline for program drawing vertices of layout
// into color targets of format.
func NewPipelineBuilder(program *ShaderProgram, layout VertexLayout, format vk.Format) *PipelineBuilder {
	return &PipelineBuilder{
		program:      program,
		format:       format,
		vertexLayout: layout,
		inputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		rasterizer: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:               vk.FrontFaceCounterClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1,
		},
		multisampling: vk.PipelineMultisampleStateCreateInfo{
			SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples:  vk.SampleCount1Bit,
			SampleShadingEnable:   vk.False,
			MinSampleShading:      1,
			AlphaToCoverageEnable: vk.False,
			AlphaToOneEnable:      vk.False,
		},
		blendAttach: vk.PipelineColorBlendAttachmentState{
			BlendEnable: vk.False,
			ColorWriteMask: vk.ColorComponentFlags(
				vk.ColorComponentRBit |
					vk.ColorComponentGBit |
					vk.ColorComponentBBit |
					vk.ColorComponentABit,
			),
			SrcColorBlendFactor: vk.BlendFactorOne,
			DstColorBlendFactor: vk.BlendFactorZero,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorOne,
			DstAlphaBlendFactor: vk.BlendFactorZero,
			AlphaBlendOp:        vk.BlendOpAdd,
		},
		dynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}
}

// WithBindingLayout adds the texture binding set layout at set 0.
func (b *PipelineBuilder) WithBindingLayout(layout vk.DescriptorSetLayout) *PipelineBuilder {
	b.bindingLayout = layout
	b.hasBindings = true
	return b
}

func (b *PipelineBuilder) layoutInfo() vk.PipelineLayoutCreateInfo {
	info := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	if b.hasBindings {
		info.SetLayoutCount = 1
		info.PSetLayouts = []vk.DescriptorSetLayout{b.bindingLayout}
	}
	return info
}

// Build creates the pipeline for render pass. The pass must target the builder's format.
func (b *PipelineBuilder) Build(device vk.Device, pass *CoreRenderPass) (*Pipeline, error) {
	if err := b.vertexLayout.Validate(); err != nil {
		return nil, err
	}
	if pass.Format() != b.format {
		return nil, fmt.Errorf("render pass format %d does not match pipeline format %d", pass.Format(), b.format)
	}

	p := &Pipeline{Name: b.program.Name, device: device, bindings: b.hasBindings}
	layoutInfo := b.layoutInfo()
	if err := NewError(vk.CreatePipelineLayout(device, &layoutInfo, nil, &p.layout)); err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	attributes := b.vertexLayout.AttributeDescriptions()
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{b.vertexLayout.BindingDescription()},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{b.blendAttach},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(b.dynamicStates)),
		PDynamicStates:    b.dynamicStates,
	}
	stages := b.program.stages()

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &b.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &b.rasterizer,
		PMultisampleState:   &b.multisampling,
		PColorBlendState:    &blendState,
		PDynamicState:       &dynamicState,
		Layout:              p.layout,
		RenderPass:          pass.Handle(),
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := NewError(ret); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create pipeline %s: %w", b.program.Name, err)
	}
	p.handle = pipelines[0]
	Logger().Debug("pipeline built", "name", p.Name, "bindings", p.bindings)
	return p, nil
}
