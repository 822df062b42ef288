package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key identifies one render pipeline variant. A shader's program is compiled once, but WebGPU bakes
// depth, blend, attachment formats and sample count into the pipeline, so every combination the
// draw layer encounters gets its own cached pipeline.
type Key struct {
	Shader      string
	Depth       DepthState
	Blend       BlendState
	Layout      shader.VertexLayout
	ColorFormat wgpu.TextureFormat
	SampleCount uint32
	DepthFormat wgpu.TextureFormat
	HasDepth    bool
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%d/%dx/%v", k.Shader, k.Depth, k.Blend, k.ColorFormat, k.SampleCount, k.HasDepth)
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key Key

	shader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	cullMode  wgpu.CullMode
	topology  wgpu.PrimitiveTopology
	frontFace wgpu.FrontFace
	writeMask wgpu.ColorWriteMask
}

// Pipeline is one render pipeline variant of a shader: the program plus the fixed-function state
// and attachment configuration it was built for.
type Pipeline interface {
	// Key returns the cache key of this variant.
	//
	// Returns:
	//   - Key: the variant's key
	Key() Key

	// Shader returns the program the pipeline runs.
	//
	// Returns:
	//   - shader.Shader: the shader this pipeline was built from
	Shader() shader.Shader

	// Descriptor builds the render pipeline descriptor for this variant.
	//
	// Parameters:
	//   - module: the compiled shader module
	//   - layout: the pipeline layout (transform group plus the shader's texture group)
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor passed to Device.CreateRenderPipeline
	Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor

	// RenderPipeline returns the created GPU pipeline, or nil before SetRenderPipeline.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created GPU pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release frees the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline variant for the given shader. Depth and blend state default to the
// selection made from the shader's flags; attachment formats default to RGBA8UnormSrgb colour with
// no depth attachment and one sample. Mesh pipelines cull back faces, immediate ones cull nothing.
//
// Parameters:
//   - s: the shader program
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the resolved key
func NewPipeline(s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		shader: s,
		key: Key{
			Shader:      s.Name(),
			Depth:       SelectDepthState(s.Flags()),
			Blend:       SelectBlendState(s.Flags()),
			Layout:      s.Layout(),
			ColorFormat: wgpu.TextureFormatRGBA8UnormSrgb,
			SampleCount: 1,
		},
		cullMode:  wgpu.CullModeNone,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		frontFace: wgpu.FrontFaceCCW,
		writeMask: wgpu.ColorWriteMaskAll,
	}
	if s.Layout() == shader.VertexLayoutMesh {
		p.cullMode = wgpu.CullModeBack
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key.String() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.shader.VertexEntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{VertexBufferLayout(p.key.Layout)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.shader.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.key.ColorFormat,
					Blend:     p.key.Blend.Descriptor(),
					WriteMask: p.writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.key.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if p.key.HasDepth {
		desc.DepthStencil = p.key.Depth.Descriptor(p.key.DepthFormat)
	}
	return desc
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
