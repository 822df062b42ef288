package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepthState overrides the depth configuration selected from the shader's flags.
//
// Parameters:
//   - d: the depth state to bake into the pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state for this pipeline
func WithDepthState(d DepthState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key.Depth = d
	}
}

// WithBlendState overrides the blend state selected from the shader's flags.
//
// Parameters:
//   - b: the blend state to bake into the pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state for this pipeline
func WithBlendState(b BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key.Blend = b
	}
}

// WithColorFormat sets the format of the colour attachment the pipeline renders into.
//
// Parameters:
//   - format: the colour attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the colour format for this pipeline
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key.ColorFormat = format
	}
}

// WithDepthFormat declares a depth attachment of the given format. Pipelines built without it
// have no depth/stencil state and can only be used in passes without a depth attachment.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - PipelineBuilderOption: a function that enables the depth attachment for this pipeline
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key.DepthFormat = format
		p.key.HasDepth = true
	}
}

// WithSampleCount sets the multisample count of the attachments. Values below 1 are treated as 1.
//
// Parameters:
//   - count: the attachment sample count
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count for this pipeline
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.key.SampleCount = max(count, 1)
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}
