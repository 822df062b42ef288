package pipeline

import (
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthState is one of the four precomputed depth configurations, the cross product of
// depth test on/off and depth write on/off.
type DepthState int

const (
	// DepthStateTestWrite tests against the depth buffer with LESS and writes passing fragments.
	DepthStateTestWrite DepthState = iota

	// DepthStateTestOnly tests with LESS but leaves the depth buffer untouched.
	DepthStateTestOnly

	// DepthStateWriteOnly always passes and writes every fragment's depth.
	DepthStateWriteOnly

	// DepthStateDisabled always passes and never writes.
	DepthStateDisabled
)

// TestEnabled reports whether fragments are compared against the depth buffer.
func (d DepthState) TestEnabled() bool {
	return d == DepthStateTestWrite || d == DepthStateTestOnly
}

// WriteEnabled reports whether passing fragments write their depth.
func (d DepthState) WriteEnabled() bool {
	return d == DepthStateTestWrite || d == DepthStateWriteOnly
}

func (d DepthState) String() string {
	switch d {
	case DepthStateTestWrite:
		return "test+write"
	case DepthStateTestOnly:
		return "test"
	case DepthStateWriteOnly:
		return "write"
	default:
		return "off"
	}
}

// Descriptor returns the depth/stencil state for this configuration targeting a depth attachment
// of the given format. The stencil faces always pass.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - *wgpu.DepthStencilState: the depth/stencil state for pipeline creation
func (d DepthState) Descriptor(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionAlways
	if d.TestEnabled() {
		compare = wgpu.CompareFunctionLess
	}
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: d.WriteEnabled(),
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

// SelectDepthState picks the depth configuration for a shader's flags.
func SelectDepthState(f shader.Flags) DepthState {
	switch {
	case f.DepthTest && f.DepthWrite:
		return DepthStateTestWrite
	case f.DepthTest:
		return DepthStateTestOnly
	case f.DepthWrite:
		return DepthStateWriteOnly
	default:
		return DepthStateDisabled
	}
}

// SamplerState is one of the four precomputed samplers, the cross product of
// clamp/wrap addressing and point/linear filtering.
type SamplerState int

const (
	SamplerStateWrapLinear SamplerState = iota
	SamplerStateWrapPoint
	SamplerStateClampLinear
	SamplerStateClampPoint
)

// SamplerStateCount is the number of distinct sampler states.
const SamplerStateCount = 4

// Clamped reports whether texture coordinates are clamped to the edge.
func (s SamplerState) Clamped() bool {
	return s == SamplerStateClampLinear || s == SamplerStateClampPoint
}

// PointSampled reports whether the sampler uses nearest filtering.
func (s SamplerState) PointSampled() bool {
	return s == SamplerStateWrapPoint || s == SamplerStateClampPoint
}

// Descriptor returns the sampler descriptor for this state. Level of detail is clamped to the
// largest representable range.
//
// Returns:
//   - *wgpu.SamplerDescriptor: the descriptor passed to Device.CreateSampler
func (s SamplerState) Descriptor() *wgpu.SamplerDescriptor {
	address := wgpu.AddressModeRepeat
	if s.Clamped() {
		address = wgpu.AddressModeClampToEdge
	}
	filter := wgpu.FilterModeLinear
	mipFilter := wgpu.MipmapFilterModeLinear
	if s.PointSampled() {
		filter = wgpu.FilterModeNearest
		mipFilter = wgpu.MipmapFilterModeNearest
	}
	return &wgpu.SamplerDescriptor{
		Label:         "Sampler " + s.String(),
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (s SamplerState) String() string {
	switch s {
	case SamplerStateWrapLinear:
		return "wrap/linear"
	case SamplerStateWrapPoint:
		return "wrap/point"
	case SamplerStateClampLinear:
		return "clamp/linear"
	default:
		return "clamp/point"
	}
}

// SelectSamplerState picks the sampler for a shader's flags.
func SelectSamplerState(f shader.Flags) SamplerState {
	switch {
	case f.DiffuseClamped && f.PointSample:
		return SamplerStateClampPoint
	case f.DiffuseClamped:
		return SamplerStateClampLinear
	case f.PointSample:
		return SamplerStateWrapPoint
	default:
		return SamplerStateWrapLinear
	}
}

// BlendState toggles alpha blending of the color attachment.
type BlendState int

const (
	// BlendStateOpaque writes the fragment color as is.
	BlendStateOpaque BlendState = iota

	// BlendStateAlpha blends color with src-alpha / one-minus-src-alpha and keeps the
	// destination alpha.
	BlendStateAlpha
)

func (b BlendState) String() string {
	if b == BlendStateAlpha {
		return "alpha"
	}
	return "opaque"
}

// Descriptor returns the blend state for the color target, or nil when blending is off.
func (b BlendState) Descriptor() *wgpu.BlendState {
	if b != BlendStateAlpha {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorZero,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// SelectBlendState picks the blend state for a shader's flags.
func SelectBlendState(f shader.Flags) BlendState {
	if f.AlphaBlend {
		return BlendStateAlpha
	}
	return BlendStateOpaque
}

// ImmediateVertexStride is the byte size of one batched immediate vertex:
// position (3 x f32), packed ABGR color (u32) and uv (2 x f32).
const ImmediateVertexStride = 24

// MeshVertexStride is the byte size of one static mesh vertex:
// position (3 x f32), uv (2 x f32) and normal (3 x f32).
const MeshVertexStride = 32

// VertexBufferLayout returns the vertex buffer layout matching a shader's vertex layout.
//
// Parameters:
//   - layout: the vertex layout declared by the shader
//
// Returns:
//   - wgpu.VertexBufferLayout: the buffer layout bound at slot 0
func VertexBufferLayout(layout shader.VertexLayout) wgpu.VertexBufferLayout {
	if layout == shader.VertexLayoutMesh {
		return wgpu.VertexBufferLayout{
			ArrayStride: MeshVertexStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
				{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
			},
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: ImmediateVertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatUnorm8x4, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2},
		},
	}
}
