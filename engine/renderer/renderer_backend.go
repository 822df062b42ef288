package renderer

import (
	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples of the offscreen colour and depth targets. Only the
// counts that have a matching resolve shader are valid.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisampling; the offscreen target is composited with the texture shader.
	MSAAOff MSAASampleCount = 1

	// MSAA2x renders the offscreen target with 2 samples.
	MSAA2x MSAASampleCount = 2

	// MSAA4x renders the offscreen target with 4 samples. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x renders the offscreen target with 8 samples. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8
)

// Valid reports whether the count has a resolve path.
func (c MSAASampleCount) Valid() bool {
	switch c {
	case MSAAOff, MSAA2x, MSAA4x, MSAA8x:
		return true
	default:
		return false
	}
}

// RendererBackend is the GPU API underneath the draw layer. The renderer owns all draw state and
// issues already-resolved commands; the backend turns them into API objects, passes and submissions.
// Handles returned by the Create methods are opaque to the renderer.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentable surface for a new size. The surface itself is
	// kept; only its configuration changes.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. A ConfigureSurface call applies it.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// CreateTexture creates a texture described by desc and uploads its initial pixels if any.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - any: the backend texture handle
	//   - error: an error if the texture could not be created
	CreateTexture(desc TextureDescriptor) (any, error)

	// WriteTexture replaces a rectangle of a sampled texture with tightly packed RGBA8 pixels.
	//
	// Parameters:
	//   - handle: the texture handle returned by CreateTexture
	//   - x, y: the top-left corner of the rectangle
	//   - width, height: the rectangle size
	//   - pixels: width*height*4 bytes
	//
	// Returns:
	//   - error: an error if the write is out of bounds or the handle is invalid
	WriteTexture(handle any, x, y, width, height int, pixels []byte) error

	// ReleaseTexture frees a texture handle.
	ReleaseTexture(handle any)

	// CreateShader compiles the shader program.
	//
	// Parameters:
	//   - s: the parsed shader
	//
	// Returns:
	//   - any: the backend program handle
	//   - error: an error if compilation fails
	CreateShader(s shader.Shader) (any, error)

	// CreateMesh uploads static vertex and 32-bit index data.
	//
	// Parameters:
	//   - label: the mesh name for debugging
	//   - vertexData: the raw mesh vertices
	//   - indexData: the raw uint32 indices
	//
	// Returns:
	//   - any: the backend mesh handle
	//   - error: an error if the buffers could not be created
	CreateMesh(label string, vertexData, indexData []byte) (any, error)

	// ReleaseMesh frees a mesh handle.
	ReleaseMesh(handle any)

	// BeginFrame acquires the next surface texture and starts recording commands.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// BindTargets makes color (and depth, which may be nil) the destination of subsequent draws
	// and sets the viewport to the colour target's size.
	BindTargets(color *ColorTarget, depth *DepthTarget)

	// ClearTargets clears the bound colour target, and the bound depth target to 1.0 when
	// clearDepth is set.
	ClearTargets(color common.Vector4, clearDepth bool)

	// BindShader makes the program active with the given fixed-function state.
	//
	// Parameters:
	//   - handle: the program handle returned by CreateShader
	//   - s: the parsed shader, for its layout and bindings
	//   - depth: the depth configuration
	//   - sampler: the sampler used for the shader's textures
	//   - blend: the blend configuration
	BindShader(handle any, s shader.Shader, depth pipeline.DepthState, sampler pipeline.SamplerState, blend pipeline.BlendState)

	// BindTextures sets the texture slots read by subsequent draws. Nil slots read a white texel.
	BindTextures(textures []Sampleable)

	// WriteTransform uploads the 256-byte transform block used by subsequent draws.
	WriteTransform(data []byte)

	// DrawImmediate uploads a batch of immediate vertices and issues one non-indexed draw.
	//
	// Parameters:
	//   - data: the raw immediate vertices
	//   - vertexCount: the number of vertices in data
	DrawImmediate(data []byte, vertexCount int)

	// DrawIndexed issues one indexed draw of a mesh from index 0.
	//
	// Parameters:
	//   - mesh: the mesh handle returned by CreateMesh
	//   - indexCount: the number of indices to draw
	DrawIndexed(mesh any, indexCount int)

	// EndFrame finishes recording and submits the frame's commands.
	EndFrame()

	// Present presents the surface texture acquired by BeginFrame.
	Present()

	// Release frees every object owned by the backend.
	Release()
}
