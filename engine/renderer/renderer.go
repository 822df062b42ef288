package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the presentation target the renderer draws into, normally the game window.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameStats counts the work submitted since the last BeginFrame.
type FrameStats struct {
	DrawCalls       int
	Vertices        int
	ShaderBinds     int
	TextureBinds    int
	TransformWrites int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend
	log         *log.Logger

	shaders      Shaders
	activeShader *Program
	textures     [MaxBoundTextures]Sampleable

	transform      Transform
	transformDirty bool

	immediate      [MaxImmediateVertices]ImmediateVertex
	immediateCount int

	backBuffer     *ColorTarget
	backDepth      *DepthTarget
	offscreen      *ColorTarget
	offscreenDepth *DepthTarget
	colorTarget    *ColorTarget
	depthTarget    *DepthTarget

	renderTargetWidth  int
	renderTargetHeight int

	stats FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	renderScale          float32
}

// Renderer is the immediate-mode draw layer. It owns the draw state (active shader, bound textures,
// render targets, transform matrices and the immediate vertex batch) and forwards resolved commands
// to its backend. A Renderer is used from a single goroutine.
type Renderer interface {
	// CompileShader loads and compiles one of the embedded shaders.
	//
	// Parameters:
	//   - name: the shader asset name, e.g. "basic_3d"
	//
	// Returns:
	//   - *Program: the compiled program
	//   - error: an error if the asset is missing or fails to compile
	CompileShader(name string) (*Program, error)

	// CompileShaderSource parses and compiles WGSL source that carries its own annotations.
	//
	// Parameters:
	//   - name: the program name
	//   - source: the WGSL source
	//
	// Returns:
	//   - *Program: the compiled program
	//   - error: an error if the source fails to parse or compile
	CompileShaderSource(name, source string) (*Program, error)

	// Shaders returns the built-in programs.
	Shaders() Shaders

	// SetShader makes p the active program, flushing the batch first. Setting the active program
	// again does nothing.
	SetShader(p *Program)

	// ActiveShader returns the active program, nil before the first SetShader.
	ActiveShader() *Program

	// CreateTexture uploads a bitmap as a sampled texture. RGB bitmaps are promoted to RGBA.
	//
	// Parameters:
	//   - bmp: the decoded bitmap
	//   - label: the texture name
	//
	// Returns:
	//   - *SampledTexture: the texture
	//   - error: an error if the bitmap is empty or the backend fails
	CreateTexture(bmp *common.Bitmap, label string) (*SampledTexture, error)

	// UpdateTexture replaces a rectangle of t with RGBA8 pixels.
	//
	// Parameters:
	//   - t: the texture to update
	//   - x, y: the rectangle's top-left corner
	//   - width, height: the rectangle size
	//   - pixels: width*height*4 bytes
	//
	// Returns:
	//   - error: an error if the rectangle or data do not fit the texture
	UpdateTexture(t *SampledTexture, x, y, width, height int, pixels []byte) error

	// SetDiffuseTexture binds t to the first texture slot, flushing the batch first. Binding the
	// texture already in the slot does nothing.
	SetDiffuseTexture(t Sampleable)

	// SetTexturePack binds the terrain textures and blend map to the five texture slots.
	SetTexturePack(background, red, green, blue, blendMap Sampleable)

	// MakeMesh uploads a static indexed mesh.
	//
	// Parameters:
	//   - name: the mesh name
	//   - vertices: the mesh vertices
	//   - indices: triangle list indices into vertices
	//
	// Returns:
	//   - *Mesh: the uploaded mesh
	//   - error: an error if the geometry is empty, an index is out of range or the backend fails
	MakeMesh(name string, vertices []MeshVertex, indices []uint32) (*Mesh, error)

	// DrawMesh places m with TranslationScale(position, scale) * Rx * Ry * Rz (degrees), refreshes the
	// transform and draws it with the active program.
	DrawMesh(m *Mesh, position, rotation common.Vector3, scale float32)

	// DrawText draws text with the text program and the font's atlas.
	DrawText(font TextFont, text string, x, y float32, color common.Vector4)

	// ImmediateBegin starts a batch, drawing whatever is pending.
	ImmediateBegin()
	// ImmediateVertex appends one vertex, flushing first when the batch is full.
	ImmediateVertex(position common.Vector3, color uint32, uv common.Vector2)
	// ImmediateQuadUV appends the two triangles p0,p1,p2 and p0,p2,p3.
	ImmediateQuadUV(p0, p1, p2, p3 common.Vector3, uv0, uv1, uv2, uv3 common.Vector2, color common.Vector4)
	// ImmediateQuad appends a quad with UVs (0,0), (1,0), (1,1), (0,1).
	ImmediateQuad(p0, p1, p2, p3 common.Vector3, color common.Vector4)
	// ImmediateQuad2DUV appends a quad on the z = 0 plane.
	ImmediateQuad2DUV(p0, p1, p2, p3 common.Vector2, uv0, uv1, uv2, uv3 common.Vector2, color common.Vector4)
	// ImmediateQuad2D appends a quad on the z = 0 plane with the default UVs.
	ImmediateQuad2D(p0, p1, p2, p3 common.Vector2, color common.Vector4)
	// ImmediateFlush draws the pending vertices with one draw call and empties the batch.
	ImmediateFlush()
	// ImmediateCount returns the number of pending vertices.
	ImmediateCount() int

	// Transform returns the current matrix state.
	Transform() Transform
	// SetViewToProj sets the projection matrix. It takes effect on RefreshTransform.
	SetViewToProj(m common.Matrix4)
	// SetWorldToView sets the camera matrix. It takes effect on RefreshTransform.
	SetWorldToView(m common.Matrix4)
	// SetObjectToWorld sets the model matrix. It takes effect on RefreshTransform.
	SetObjectToWorld(m common.Matrix4)
	// RefreshTransform derives ObjectToProj and uploads the transform block.
	RefreshTransform()
	// Rendering2DRightHanded switches to a pixel projection of the current render target with
	// (0, 0) at the bottom-left corner.
	Rendering2DRightHanded()

	// SetRenderTarget makes t the colour destination with no depth target.
	SetRenderTarget(t *ColorTarget)
	// SetDepthTarget adds d as the depth destination of the current colour target.
	SetDepthTarget(d *DepthTarget)
	// ClearRenderTarget clears the colour target, and the depth target to 1.0 when one is bound.
	ClearRenderTarget(r, g, b, a float32)
	// RenderTargetWidth returns the width of the current colour target.
	RenderTargetWidth() int
	// RenderTargetHeight returns the height of the current colour target.
	RenderTargetHeight() int

	// ResizeRenderTargets reconfigures the surface and recreates the back depth, offscreen colour
	// and offscreen depth targets. The offscreen targets are scaled by the render scale.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//
	// Returns:
	//   - error: an error if a target could not be created
	ResizeRenderTargets(width, height int) error

	// SetRenderScale changes the offscreen scale (clamped to [0.25, 2]) and recreates the targets.
	SetRenderScale(scale float32) error

	// BackBuffer returns the surface colour target.
	BackBuffer() *ColorTarget
	// BackDepth returns the depth target matching the surface.
	BackDepth() *DepthTarget
	// Offscreen returns the (possibly multisampled) colour target the scene is drawn into.
	Offscreen() *ColorTarget
	// OffscreenDepth returns the depth target matching Offscreen.
	OffscreenDepth() *DepthTarget
	// SampleCount returns the offscreen sample count.
	SampleCount() int

	// SetPresentMode changes vsync behaviour. It takes effect on the next resize.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface texture and resets the frame statistics.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// EndFrame flushes the batch and submits the frame.
	EndFrame()

	// Present shows the submitted frame.
	Present()

	// Stats returns the work counted since the last BeginFrame.
	Stats() FrameStats

	// Release frees the render targets and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the draw layer for the given surface, compiles the built-in shaders and
// creates the render targets.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the presentation surface, typically the game window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if a shader or render target could not be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		transform:   identityTransform(),
		presentMode: PresentModeVSync,
		sampleCount: MSAA4x,
		renderScale: 1,
		backBuffer: &ColorTarget{
			textureBase: textureBase{label: "Back Buffer", samples: 1},
			surface:     true,
		},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if !r.sampleCount.Valid() {
		r.log.Warn("unsupported sample count, multisampling disabled", "samples", r.sampleCount)
		r.sampleCount = MSAAOff
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.log)
		}
	}
	r.backend.SetPresentMode(r.presentMode)

	if err := r.loadShaders(); err != nil {
		r.backend.Release()
		return nil, err
	}
	if err := r.ResizeRenderTargets(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to create render targets: %w", err)
	}
	return r, nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	r.stats = FrameStats{}
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.ImmediateFlush()
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Stats() FrameStats {
	return r.stats
}

func (r *renderer) Release() {
	r.immediateCount = 0
	r.textures = [MaxBoundTextures]Sampleable{}
	r.colorTarget = nil
	r.depthTarget = nil
	r.releaseTargets()
	r.backend.Release()
}
