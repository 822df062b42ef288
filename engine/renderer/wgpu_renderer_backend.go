package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// transformRingSlots is the number of TransformSize slots in the uniform ring.
	transformRingSlots = 1024

	// vertexRingBatches is the number of full immediate batches the vertex ring holds.
	vertexRingBatches = 64

	offscreenFormat = wgpu.TextureFormatRGBA8UnormSrgb
	sampledFormat   = wgpu.TextureFormatRGBA8UnormSrgb
	depthFormat     = wgpu.TextureFormatDepth24Plus
)

// errInvalidHandle is returned when a handle does not belong to this backend.
var errInvalidHandle = errors.New("invalid backend handle")

// wgpuTexture is the handle of every texture created by the WGPU backend.
type wgpuTexture struct {
	label   string
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   int
	height  int
	samples uint32
	format  wgpu.TextureFormat
	usage   TextureUsage
}

// wgpuProgram is a compiled shader module and the pipeline layout of its bind groups.
type wgpuProgram struct {
	shader shader.Shader
	module *wgpu.ShaderModule
	layout *wgpu.PipelineLayout
}

// wgpuMesh holds the static buffers of an uploaded mesh.
type wgpuMesh struct {
	label  string
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
}

// bindGroupKey identifies a texture bind group: its layout, its sampler and the views in its slots.
type bindGroupKey struct {
	bindings shader.Bindings
	sampler  pipeline.SamplerState
	views    [MaxBoundTextures]*wgpu.TextureView
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	log    *log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	transformLayout *wgpu.BindGroupLayout
	textureLayouts  map[shader.Bindings]*wgpu.BindGroupLayout
	samplers        [pipeline.SamplerStateCount]*wgpu.Sampler
	white           *wgpuTexture
	pipelines       map[pipeline.Key]pipeline.Pipeline
	bindGroups      map[bindGroupKey]*wgpu.BindGroup

	// Uniform ring: each WriteTransform takes the next slot and draws bind it by dynamic offset.
	transformBuffer    *wgpu.Buffer
	transformBindGroup *wgpu.BindGroup
	transformOffset    uint64
	transformNext      uint64

	// Vertex ring for immediate batches.
	vertexBuffer *wgpu.Buffer
	vertexSize   uint64
	vertexNext   uint64

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Destination and draw state set by the renderer.
	color        *ColorTarget
	depth        *DepthTarget
	program      *wgpuProgram
	depthState   pipeline.DepthState
	samplerState pipeline.SamplerState
	blendState   pipeline.BlendState
	textures     [MaxBoundTextures]Sampleable

	clearColor *wgpu.Color
	clearDepth bool

	// State already recorded into the open pass.
	passPipeline  *wgpu.RenderPipeline
	passTransform int64
	passTextures  *wgpu.BindGroup

	warned map[string]bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter and device, then the objects every
// frame shares: bind group layouts, samplers, the fallback texture and the upload rings. Failing to
// obtain a GPU is fatal.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, logger *log.Logger) RendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		log:            logger,
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeFifo,
		surfaceFormat:  wgpu.TextureFormatBGRA8UnormSrgb,
		textureLayouts: make(map[shader.Bindings]*wgpu.BindGroupLayout),
		pipelines:      make(map[pipeline.Key]pipeline.Pipeline),
		bindGroups:     make(map[bindGroupKey]*wgpu.BindGroup),
		passTransform:  -1,
		warned:         make(map[string]bool),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	if err := w.createSharedObjects(); err != nil {
		panic(err)
	}
	logger.Info("created wgpu device", "fallback", forceFallbackAdapter)
	return w
}

// createSharedObjects creates the layouts, samplers, fallback texture and rings.
func (b *wgpuRendererBackendImpl) createSharedObjects() error {
	var err error
	b.transformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Transform Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   TransformSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transform layout: %w", err)
	}

	for _, bindings := range []shader.Bindings{shader.BindingsDiffuse, shader.BindingsResolve, shader.BindingsTerrain} {
		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("Texture Layout %d", bindings),
			Entries: textureLayoutEntries(bindings),
		})
		if err != nil {
			return fmt.Errorf("failed to create texture layout %d: %w", bindings, err)
		}
		b.textureLayouts[bindings] = layout
	}

	for i := range b.samplers {
		b.samplers[i], err = b.device.CreateSampler(pipeline.SamplerState(i).Descriptor())
		if err != nil {
			return fmt.Errorf("failed to create sampler %s: %w", pipeline.SamplerState(i), err)
		}
	}

	b.transformBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Transform Ring",
		Size:  transformRingSlots * TransformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create transform ring: %w", err)
	}
	b.transformBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Transform Bind Group",
		Layout: b.transformLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  b.transformBuffer,
			Offset:  0,
			Size:    TransformSize,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transform bind group: %w", err)
	}
	identity := identityTransform()
	b.queue.WriteBuffer(b.transformBuffer, 0, identity.Bytes())
	b.transformNext = TransformSize

	b.vertexSize = vertexRingBatches * MaxImmediateVertices * pipeline.ImmediateVertexStride
	b.vertexBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Immediate Vertex Ring",
		Size:  b.vertexSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create vertex ring: %w", err)
	}

	handle, err := b.createTexture(TextureDescriptor{
		Label:  "White",
		Width:  1,
		Height: 1,
		Usage:  TextureUsageSampled,
		Pixels: []byte{0xff, 0xff, 0xff, 0xff},
	})
	if err != nil {
		return err
	}
	b.white = handle
	return nil
}

// textureLayoutEntries returns the group 1 layout of a bindings shape.
func textureLayoutEntries(bindings shader.Bindings) []wgpu.BindGroupLayoutEntry {
	filtered := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}
	sampler := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		}
	}

	switch bindings {
	case shader.BindingsResolve:
		return []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  true,
			},
		}}
	case shader.BindingsTerrain:
		entries := make([]wgpu.BindGroupLayoutEntry, 0, MaxBoundTextures+1)
		for i := range MaxBoundTextures {
			entries = append(entries, filtered(uint32(i)))
		}
		return append(entries, sampler(MaxBoundTextures))
	default:
		return []wgpu.BindGroupLayoutEntry{filtered(0), sampler(1)}
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			b.surfaceFormat = f
			break
		}
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc TextureDescriptor) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createTexture(desc)
}

func (b *wgpuRendererBackendImpl) createTexture(desc TextureDescriptor) (*wgpuTexture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	t := &wgpuTexture{
		label:   desc.Label,
		width:   desc.Width,
		height:  desc.Height,
		samples: uint32(max(desc.SampleCount, 1)),
		usage:   desc.Usage,
	}

	var usage wgpu.TextureUsage
	switch desc.Usage {
	case TextureUsageColorTarget:
		t.format = offscreenFormat
		usage = wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	case TextureUsageDepthTarget:
		t.format = depthFormat
		usage = wgpu.TextureUsageRenderAttachment
	default:
		t.format = sampledFormat
		t.samples = 1
		usage = wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	}

	var err error
	t.texture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   t.samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        t.format,
		Usage:         usage,
	})
	if err != nil {
		return nil, err
	}
	t.view, err = t.texture.CreateView(nil)
	if err != nil {
		t.texture.Release()
		return nil, err
	}

	if len(desc.Pixels) > 0 && desc.Usage == TextureUsageSampled {
		if err := b.writeTexture(t, 0, 0, desc.Width, desc.Height, desc.Pixels); err != nil {
			b.releaseTexture(t)
			return nil, err
		}
	}
	return t, nil
}

func (b *wgpuRendererBackendImpl) WriteTexture(handle any, x, y, width, height int, pixels []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := handle.(*wgpuTexture)
	if !ok || t == nil || t.texture == nil {
		return errInvalidHandle
	}
	return b.writeTexture(t, x, y, width, height, pixels)
}

func (b *wgpuRendererBackendImpl) writeTexture(t *wgpuTexture, x, y, width, height int, pixels []byte) error {
	if t.usage != TextureUsageSampled {
		return fmt.Errorf("texture %s is a render target", t.label)
	}
	if x < 0 || y < 0 || x+width > t.width || y+height > t.height {
		return fmt.Errorf("texture %s: write %d,%d %dx%d out of bounds", t.label, x, y, width, height)
	}
	size := width * height * 4
	if len(pixels) < size {
		return fmt.Errorf("texture %s: %d bytes for a %dx%d write", t.label, len(pixels), width, height)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(x), Y: uint32(y), Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels[:size],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * 4),
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(handle any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := handle.(*wgpuTexture)
	if !ok || t == nil {
		return
	}
	if b.color != nil && b.color.Handle() == handle {
		b.endPass()
		b.color = nil
	}
	if b.depth != nil && b.depth.Handle() == handle {
		b.endPass()
		b.depth = nil
	}
	for i, s := range b.textures {
		if s != nil && s.Handle() == handle {
			b.textures[i] = nil
		}
	}
	b.releaseTexture(t)
}

// releaseTexture frees t and every cached bind group that references its view.
func (b *wgpuRendererBackendImpl) releaseTexture(t *wgpuTexture) {
	for key, bg := range b.bindGroups {
		for _, v := range key.views {
			if v == t.view {
				if b.passTextures == bg {
					b.passTextures = nil
				}
				bg.Release()
				delete(b.bindGroups, key)
				break
			}
		}
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

func (b *wgpuRendererBackendImpl) CreateShader(s shader.Shader) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Name(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return nil, err
	}

	textureLayout, ok := b.textureLayouts[s.Bindings()]
	if !ok {
		module.Release()
		return nil, fmt.Errorf("shader %s: unknown bindings %d", s.Name(), s.Bindings())
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Name() + " Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.transformLayout, textureLayout},
	})
	if err != nil {
		module.Release()
		return nil, err
	}
	return &wgpuProgram{shader: s, module: module, layout: layout}, nil
}

func (b *wgpuRendererBackendImpl) CreateMesh(label string, vertexData, indexData []byte) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertices",
		Size:  alignedSize(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Indices",
		Size:  alignedSize(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)
	b.queue.WriteBuffer(ib, 0, indexData)
	return &wgpuMesh{label: label, vertex: vb, index: ib}, nil
}

// alignedSize rounds a buffer size up to the 4-byte copy alignment.
func alignedSize(n int) uint64 {
	return uint64((n + 3) &^ 3)
}

func (b *wgpuRendererBackendImpl) ReleaseMesh(handle any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := handle.(*wgpuMesh)
	if !ok || m == nil {
		return
	}
	if m.vertex != nil {
		m.vertex.Release()
		m.vertex = nil
	}
	if m.index != nil {
		m.index.Release()
		m.index = nil
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A held surface texture means the previous frame was never presented.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) BindTargets(color *ColorTarget, depth *DepthTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if color == b.color && depth == b.depth {
		return
	}
	b.endPass()
	b.color = color
	b.depth = depth
}

func (b *wgpuRendererBackendImpl) ClearTargets(color common.Vector4, clearDepth bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A pass that already recorded draws cannot change its load op, so the clear starts a new one.
	b.endPass()
	b.clearColor = &wgpu.Color{R: float64(color.X), G: float64(color.Y), B: float64(color.Z), A: float64(color.W)}
	b.clearDepth = clearDepth && b.depth != nil
}

func (b *wgpuRendererBackendImpl) BindShader(handle any, s shader.Shader, depth pipeline.DepthState, sampler pipeline.SamplerState, blend pipeline.BlendState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := handle.(*wgpuProgram)
	if !ok {
		b.warnOnce("shader:"+s.Name(), "binding a shader that was not compiled by this backend", "shader", s.Name())
		p = nil
	}
	b.program = p
	b.depthState = depth
	b.samplerState = sampler
	b.blendState = blend
}

func (b *wgpuRendererBackendImpl) BindTextures(textures []Sampleable) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.textures = [MaxBoundTextures]Sampleable{}
	copy(b.textures[:], textures)
}

func (b *wgpuRendererBackendImpl) WriteTransform(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transformNext+TransformSize > transformRingSlots*TransformSize {
		b.submitPending()
		b.transformNext = 0
	}
	b.queue.WriteBuffer(b.transformBuffer, b.transformNext, data)
	b.transformOffset = b.transformNext
	b.transformNext += TransformSize
}

func (b *wgpuRendererBackendImpl) DrawImmediate(data []byte, vertexCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := alignedSize(len(data))
	if size == 0 || size > b.vertexSize {
		return
	}
	if b.vertexNext+size > b.vertexSize {
		b.submitPending()
		b.vertexNext = 0
	}
	if !b.prepareDraw(shader.VertexLayoutImmediate) {
		return
	}

	offset := b.vertexNext
	b.queue.WriteBuffer(b.vertexBuffer, offset, data)
	b.vertexNext += size

	b.framePass.SetVertexBuffer(0, b.vertexBuffer, offset, size)
	b.framePass.Draw(uint32(vertexCount), 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawIndexed(mesh any, indexCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := mesh.(*wgpuMesh)
	if !ok || m == nil || m.vertex == nil {
		b.warnOnce("mesh", "skipping draw of a released or foreign mesh")
		return
	}
	if !b.prepareDraw(shader.VertexLayoutMesh) {
		return
	}

	b.framePass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(indexCount), 1, 0, 0, 0)
}

// prepareDraw opens the pass if needed and records the pipeline and bind groups the draw needs.
// It reports false when the draw must be skipped.
func (b *wgpuRendererBackendImpl) prepareDraw(layout shader.VertexLayout) bool {
	if b.program == nil {
		b.warnOnce("no-program", "skipping draw with no shader bound")
		return false
	}
	s := b.program.shader
	if s.Layout() != layout {
		b.warnOnce("layout:"+s.Name(), "skipping draw whose vertices do not match the shader layout", "shader", s.Name())
		return false
	}
	if !b.ensurePass() {
		return false
	}

	rp, err := b.renderPipeline()
	if err != nil {
		b.warnOnce("pipeline:"+s.Name(), "failed to create render pipeline", "shader", s.Name(), "error", err)
		return false
	}
	if rp != b.passPipeline {
		b.framePass.SetPipeline(rp)
		b.passPipeline = rp
	}

	if int64(b.transformOffset) != b.passTransform {
		b.framePass.SetBindGroup(0, b.transformBindGroup, []uint32{uint32(b.transformOffset)})
		b.passTransform = int64(b.transformOffset)
	}

	bg, err := b.textureBindGroup()
	if err != nil {
		b.warnOnce("textures:"+s.Name(), "skipping draw with unusable textures", "shader", s.Name(), "error", err)
		return false
	}
	if bg != b.passTextures {
		b.framePass.SetBindGroup(1, bg, nil)
		b.passTextures = bg
	}
	return true
}

// renderPipeline returns the cached pipeline variant for the bound program, state and targets.
func (b *wgpuRendererBackendImpl) renderPipeline() (*wgpu.RenderPipeline, error) {
	colorFormat := offscreenFormat
	if b.color.IsSurface() {
		colorFormat = b.surfaceFormat
	}
	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithDepthState(b.depthState),
		pipeline.WithBlendState(b.blendState),
		pipeline.WithColorFormat(colorFormat),
		pipeline.WithSampleCount(uint32(b.color.SampleCount())),
	}
	if b.depth != nil {
		opts = append(opts, pipeline.WithDepthFormat(depthFormat))
	}
	p := pipeline.NewPipeline(b.program.shader, opts...)

	if cached, ok := b.pipelines[p.Key()]; ok {
		return cached.RenderPipeline(), nil
	}
	rp, err := b.device.CreateRenderPipeline(p.Descriptor(b.program.module, b.program.layout))
	if err != nil {
		return nil, err
	}
	p.SetRenderPipeline(rp)
	b.pipelines[p.Key()] = p
	b.log.Debug("created render pipeline", "key", p.Key().String())
	return rp, nil
}

// textureBindGroup returns the cached group 1 bind group for the bound textures.
func (b *wgpuRendererBackendImpl) textureBindGroup() (*wgpu.BindGroup, error) {
	bindings := b.program.shader.Bindings()
	key := bindGroupKey{bindings: bindings, sampler: b.samplerState}

	for i := range bindings.TextureCount() {
		t := b.white
		if b.textures[i] != nil {
			if h, ok := b.textures[i].Handle().(*wgpuTexture); ok && h.view != nil {
				t = h
			}
		}
		multisampled := t.samples > 1
		switch {
		case bindings == shader.BindingsResolve && !multisampled:
			return nil, fmt.Errorf("texture %s is not multisampled", t.label)
		case bindings != shader.BindingsResolve && multisampled:
			b.warnOnce("multisampled:"+t.label, "multisampled texture bound to a filtered slot, using white", "texture", t.label)
			t = b.white
		}
		key.views[i] = t.view
	}

	if bg, ok := b.bindGroups[key]; ok {
		return bg, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, MaxBoundTextures+1)
	for i := range bindings.TextureCount() {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i), TextureView: key.views[i]})
	}
	if bindings != shader.BindingsResolve {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(bindings.TextureCount()),
			Sampler: b.samplers[b.samplerState],
		})
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Texture Bind Group",
		Layout:  b.textureLayouts[bindings],
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	b.bindGroups[key] = bg
	return bg, nil
}

// ensurePass begins a render pass on the bound targets if none is open, applying a pending clear
// through its load ops. It reports false when there is nowhere to draw.
func (b *wgpuRendererBackendImpl) ensurePass() bool {
	if b.framePass != nil {
		return true
	}
	if b.frameEncoder == nil || b.color == nil {
		return false
	}

	var view *wgpu.TextureView
	if b.color.IsSurface() {
		view = b.frameView
	} else if t, ok := b.color.Handle().(*wgpuTexture); ok {
		view = t.view
	}
	if view == nil {
		return false
	}

	colorAttachment := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if b.clearColor != nil {
		colorAttachment.LoadOp = wgpu.LoadOpClear
		colorAttachment.ClearValue = *b.clearColor
	}
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
	}
	if b.depth != nil {
		if t, ok := b.depth.Handle().(*wgpuTexture); ok && t.view != nil {
			depthAttachment := &wgpu.RenderPassDepthStencilAttachment{
				View:            t.view,
				DepthLoadOp:     wgpu.LoadOpLoad,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
			if b.clearDepth {
				depthAttachment.DepthLoadOp = wgpu.LoadOpClear
			}
			desc.DepthStencilAttachment = depthAttachment
		}
	}

	b.framePass = b.frameEncoder.BeginRenderPass(desc)
	b.framePass.SetViewport(0, 0, float32(b.color.Width()), float32(b.color.Height()), 0, 1)
	b.clearColor = nil
	b.clearDepth = false
	b.passPipeline = nil
	b.passTransform = -1
	b.passTextures = nil
	return true
}

// endPass closes the open pass. A clear requested with no draws after it still runs as an empty pass.
func (b *wgpuRendererBackendImpl) endPass() {
	if b.framePass == nil && b.clearColor != nil {
		b.ensurePass()
	}
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

// submitPending submits the commands recorded so far and starts a new encoder, so ring slots can be
// rewritten without affecting draws that already read them.
func (b *wgpuRendererBackendImpl) submitPending() {
	if b.frameEncoder == nil {
		return
	}
	b.endPass()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.log.Error("failed to finish command encoder", "error", err)
	} else {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}

	b.frameEncoder, err = b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.log.Error("failed to create command encoder", "error", err)
		b.frameEncoder = nil
	}
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	b.endPass()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.log.Error("failed to finish frame", "error", err)
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}

	for key, bg := range b.bindGroups {
		bg.Release()
		delete(b.bindGroups, key)
	}
	for key, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, key)
	}
	if b.white != nil {
		b.releaseTexture(b.white)
		b.white = nil
	}
	for i, s := range b.samplers {
		if s != nil {
			s.Release()
			b.samplers[i] = nil
		}
	}
	if b.transformBindGroup != nil {
		b.transformBindGroup.Release()
	}
	if b.transformBuffer != nil {
		b.transformBuffer.Release()
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
	}
	for _, l := range b.textureLayouts {
		l.Release()
	}
	if b.transformLayout != nil {
		b.transformLayout.Release()
	}

	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// warnOnce logs a warning the first time key is seen so per-draw problems do not flood the log.
func (b *wgpuRendererBackendImpl) warnOnce(key, msg string, args ...any) {
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	b.log.Warn(msg, args...)
}
