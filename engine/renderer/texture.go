package renderer

// TextureUsage describes what a backend texture is created for.
type TextureUsage int

const (
	// TextureUsageSampled is a shader-read texture with CPU uploads.
	TextureUsageSampled TextureUsage = iota

	// TextureUsageColorTarget is a render destination that can also be read by shaders.
	TextureUsageColorTarget

	// TextureUsageDepthTarget is a depth/stencil destination.
	TextureUsageDepthTarget
)

// TextureDescriptor describes a backend texture to create.
type TextureDescriptor struct {
	// Label names the texture for debugging.
	Label string
	// Width and Height are the texture size in pixels.
	Width, Height int
	// Usage selects the capabilities of the texture.
	Usage TextureUsage
	// SampleCount is the multisample count of render targets. Sampled textures always use 1.
	SampleCount int
	// Pixels optionally holds the initial RGBA8 contents, Width*4 bytes per row.
	Pixels []byte
}

// textureBase carries the fields shared by every texture variant.
type textureBase struct {
	label   string
	width   int
	height  int
	samples int
	handle  any
	release func(any)
}

// Label returns the debug name of the texture.
func (t *textureBase) Label() string {
	return t.label
}

// Width returns the texture width in pixels.
func (t *textureBase) Width() int {
	return t.width
}

// Height returns the texture height in pixels.
func (t *textureBase) Height() int {
	return t.height
}

// SampleCount returns the multisample count, 1 for single-sampled textures.
func (t *textureBase) SampleCount() int {
	return max(t.samples, 1)
}

// Handle returns the backend object owned by the texture, nil once released.
func (t *textureBase) Handle() any {
	return t.handle
}

// Release frees the backend object. Releasing twice is a no-op.
func (t *textureBase) Release() {
	if t.handle == nil {
		return
	}
	if t.release != nil {
		t.release(t.handle)
	}
	t.handle = nil
}

// Sampleable is a texture that shaders can read. It is satisfied by *SampledTexture and by
// offscreen *ColorTarget values.
type Sampleable interface {
	Label() string
	Width() int
	Height() int
	SampleCount() int
	Handle() any
	Release()

	sampleable()
}

// SampledTexture is a shader-read texture loaded from a bitmap or filled by UpdateTexture.
type SampledTexture struct {
	textureBase
}

func (t *SampledTexture) sampleable() {}

// ColorTarget is a colour render destination: either an offscreen texture, possibly multisampled,
// or the window surface.
type ColorTarget struct {
	textureBase
	surface bool
}

func (t *ColorTarget) sampleable() {}

// IsSurface reports whether the target is the presentable window surface.
func (t *ColorTarget) IsSurface() bool {
	return t.surface
}

// DepthTarget is a depth/stencil render destination.
type DepthTarget struct {
	textureBase
}

var (
	_ Sampleable = &SampledTexture{}
	_ Sampleable = &ColorTarget{}
)
