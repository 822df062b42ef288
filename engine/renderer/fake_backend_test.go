package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeTexture is the handle the recording backend returns for textures.
type fakeTexture struct {
	desc     TextureDescriptor
	released bool
}

// fakeDraw records one draw with the state it was issued under.
type fakeDraw struct {
	shader    string
	indexed   bool
	vertices  []ImmediateVertex
	count     int
	textures  [MaxBoundTextures]Sampleable
	color     *ColorTarget
	depth     *DepthTarget
	transform []byte
}

// fakeClear records one ClearTargets call.
type fakeClear struct {
	color      common.Vector4
	clearDepth bool
	target     *ColorTarget
}

// recordingBackend implements RendererBackend by recording every call.
type recordingBackend struct {
	surfaceWidth, surfaceHeight int
	presentMode                 PresentMode

	textures    []*fakeTexture
	writes      int
	meshes      int
	shaderBinds []string
	textureSets int
	transforms  [][]byte
	draws       []fakeDraw
	clears      []fakeClear
	frames      int

	shader   string
	bound    [MaxBoundTextures]Sampleable
	color    *ColorTarget
	depth    *DepthTarget
	released bool
}

var _ RendererBackend = &recordingBackend{}

func (b *recordingBackend) ConfigureSurface(width, height int) {
	b.surfaceWidth, b.surfaceHeight = width, height
}

func (b *recordingBackend) SetPresentMode(mode PresentMode) {
	b.presentMode = mode
}

func (b *recordingBackend) CreateTexture(desc TextureDescriptor) (any, error) {
	t := &fakeTexture{desc: desc}
	b.textures = append(b.textures, t)
	return t, nil
}

func (b *recordingBackend) WriteTexture(handle any, x, y, width, height int, pixels []byte) error {
	b.writes++
	return nil
}

func (b *recordingBackend) ReleaseTexture(handle any) {
	handle.(*fakeTexture).released = true
}

func (b *recordingBackend) CreateShader(s shader.Shader) (any, error) {
	return s.Name(), nil
}

func (b *recordingBackend) CreateMesh(label string, vertexData, indexData []byte) (any, error) {
	b.meshes++
	return label, nil
}

func (b *recordingBackend) ReleaseMesh(handle any) {}

func (b *recordingBackend) BeginFrame() error {
	b.frames++
	return nil
}

func (b *recordingBackend) BindTargets(color *ColorTarget, depth *DepthTarget) {
	b.color, b.depth = color, depth
}

func (b *recordingBackend) ClearTargets(color common.Vector4, clearDepth bool) {
	b.clears = append(b.clears, fakeClear{color: color, clearDepth: clearDepth, target: b.color})
}

func (b *recordingBackend) BindShader(handle any, s shader.Shader, depth pipeline.DepthState, sampler pipeline.SamplerState, blend pipeline.BlendState) {
	b.shader = handle.(string)
	b.shaderBinds = append(b.shaderBinds, b.shader)
}

func (b *recordingBackend) BindTextures(textures []Sampleable) {
	b.textureSets++
	copy(b.bound[:], textures)
}

func (b *recordingBackend) WriteTransform(data []byte) {
	b.transforms = append(b.transforms, append([]byte(nil), data...))
}

func (b *recordingBackend) DrawImmediate(data []byte, vertexCount int) {
	vertices := make([]ImmediateVertex, vertexCount)
	copy(common.SliceToBytes(vertices), data)
	b.draws = append(b.draws, b.draw(false, vertexCount, vertices))
}

func (b *recordingBackend) DrawIndexed(mesh any, indexCount int) {
	b.draws = append(b.draws, b.draw(true, indexCount, nil))
}

func (b *recordingBackend) draw(indexed bool, count int, vertices []ImmediateVertex) fakeDraw {
	var transform []byte
	if len(b.transforms) > 0 {
		transform = b.transforms[len(b.transforms)-1]
	}
	return fakeDraw{
		shader:    b.shader,
		indexed:   indexed,
		vertices:  vertices,
		count:     count,
		textures:  b.bound,
		color:     b.color,
		depth:     b.depth,
		transform: transform,
	}
}

func (b *recordingBackend) EndFrame() {}

func (b *recordingBackend) Present() {}

func (b *recordingBackend) Release() {
	b.released = true
}

// fakeSurface is a fixed-size presentation surface.
type fakeSurface struct {
	width, height int
}

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s fakeSurface) Width() int                                { return s.width }
func (s fakeSurface) Height() int                               { return s.height }

// newTestRenderer creates a renderer on a recording backend with an 800x600 surface.
func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *recordingBackend) {
	t.Helper()
	b := &recordingBackend{}
	r, err := NewRenderer(BackendTypeWGPU, fakeSurface{width: 800, height: 600}, append([]RendererBuilderOption{WithBackend(b)}, options...)...)
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return r.(*renderer), b
}

// fakeFont is a monospaced font with 10x12 glyphs, 2 px descent, and kerning of -1 after 'A'.
type fakeFont struct {
	atlas Sampleable
}

func (f *fakeFont) Atlas() Sampleable { return f.atlas }

func (f *fakeFont) CharacterHeight() float32 { return 16 }

func (f *fakeFont) Glyph(r rune) Glyph {
	return Glyph{
		Advance:  11,
		BearingX: 1,
		BearingY: 10,
		Width:    10,
		Height:   12,
		UVMin:    common.Vector2{X: 0.25, Y: 0.5},
		UVMax:    common.Vector2{X: 0.75, Y: 1},
	}
}

func (f *fakeFont) Kerning(a, b rune) float32 {
	if a == 'A' {
		return -1
	}
	return 0
}
