package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

// MaxBoundTextures is the number of texture slots a draw can read: the terrain shader's four
// tiling textures and its blend map.
const MaxBoundTextures = 5

// ErrInvalidTexture is returned when texture data does not match the texture it targets.
var ErrInvalidTexture = errors.New("invalid texture")

func (r *renderer) CreateTexture(bmp *common.Bitmap, label string) (*SampledTexture, error) {
	if bmp == nil || bmp.Width <= 0 || bmp.Height <= 0 {
		return nil, fmt.Errorf("texture %s: %w: empty bitmap", label, ErrInvalidTexture)
	}
	handle, err := r.backend.CreateTexture(TextureDescriptor{
		Label:       label,
		Width:       bmp.Width,
		Height:      bmp.Height,
		Usage:       TextureUsageSampled,
		SampleCount: 1,
		Pixels:      bmp.RGBA(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", label, err)
	}
	t := &SampledTexture{}
	t.textureBase = textureBase{label: label, width: bmp.Width, height: bmp.Height, samples: 1, handle: handle, release: r.releaseTexture(t)}
	return t, nil
}

func (r *renderer) UpdateTexture(t *SampledTexture, x, y, width, height int, pixels []byte) error {
	if t == nil || t.handle == nil {
		return fmt.Errorf("%w: texture is nil or released", ErrInvalidTexture)
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > t.width || y+height > t.height {
		return fmt.Errorf("%w: rectangle %d,%d %dx%d outside %dx%d texture %s", ErrInvalidTexture, x, y, width, height, t.width, t.height, t.label)
	}
	if len(pixels) < width*height*4 {
		return fmt.Errorf("%w: %d bytes for a %dx%d update", ErrInvalidTexture, len(pixels), width, height)
	}
	// Draws already batched must read the old contents.
	if r.isBound(t) {
		r.ImmediateFlush()
	}
	return r.backend.WriteTexture(t.handle, x, y, width, height, pixels)
}

func (r *renderer) SetDiffuseTexture(t Sampleable) {
	if r.textures[0] == t {
		return
	}
	if c, ok := t.(*ColorTarget); ok && (c.surface || c == r.colorTarget) {
		r.log.Warn("ignoring diffuse texture that is the surface or the bound render target", "texture", c.label)
		return
	}
	r.ImmediateFlush()
	r.textures[0] = t
	r.bindTextures()
}

func (r *renderer) SetTexturePack(background, red, green, blue, blendMap Sampleable) {
	pack := [MaxBoundTextures]Sampleable{background, red, green, blue, blendMap}
	if r.textures == pack {
		return
	}
	r.ImmediateFlush()
	r.textures = pack
	r.bindTextures()
}

func (r *renderer) bindTextures() {
	r.backend.BindTextures(r.textures[:])
	r.stats.TextureBinds++
}

// isBound reports whether t occupies any texture slot.
func (r *renderer) isBound(t Sampleable) bool {
	for _, b := range r.textures {
		if b != nil && b == t {
			return true
		}
	}
	return false
}

// unbind clears every slot holding t so no draw reads a texture that is being written or freed.
func (r *renderer) unbind(t Sampleable) {
	changed := false
	for i, b := range r.textures {
		if b != nil && b == t {
			r.textures[i] = nil
			changed = true
		}
	}
	if changed {
		r.bindTextures()
	}
}

// releaseTexture returns the release hook of a texture: pending draws are flushed, the texture is
// unbound from every slot, and the backend object is freed.
func (r *renderer) releaseTexture(t Sampleable) func(any) {
	return func(handle any) {
		if r.isBound(t) {
			r.ImmediateFlush()
			r.unbind(t)
		}
		r.backend.ReleaseTexture(handle)
	}
}

func (r *renderer) SetRenderTarget(t *ColorTarget) {
	if t == nil {
		return
	}
	r.ImmediateFlush()
	if !t.surface && r.isBound(t) {
		r.unbind(t)
	}

	r.colorTarget = t
	r.depthTarget = nil
	r.backend.BindTargets(t, nil)

	r.renderTargetWidth = t.Width()
	r.renderTargetHeight = t.Height()
}

func (r *renderer) SetDepthTarget(d *DepthTarget) {
	if d == nil || r.colorTarget == nil {
		return
	}
	r.ImmediateFlush()
	r.depthTarget = d
	r.backend.BindTargets(r.colorTarget, d)
}

func (r *renderer) ClearRenderTarget(red, green, blue, alpha float32) {
	if r.colorTarget == nil {
		return
	}
	r.ImmediateFlush()
	r.backend.ClearTargets(common.Vector4{X: red, Y: green, Z: blue, W: alpha}, r.depthTarget != nil)
}

func (r *renderer) RenderTargetWidth() int {
	return r.renderTargetWidth
}

func (r *renderer) RenderTargetHeight() int {
	return r.renderTargetHeight
}

func (r *renderer) BackBuffer() *ColorTarget {
	return r.backBuffer
}

func (r *renderer) BackDepth() *DepthTarget {
	return r.backDepth
}

func (r *renderer) Offscreen() *ColorTarget {
	return r.offscreen
}

func (r *renderer) OffscreenDepth() *DepthTarget {
	return r.offscreenDepth
}

func (r *renderer) SampleCount() int {
	return int(r.sampleCount)
}

func (r *renderer) SetRenderScale(scale float32) error {
	scale = common.Clamp(scale, 0.25, 2)
	if scale == r.renderScale {
		return nil
	}
	r.renderScale = scale
	return r.ResizeRenderTargets(r.backBuffer.Width(), r.backBuffer.Height())
}

func (r *renderer) ResizeRenderTargets(width, height int) error {
	width = max(width, 1)
	height = max(height, 1)
	r.ImmediateFlush()

	r.colorTarget = nil
	r.depthTarget = nil
	r.releaseTargets()

	r.backend.ConfigureSurface(width, height)
	r.backBuffer.width = width
	r.backBuffer.height = height

	var err error
	if r.backDepth, err = r.createDepthTarget("Back Depth", width, height, 1); err != nil {
		return err
	}

	ow := max(int(float32(width)*r.renderScale), 1)
	oh := max(int(float32(height)*r.renderScale), 1)
	if r.offscreen, err = r.createColorTarget("Offscreen", ow, oh, int(r.sampleCount)); err != nil {
		return err
	}
	if r.offscreenDepth, err = r.createDepthTarget("Offscreen Depth", ow, oh, int(r.sampleCount)); err != nil {
		return err
	}

	r.SetRenderTarget(r.backBuffer)
	r.log.Info("resized render targets", "width", width, "height", height, "offscreen_width", ow, "offscreen_height", oh, "samples", r.sampleCount)
	return nil
}

func (r *renderer) releaseTargets() {
	if r.offscreen != nil {
		r.offscreen.Release()
		r.offscreen = nil
	}
	if r.offscreenDepth != nil {
		r.offscreenDepth.Release()
		r.offscreenDepth = nil
	}
	if r.backDepth != nil {
		r.backDepth.Release()
		r.backDepth = nil
	}
}

func (r *renderer) createColorTarget(label string, width, height, samples int) (*ColorTarget, error) {
	handle, err := r.backend.CreateTexture(TextureDescriptor{
		Label:       label,
		Width:       width,
		Height:      height,
		Usage:       TextureUsageColorTarget,
		SampleCount: samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create colour target %s: %w", label, err)
	}
	t := &ColorTarget{}
	t.textureBase = textureBase{label: label, width: width, height: height, samples: samples, handle: handle, release: r.releaseTexture(t)}
	return t, nil
}

func (r *renderer) createDepthTarget(label string, width, height, samples int) (*DepthTarget, error) {
	handle, err := r.backend.CreateTexture(TextureDescriptor{
		Label:       label,
		Width:       width,
		Height:      height,
		Usage:       TextureUsageDepthTarget,
		SampleCount: samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth target %s: %w", label, err)
	}
	return &DepthTarget{
		textureBase: textureBase{label: label, width: width, height: height, samples: samples, handle: handle, release: r.backend.ReleaseTexture},
	}, nil
}
