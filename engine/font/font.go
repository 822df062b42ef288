package font

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// AtlasSize is the width and height of every font atlas in pixels.
const AtlasSize = 1024

// glyphPadding is the horizontal gap left between packed glyphs.
const glyphPadding = 4

// TextureUploader creates and updates sampled textures. renderer.Renderer satisfies it.
type TextureUploader interface {
	CreateTexture(bmp *common.Bitmap, label string) (*renderer.SampledTexture, error)
	UpdateTexture(t *renderer.SampledTexture, x, y, width, height int, pixels []byte) error
}

// Font is one typeface rasterised at one pixel size. Glyphs are rasterised on first use and packed
// left to right into rows of a single AtlasSize x AtlasSize RGBA atlas: white texels whose alpha is
// the glyph coverage. A Font is used from the render goroutine only.
type Font struct {
	name string
	size int

	face     xfont.Face
	uploader TextureUploader
	atlas    *renderer.SampledTexture
	log      *log.Logger

	glyphs map[rune]renderer.Glyph

	// next free atlas position
	bx, by int
	full   bool
}

var _ renderer.TextFont = &Font{}

// NewFont parses an OpenType/TrueType font and creates its empty atlas.
//
// Parameters:
//   - name: the font name used in labels and logs
//   - data: the font file contents
//   - size: the pixel size, also used as the line height
//   - uploader: creates the atlas texture and receives glyph uploads
//   - logger: optional logger, may be nil
//
// Returns:
//   - *Font: the font
//   - error: an error if the font cannot be parsed or the atlas cannot be created
func NewFont(name string, data []byte, size int, uploader TextureUploader, logger *log.Logger) (*Font, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font %s: invalid size %d", name, size)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for font %s: %w", name, err)
	}

	atlas, err := uploader.CreateTexture(&common.Bitmap{
		Width:  AtlasSize,
		Height: AtlasSize,
		Format: common.PixelFormatRGBA8,
		Pix:    make([]byte, AtlasSize*AtlasSize*4),
	}, fmt.Sprintf("font %s %d", name, size))
	if err != nil {
		face.Close()
		return nil, fmt.Errorf("failed to create atlas for font %s: %w", name, err)
	}

	return &Font{
		name:     name,
		size:     size,
		face:     face,
		uploader: uploader,
		atlas:    atlas,
		log:      logger,
		glyphs:   make(map[rune]renderer.Glyph),
	}, nil
}

// Name returns the font name.
func (f *Font) Name() string {
	return f.name
}

// Size returns the pixel size the font was created at.
func (f *Font) Size() int {
	return f.size
}

func (f *Font) Atlas() renderer.Sampleable {
	if f.atlas == nil {
		return nil
	}
	return f.atlas
}

func (f *Font) CharacterHeight() float32 {
	return float32(f.size)
}

// Glyph returns the glyph for r, rasterising it into the atlas on first use. Space, tab and
// newline get metrics only. Runes the face lacks are cached with zero metrics.
func (f *Font) Glyph(r rune) renderer.Glyph {
	if g, ok := f.glyphs[r]; ok {
		return g
	}
	g := f.loadGlyph(r)
	f.glyphs[r] = g
	return g
}

func (f *Font) Kerning(a, b rune) float32 {
	if f.face == nil {
		return 0
	}
	return float32(f.face.Kern(a, b).Round())
}

// StringWidth returns the pen advance of text in pixels. It loads any glyph not seen before.
func (f *Font) StringWidth(text string) float32 {
	return renderer.StringWidth(f, text)
}

// Release frees the atlas and the face. The font must not be used afterwards.
func (f *Font) Release() {
	if f.atlas != nil {
		f.atlas.Release()
		f.atlas = nil
	}
	if f.face != nil {
		f.face.Close()
		f.face = nil
	}
	clear(f.glyphs)
}

// loadGlyph rasterises r and packs it at the current atlas position.
func (f *Font) loadGlyph(r rune) renderer.Glyph {
	if f.face == nil {
		return renderer.Glyph{}
	}
	dr, mask, maskp, advance, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		f.log.Debug("glyph missing from font", "font", f.name, "rune", string(r))
		return renderer.Glyph{}
	}

	g := renderer.Glyph{
		Advance:  float32(advance.Round()),
		BearingX: float32(dr.Min.X),
		BearingY: float32(-dr.Min.Y),
	}
	if r == ' ' || r == '\t' || r == '\n' || dr.Empty() {
		return g
	}

	w, h := dr.Dx(), dr.Dy()
	x, y, ok := f.reserve(w, h)
	if !ok {
		if !f.full {
			f.log.Warn("font atlas is full", "font", f.name, "size", f.size)
			f.full = true
		}
		return g
	}

	alpha := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(alpha, alpha.Bounds(), mask, maskp, draw.Src)
	pixels := make([]byte, w*h*4)
	for i, a := range alpha.Pix {
		pixels[i*4+0] = 255
		pixels[i*4+1] = 255
		pixels[i*4+2] = 255
		pixels[i*4+3] = a
	}
	if err := f.uploader.UpdateTexture(f.atlas, x, y, w, h, pixels); err != nil {
		f.log.Warn("failed to upload glyph", "font", f.name, "rune", string(r), "error", err)
		return g
	}

	g.Width = float32(w)
	g.Height = float32(h)
	g.UVMin = common.Vector2{X: float32(x) / AtlasSize, Y: float32(y) / AtlasSize}
	g.UVMax = common.Vector2{X: float32(x+w) / AtlasSize, Y: float32(y+h) / AtlasSize}
	return g
}

// reserve claims a w x h rectangle in the atlas. Glyphs fill a row left to right with a gap of
// glyphPadding; a row is CharacterHeight tall.
func (f *Font) reserve(w, h int) (x, y int, ok bool) {
	if w > AtlasSize || h > AtlasSize {
		return 0, 0, false
	}
	if f.bx+w > AtlasSize {
		f.bx = 0
		f.by += f.size
	}
	if f.by+h > AtlasSize {
		return 0, 0, false
	}
	x, y = f.bx, f.by
	f.bx += w + glyphPadding
	if f.bx >= AtlasSize {
		f.bx = 0
		f.by += f.size
	}
	return x, y, true
}
