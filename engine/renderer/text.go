package renderer

import (
	"github.com/Carmen-Shannon/tm3d-go/common"
)

// Glyph is the placement of one rasterised rune in a font atlas. Sizes and offsets are in pixels;
// the UV rectangle has UVMin at the glyph's top-left texel.
type Glyph struct {
	Advance  float32
	BearingX float32
	BearingY float32
	Width    float32
	Height   float32
	UVMin    common.Vector2
	UVMax    common.Vector2
}

// TextFont is a font that can be drawn by DrawText.
type TextFont interface {
	// Atlas returns the texture holding the rasterised glyphs.
	Atlas() Sampleable

	// CharacterHeight returns the line height in pixels.
	CharacterHeight() float32

	// Glyph returns the glyph for r, rasterising it into the atlas on first use.
	Glyph(r rune) Glyph

	// Kerning returns the horizontal adjustment in pixels between a and b.
	Kerning(a, b rune) float32
}

// DrawText draws text with its baseline starting at (x, y) in the current 2D projection, using the
// text shader and the font's atlas. A newline moves down one line and back to x. Space and tab only
// advance the pen.
//
// Parameters:
//   - font: the font to draw with
//   - text: the UTF-8 text
//   - x, y: the pen start position in pixels
//   - color: the text colour
func (r *renderer) DrawText(font TextFont, text string, x, y float32, color common.Vector4) {
	if font == nil {
		return
	}
	r.SetShader(r.shaders.Text)
	r.SetDiffuseTexture(font.Atlas())

	r.ImmediateBegin()

	runes := []rune(text)
	startX := x
	for i, cp := range runes {
		if cp == '\n' {
			y -= font.CharacterHeight()
			x = startX
			continue
		}

		g := font.Glyph(cp)
		if cp != ' ' && cp != '\t' {
			r.drawGlyph(g, x, y, color)
		}
		x += g.Advance
		if i+1 < len(runes) {
			x += font.Kerning(cp, runes[i+1])
		}
	}

	r.ImmediateFlush()
}

// drawGlyph queues the quad of one glyph with its baseline at y.
func (r *renderer) drawGlyph(g Glyph, x, y float32, color common.Vector4) {
	xpos := x + g.BearingX
	ypos := y - (g.Height - g.BearingY)
	w, h := g.Width, g.Height

	p0 := common.Vector2{X: xpos, Y: ypos + h}
	p1 := common.Vector2{X: xpos, Y: ypos}
	p2 := common.Vector2{X: xpos + w, Y: ypos}
	p3 := common.Vector2{X: xpos + w, Y: ypos + h}

	uv0 := common.Vector2{X: g.UVMin.X, Y: g.UVMin.Y}
	uv1 := common.Vector2{X: g.UVMin.X, Y: g.UVMax.Y}
	uv2 := common.Vector2{X: g.UVMax.X, Y: g.UVMax.Y}
	uv3 := common.Vector2{X: g.UVMax.X, Y: g.UVMin.Y}

	r.ImmediateQuad2DUV(p0, p1, p2, p3, uv0, uv1, uv2, uv3, color)
}

// StringWidth returns the pen advance of text on a single line: the sum of glyph advances and
// kerning. Newlines are not treated specially.
//
// Parameters:
//   - font: the font to measure with
//   - text: the UTF-8 text
//
// Returns:
//   - float32: the width in pixels
func StringWidth(font TextFont, text string) float32 {
	runes := []rune(text)
	var w float32
	for i, cp := range runes {
		w += font.Glyph(cp).Advance
		if i+1 < len(runes) {
			w += font.Kerning(cp, runes[i+1])
		}
	}
	return w
}
