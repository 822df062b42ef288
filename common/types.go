// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
)

// PixelFormat identifies the channel layout of a decoded Bitmap.
type PixelFormat int

const (
	// PixelFormatRGBA8 stores four 8-bit channels per pixel.
	PixelFormatRGBA8 PixelFormat = iota

	// PixelFormatRGB8 stores three 8-bit channels per pixel. GPU uploads promote it to RGBA8.
	PixelFormatRGB8
)

// Bitmap is a decoded image held in CPU memory, rows stored bottom-up when loaded with a flip.
type Bitmap struct {
	// Width is the bitmap width in pixels.
	Width int
	// Height is the bitmap height in pixels.
	Height int
	// Format describes how many bytes each pixel occupies in Pix.
	Format PixelFormat
	// Pix holds the raw pixel bytes, Width*Channels() bytes per row with no padding.
	Pix []byte
}

// Channels returns the number of bytes per pixel for the bitmap's format.
func (b *Bitmap) Channels() int {
	if b.Format == PixelFormatRGB8 {
		return 3
	}
	return 4
}

// RGB returns the pixel at (x, y) packed as a 24-bit 0xRRGGBB value. Alpha is ignored.
//
// Parameters:
//   - x: column, 0 <= x < Width
//   - y: row, 0 <= y < Height
//
// Returns:
//   - uint32: the packed color
func (b *Bitmap) RGB(x, y int) uint32 {
	off := (y*b.Width + x) * b.Channels()
	return uint32(b.Pix[off])<<16 | uint32(b.Pix[off+1])<<8 | uint32(b.Pix[off+2])
}

// ARGB returns the pixel at (x, y) packed as 0xAARRGGBB. RGB8 bitmaps report an alpha of 0xFF.
func (b *Bitmap) ARGB(x, y int) uint32 {
	off := (y*b.Width + x) * b.Channels()
	a := uint32(0xFF)
	if b.Format == PixelFormatRGBA8 {
		a = uint32(b.Pix[off+3])
	}
	return a<<24 | uint32(b.Pix[off])<<16 | uint32(b.Pix[off+1])<<8 | uint32(b.Pix[off+2])
}

// RGBA returns the pixels as tightly packed RGBA8, promoting RGB8 data with an alpha of 255.
// RGBA8 bitmaps return their own backing slice.
func (b *Bitmap) RGBA() []byte {
	if b.Format == PixelFormatRGBA8 {
		return b.Pix
	}
	out := make([]byte, b.Width*b.Height*4)
	for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
		out[j] = b.Pix[i]
		out[j+1] = b.Pix[i+1]
		out[j+2] = b.Pix[i+2]
		out[j+3] = 0xFF
	}
	return out
}

// FlipVertical reverses the row order of the bitmap in place.
func (b *Bitmap) FlipVertical() {
	stride := b.Width * b.Channels()
	tmp := make([]byte, stride)
	for top, bottom := 0, b.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := b.Pix[top*stride : (top+1)*stride]
		u := b.Pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}

// BitmapFromImage converts a decoded image into a Bitmap. Opaque images become RGB8 and
// everything else RGBA8 (non-premultiplied).
//
// Parameters:
//   - img: the decoded source image
//   - flip: when true the rows are stored bottom-up
//
// Returns:
//   - *Bitmap: the converted bitmap
//   - error: an error if the image has no pixels
func BitmapFromImage(img image.Image, flip bool) (*Bitmap, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	bmp := &Bitmap{Width: bounds.Dx(), Height: bounds.Dy(), Format: PixelFormatRGBA8, Pix: nrgba.Pix}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		rgb := make([]byte, bmp.Width*bmp.Height*3)
		for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
			rgb[i] = nrgba.Pix[j]
			rgb[i+1] = nrgba.Pix[j+1]
			rgb[i+2] = nrgba.Pix[j+2]
		}
		bmp.Format = PixelFormatRGB8
		bmp.Pix = rgb
	}

	if flip {
		bmp.FlipVertical()
	}
	return bmp, nil
}

// PackABGR packs an RGBA color with channels in [0, 1] into the 32-bit vertex color layout
// (a<<24 | b<<16 | g<<8 | r). Channels outside [0, 1] are clamped.
//
// Parameters:
//   - c: the color as X=r, Y=g, Z=b, W=a
//
// Returns:
//   - uint32: the packed color
func PackABGR(c Vector4) uint32 {
	r := uint32(Clamp(c.X, 0, 1) * 255)
	g := uint32(Clamp(c.Y, 0, 1) * 255)
	b := uint32(Clamp(c.Z, 0, 1) * 255)
	a := uint32(Clamp(c.W, 0, 1) * 255)
	return a<<24 | b<<16 | g<<8 | r
}
