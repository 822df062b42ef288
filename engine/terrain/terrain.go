package terrain

import (
	"math"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

const (
	// Size is the world-space width and depth of one terrain tile.
	Size = 800.0

	// MaxHeight is the span of decodable heights, centred on zero.
	MaxHeight = 40.0

	// MaxPixelColor is one more than the largest packed 24-bit RGB value.
	MaxPixelColor = 1 << 24
)

// TexturePack holds the four textures a terrain blends between. The blend map's red, green and
// blue channels weight the matching textures; the remainder goes to Background.
type TexturePack struct {
	Background renderer.Sampleable
	Red        renderer.Sampleable
	Green      renderer.Sampleable
	Blue       renderer.Sampleable
}

// Terrain is one Size x Size tile generated from a heightmap. Its height array is read-only after
// generation. A terrain whose heightmap could not be found has no Mesh and no Heights; it still
// occupies its grid cell and reports height 0 everywhere.
type Terrain struct {
	// GridX and GridZ locate the tile in the terrain grid.
	GridX, GridZ int

	// X and Z are the world offset of the tile, GridX*Size and GridZ*Size.
	X, Z float32

	Name     string
	Mesh     *renderer.Mesh
	Pack     TexturePack
	BlendMap renderer.Sampleable

	// Heights holds N*N heights, row-major with rows along Z.
	Heights []float32
	N       int
}

// cellCorner is a vertex of a grid cell as an offset from its top-left vertex.
type cellCorner struct {
	dx, dz int
}

// cellTriangles splits a grid cell into the two triangles drawn by the terrain mesh:
// {top-left, bottom-left, top-right} and {top-right, bottom-left, bottom-right}. The index
// builder and the height query both read this table.
var cellTriangles = [2][3]cellCorner{
	{{0, 0}, {0, 1}, {1, 0}},
	{{1, 0}, {0, 1}, {1, 1}},
}

// cellTriangle picks the triangle containing the fractional cell position (xc, zc).
func cellTriangle(xc, zc float32) int {
	if xc <= 1-zc {
		return 0
	}
	return 1
}

// Decode returns the terrain height stored in the pixel at column x, row z: the pixel's packed
// 24-bit RGB value scaled into [-MaxHeight/2, MaxHeight/2). Reads outside the bitmap return 0.
//
// Parameters:
//   - bmp: the heightmap
//   - x: pixel column
//   - z: pixel row
//
// Returns:
//   - float32: the decoded height
func Decode(bmp *common.Bitmap, x, z int) float32 {
	if bmp == nil || x < 0 || z < 0 || x >= bmp.Width || z >= bmp.Height {
		return 0
	}
	h := float64(bmp.RGB(x, z))
	h /= MaxPixelColor
	h *= MaxHeight
	h -= MaxHeight * 0.5
	return float32(h)
}

// HeightAt returns the interpolated ground height of t at a world position. The offsets from the
// tile origin are taken as magnitudes, the containing cell is found from the grid spacing, and the
// height is interpolated on the same triangle the mesh draws. Positions outside the tile, a nil
// terrain and a terrain without heights all return 0.
//
// Parameters:
//   - t: the terrain to sample, may be nil
//   - worldX, worldZ: the query position
//
// Returns:
//   - float32: the ground height
func HeightAt(t *Terrain, worldX, worldZ float32) float32 {
	if t == nil || t.N < 2 || len(t.Heights) < t.N*t.N {
		return 0
	}
	n := t.N

	tx := abs(abs(worldX) - t.X)
	tz := abs(abs(worldZ) - t.Z)
	spacing := float32(Size) / float32(n-1)

	gx, xc := cellOf(tx, spacing, n)
	gz, zc := cellOf(tz, spacing, n)
	if gx < 0 || gz < 0 || gx > n-2 || gz > n-2 {
		return 0
	}

	var p [3]common.Vector3
	for i, c := range cellTriangles[cellTriangle(xc, zc)] {
		p[i] = common.Vector3{
			X: float32(c.dx),
			Y: t.Heights[(gz+c.dz)*n+gx+c.dx],
			Z: float32(c.dz),
		}
	}
	return common.Barycentric(p[0], p[1], p[2], common.Vector2{X: xc, Y: zc})
}

// cellOf returns the cell index and the fractional position inside it. A position exactly on the
// far edge belongs to the last cell.
func cellOf(offset, spacing float32, n int) (int, float32) {
	cell := int(offset / spacing)
	frac := float32(math.Mod(float64(offset), float64(spacing))) / spacing
	if cell == n-1 && frac == 0 {
		return n - 2, 1
	}
	return cell, frac
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
