package terrain

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

// rgbBitmap builds an RGB8 bitmap from packed 24-bit values, row-major.
func rgbBitmap(width, height int, values ...uint32) *common.Bitmap {
	pix := make([]byte, width*height*3)
	for i, v := range values {
		pix[i*3+0] = byte(v >> 16)
		pix[i*3+1] = byte(v >> 8)
		pix[i*3+2] = byte(v)
	}
	return &common.Bitmap{Width: width, Height: height, Format: common.PixelFormatRGB8, Pix: pix}
}

func TestDecodeRange(t *testing.T) {
	bmp := rgbBitmap(3, 1, 0, 1, MaxPixelColor-1)

	lo := Decode(bmp, 0, 0)
	if lo != -MaxHeight/2 {
		t.Errorf("got %v for pixel 0, want %v", lo, -MaxHeight/2)
	}
	step := Decode(bmp, 1, 0) - lo
	if want := float32(MaxHeight / (MaxPixelColor - 1)); math.Abs(float64(step-want)) > 1e-5 {
		t.Errorf("got step %v, want %v", step, want)
	}
	if hi := Decode(bmp, 2, 0); hi >= MaxHeight/2 || hi < MaxHeight/2-1e-3 {
		t.Errorf("got %v for the largest pixel, want just below %v", hi, MaxHeight/2)
	}
}

func TestDecodeMonotonic(t *testing.T) {
	values := []uint32{0, 1, 255, 256, 65535, 65536, 1 << 20, MaxPixelColor - 2, MaxPixelColor - 1}
	bmp := rgbBitmap(len(values), 1, values...)
	for x := 1; x < len(values); x++ {
		if Decode(bmp, x, 0) < Decode(bmp, x-1, 0) {
			t.Errorf("decode not monotonic between %d and %d", values[x-1], values[x])
		}
	}
}

func TestDecodeOutside(t *testing.T) {
	bmp := rgbBitmap(2, 2, MaxPixelColor-1, MaxPixelColor-1, MaxPixelColor-1, MaxPixelColor-1)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if got := Decode(bmp, p[0], p[1]); got != 0 {
			t.Errorf("got %v at %v, want 0", got, p)
		}
	}
	if Decode(nil, 0, 0) != 0 {
		t.Errorf("nil bitmap decoded a height")
	}
}

func TestCellTriangles(t *testing.T) {
	tests := []struct {
		xc, zc float32
		want   int
	}{
		{0, 0, 0},
		{0.25, 0.25, 0},
		{0.5, 0.5, 0},
		{0.75, 0.75, 1},
		{1, 0.01, 1},
		{0.99, 0, 0},
	}
	for _, tt := range tests {
		if got := cellTriangle(tt.xc, tt.zc); got != tt.want {
			t.Errorf("cellTriangle(%v, %v) = %d, want %d", tt.xc, tt.zc, got, tt.want)
		}
	}
}

func TestHeightAtInterpolates(t *testing.T) {
	// corners TL 0, TR 4, BL 8, BR 20: the two triangles do not share a plane
	ter := &Terrain{N: 2, Heights: []float32{0, 4, 8, 20}}

	tests := []struct {
		name   string
		wx, wz float32
		want   float32
	}{
		{"first triangle", 200, 200, 3},
		{"second triangle", 600, 600, 13},
		{"negative coordinates use magnitudes", -200, -200, 3},
		{"top left", 0, 0, 0},
		{"top right", 800, 0, 4},
		{"bottom left", 0, 800, 8},
		{"bottom right", 800, 800, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeightAt(ter, tt.wx, tt.wz); !near(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeightAtOutOfRange(t *testing.T) {
	ter := &Terrain{N: 2, Heights: []float32{5, 5, 5, 5}}
	for _, p := range [][2]float32{{900, 100}, {100, 900}, {1600, 1600}} {
		if got := HeightAt(ter, p[0], p[1]); got != 0 {
			t.Errorf("got %v at %v, want 0", got, p)
		}
	}
	if HeightAt(nil, 10, 10) != 0 {
		t.Errorf("nil terrain has a height")
	}
	if HeightAt(&Terrain{GridX: 0}, 10, 10) != 0 {
		t.Errorf("terrain without heights has a height")
	}
}

func TestHeightAtFarEdge(t *testing.T) {
	// 3 x 3 grid, spacing 400; only the last column is raised
	ter := &Terrain{N: 3, Heights: []float32{
		0, 0, 6,
		0, 0, 10,
		0, 0, 0,
	}}

	tests := []struct {
		name   string
		wx, wz float32
		want   float32
	}{
		{"far edge vertex", 800, 0, 6},
		{"far edge between vertices", 800, 200, 8},
		{"far corner", 800, 800, 0},
		{"past the far edge", 800.5, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeightAt(ter, tt.wx, tt.wz); !near(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeightAtIsExactAtVertices(t *testing.T) {
	const n = 5
	values := make([]uint32, n*n)
	for i := range values {
		values[i] = uint32(i*i*7919) % MaxPixelColor
	}
	g, err := Generate(rgbBitmap(n, n, values...), nil)
	if err != nil {
		t.Fatal(err)
	}
	ter := &Terrain{N: g.N, Heights: g.Heights}

	for i, v := range g.Vertices() {
		if got := HeightAt(ter, -v.Position.X, -v.Position.Z); !near(got, g.Heights[i]) {
			t.Errorf("vertex %d at (%v, %v): got %v, want %v", i, v.Position.X, v.Position.Z, got, g.Heights[i])
		}
	}
}

func TestFlatHeightmap(t *testing.T) {
	g, err := Generate(rgbBitmap(3, 3), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range g.Heights {
		if g.Heights[i] != g.Heights[0] {
			t.Errorf("height %d is %v, want %v", i, g.Heights[i], g.Heights[0])
		}
		if g.Normals[i] != (common.Vector3{Y: 1}) {
			t.Errorf("normal %d is %v, want (0, 1, 0)", i, g.Normals[i])
		}
	}
}

func TestNormalsWrapAround(t *testing.T) {
	// a single raised column at x = 0 tilts the normals of its neighbours on both sides,
	// including the far column it wraps to
	const n = 4
	values := make([]uint32, n*n)
	for z := range n {
		values[z*n] = 1 << 22
	}
	g, err := Generate(rgbBitmap(n, n, values...), nil)
	if err != nil {
		t.Fatal(err)
	}
	if nx := g.Normals[1].X; nx <= 0 {
		t.Errorf("column 1 normal x is %v, want > 0", nx)
	}
	if nx := g.Normals[n-1].X; nx >= 0 {
		t.Errorf("column %d normal x is %v, want < 0 (wrapped)", n-1, nx)
	}
	if nx := g.Normals[2].X; nx != 0 {
		t.Errorf("column 2 normal x is %v, want 0", nx)
	}
}

func TestGenerateRejectsTinyHeightmaps(t *testing.T) {
	if _, err := Generate(rgbBitmap(1, 1), nil); err == nil {
		t.Errorf("generated a 1x1 heightmap")
	}
	if _, err := Generate(nil, nil); err == nil {
		t.Errorf("generated a nil heightmap")
	}
}

func TestGridMesh(t *testing.T) {
	g, err := Generate(rgbBitmap(2, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 2, 1, 1, 2, 3}
	got := g.Indices()
	if len(got) != len(want) {
		t.Fatalf("got %d indices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d is %d, want %d", i, got[i], want[i])
		}
	}

	g3, _ := Generate(rgbBitmap(3, 3), nil)
	if n := len(g3.Indices()); n != 6*2*2 {
		t.Errorf("got %d indices for 3x3, want 24", n)
	}
	v := g3.Vertices()[5]
	if v.Position.X != -800 || v.Position.Z != -400 || v.UV != (common.Vector2{X: 1, Y: 0.5}) {
		t.Errorf("vertex 5 at %v uv %v, want (-800, -400) uv (1, 0.5)", v.Position, v.UV)
	}
}
