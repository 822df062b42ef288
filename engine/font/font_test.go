package font

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
	"golang.org/x/image/font/gofont/goregular"
)

type upload struct {
	x, y, w, h int
	pixels     []byte
}

type fakeUploader struct {
	created []*common.Bitmap
	uploads []upload
}

func (u *fakeUploader) CreateTexture(bmp *common.Bitmap, label string) (*renderer.SampledTexture, error) {
	u.created = append(u.created, bmp)
	return &renderer.SampledTexture{}, nil
}

func (u *fakeUploader) UpdateTexture(t *renderer.SampledTexture, x, y, width, height int, pixels []byte) error {
	u.uploads = append(u.uploads, upload{x, y, width, height, pixels})
	return nil
}

func newTestFont(t *testing.T, size int) (*Font, *fakeUploader) {
	t.Helper()
	u := &fakeUploader{}
	f, err := NewFont("goregular", goregular.TTF, size, u, nil)
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}
	return f, u
}

func TestNewFontCreatesAtlas(t *testing.T) {
	f, u := newTestFont(t, 16)
	if len(u.created) != 1 {
		t.Fatalf("got %d textures, want 1", len(u.created))
	}
	if bmp := u.created[0]; bmp.Width != AtlasSize || bmp.Height != AtlasSize || len(bmp.Pix) != AtlasSize*AtlasSize*4 {
		t.Errorf("got atlas %dx%d with %d bytes", bmp.Width, bmp.Height, len(bmp.Pix))
	}
	if f.CharacterHeight() != 16 || f.Atlas() == nil {
		t.Errorf("got character height %v atlas %v", f.CharacterHeight(), f.Atlas())
	}
}

func TestNewFontRejectsBadInput(t *testing.T) {
	if _, err := NewFont("bad", []byte("not a font"), 16, &fakeUploader{}, nil); err == nil {
		t.Errorf("parsed garbage without an error")
	}
	if _, err := NewFont("zero", goregular.TTF, 0, &fakeUploader{}, nil); err == nil {
		t.Errorf("accepted a zero size")
	}
}

func TestBlankGlyphsHaveNoAtlasSpace(t *testing.T) {
	f, u := newTestFont(t, 16)
	for _, r := range " \t\n" {
		g := f.Glyph(r)
		if g.Width != 0 || g.Height != 0 {
			t.Errorf("rune %q got size %vx%v, want 0x0", r, g.Width, g.Height)
		}
	}
	if f.Glyph(' ').Advance <= 0 {
		t.Errorf("space has no advance")
	}
	if len(u.uploads) != 0 {
		t.Errorf("got %d uploads for blank glyphs, want 0", len(u.uploads))
	}
}

func TestGlyphPacking(t *testing.T) {
	f, u := newTestFont(t, 16)

	a := f.Glyph('A')
	b := f.Glyph('B')
	f.Glyph('A')

	if len(u.uploads) != 2 {
		t.Fatalf("got %d uploads, want 2 (glyphs are cached)", len(u.uploads))
	}
	first, second := u.uploads[0], u.uploads[1]
	if first.x != 0 || first.y != 0 {
		t.Errorf("got first glyph at (%d, %d), want (0, 0)", first.x, first.y)
	}
	if second.x != first.w+glyphPadding || second.y != 0 {
		t.Errorf("got second glyph at (%d, %d), want (%d, 0)", second.x, second.y, first.w+glyphPadding)
	}

	if a.Width != float32(first.w) || a.Height != float32(first.h) {
		t.Errorf("got glyph size %vx%v, want %dx%d", a.Width, a.Height, first.w, first.h)
	}
	wantMax := common.Vector2{X: float32(first.w) / AtlasSize, Y: float32(first.h) / AtlasSize}
	if a.UVMin != (common.Vector2{}) || a.UVMax != wantMax {
		t.Errorf("got uv %v-%v, want (0,0)-%v", a.UVMin, a.UVMax, wantMax)
	}
	if got := b.UVMin.X * AtlasSize; got != float32(second.x) {
		t.Errorf("got second glyph u %v, want %d", got, second.x)
	}

	// glyph texels are white with coverage in alpha
	px := first.pixels
	if len(px) != first.w*first.h*4 || px[0] != 255 || px[1] != 255 || px[2] != 255 {
		t.Errorf("unexpected glyph pixels")
	}
	var covered bool
	for i := 3; i < len(px); i += 4 {
		covered = covered || px[i] > 0
	}
	if !covered {
		t.Errorf("glyph upload has no coverage")
	}
}

func TestReserveWrapsRows(t *testing.T) {
	f := &Font{size: 20}

	x, y, ok := f.reserve(1000, 10)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("got (%d, %d, %v), want (0, 0, true)", x, y, ok)
	}
	x, y, ok = f.reserve(30, 10)
	if !ok || x != 0 || y != 20 {
		t.Errorf("got (%d, %d, %v), want a new row at (0, 20)", x, y, ok)
	}
	x, _, _ = f.reserve(10, 10)
	if x != 34 {
		t.Errorf("got x %d, want 34", x)
	}

	// a glyph ending the row exactly moves the pen to the next row
	f = &Font{size: 20}
	f.reserve(AtlasSize-glyphPadding, 10)
	if f.bx != 0 || f.by != 20 {
		t.Errorf("got pen (%d, %d), want (0, 20)", f.bx, f.by)
	}
}

func TestReserveFull(t *testing.T) {
	f := &Font{size: 20, by: AtlasSize - 10}
	if _, _, ok := f.reserve(10, 20); ok {
		t.Errorf("reserved space below the atlas")
	}
	if _, _, ok := f.reserve(AtlasSize+1, 1); ok {
		t.Errorf("reserved a glyph wider than the atlas")
	}
}

func TestStringWidth(t *testing.T) {
	f, _ := newTestFont(t, 24)
	text := "AVA b"

	var want float32
	runes := []rune(text)
	for i, r := range runes {
		want += f.Glyph(r).Advance
		if i+1 < len(runes) {
			want += f.Kerning(r, runes[i+1])
		}
	}
	if got := f.StringWidth(text); got != want {
		t.Errorf("got width %v, want %v", got, want)
	}
	if f.StringWidth("") != 0 {
		t.Errorf("empty string has width")
	}
}

func TestReleaseDropsAtlas(t *testing.T) {
	f, _ := newTestFont(t, 16)
	f.Glyph('x')
	f.Release()
	if f.Atlas() != nil {
		t.Errorf("atlas survived Release")
	}
	if g := f.Glyph('y'); g != (renderer.Glyph{}) {
		t.Errorf("released font rasterised %v", g)
	}
}

func TestLibraryCachesBySize(t *testing.T) {
	u := &fakeUploader{}
	lib, err := NewLibrary(t.TempDir(), 4, u, nil)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	a, err := lib.Get("missing.ttf", 16)
	if err != nil {
		t.Fatalf("missing font did not fall back: %v", err)
	}
	b, _ := lib.Get("missing.ttf", 16)
	c, _ := lib.Get("missing.ttf", 32)

	if a != b {
		t.Errorf("same name and size returned different fonts")
	}
	if a == c || c.Size() != 32 {
		t.Errorf("different sizes share a font")
	}
	if lib.Len() != 2 || len(u.created) != 2 {
		t.Errorf("got %d fonts and %d atlases, want 2 and 2", lib.Len(), len(u.created))
	}
}

func TestLibraryReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Test.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	lib, _ := NewLibrary(dir, 0, &fakeUploader{}, nil)

	f, err := lib.Get("Test.ttf", 20)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.Name() != "Test.ttf" {
		t.Errorf("got name %q, want Test.ttf", f.Name())
	}
	if _, err := lib.Get(FallbackName, 20); err != nil {
		t.Errorf("fallback by name: %v", err)
	}
}

func TestLibraryEvictionReleasesAtlas(t *testing.T) {
	lib, _ := NewLibrary(t.TempDir(), 1, &fakeUploader{}, nil)

	first, _ := lib.Get(FallbackName, 10)
	second, _ := lib.Get(FallbackName, 12)

	if first.Atlas() != nil {
		t.Errorf("evicted font still holds its atlas")
	}
	if second.Atlas() == nil || lib.Len() != 1 {
		t.Errorf("got %d fonts, want the newest one loaded", lib.Len())
	}

	lib.Release()
	if lib.Len() != 0 || second.Atlas() != nil {
		t.Errorf("Release left %d fonts loaded", lib.Len())
	}
}
