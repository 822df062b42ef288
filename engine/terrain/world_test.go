package terrain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

type fakeHeightmaps map[string]*common.Bitmap

func (f fakeHeightmaps) LoadHeightmap(name string) (*common.Bitmap, error) {
	if name == "broken" {
		return nil, errors.New("corrupt image")
	}
	return f[name], nil
}

type fakeMeshes struct {
	names    []string
	vertices [][]renderer.MeshVertex
	indices  [][]uint32
}

func (f *fakeMeshes) MakeMesh(name string, vertices []renderer.MeshVertex, indices []uint32) (*renderer.Mesh, error) {
	f.names = append(f.names, name)
	f.vertices = append(f.vertices, vertices)
	f.indices = append(f.indices, indices)
	return &renderer.Mesh{Name: name, VertexCount: len(vertices), IndexCount: len(indices)}, nil
}

// drawRecorder records the calls DrawTerrains makes; every other Renderer method is unused.
type drawRecorder struct {
	renderer.Renderer

	shaders   renderer.Shaders
	bound     []*renderer.Program
	packs     [][5]renderer.Sampleable
	meshes    []*renderer.Mesh
	positions []common.Vector3
}

func (d *drawRecorder) Shaders() renderer.Shaders { return d.shaders }

func (d *drawRecorder) SetShader(p *renderer.Program) { d.bound = append(d.bound, p) }

func (d *drawRecorder) SetTexturePack(bg, r, g, b, blend renderer.Sampleable) {
	d.packs = append(d.packs, [5]renderer.Sampleable{bg, r, g, b, blend})
}

func (d *drawRecorder) DrawMesh(m *renderer.Mesh, position, rotation common.Vector3, scale float32) {
	d.meshes = append(d.meshes, m)
	d.positions = append(d.positions, position)
}

// flatHeightmap returns an n x n heightmap whose pixels all decode to height.
func flatHeightmap(n int, height float32) *common.Bitmap {
	v := uint32((float64(height) + MaxHeight/2) / MaxHeight * MaxPixelColor)
	values := make([]uint32, n*n)
	for i := range values {
		values[i] = v
	}
	return rgbBitmap(n, n, values...)
}

func newTestWorld(t *testing.T, options ...WorldBuilderOption) (World, *fakeMeshes) {
	t.Helper()
	meshes := &fakeMeshes{}
	opts := append([]WorldBuilderOption{
		WithHeightmapSource(fakeHeightmaps{
			"flat":  flatHeightmap(5, 10),
			"small": flatHeightmap(3, -5),
		}),
		WithMeshMaker(meshes),
		WithWorkerPool(worker.NewDynamicWorkerPool(2, 16, time.Second)),
	}, options...)
	return NewWorld(opts...), meshes
}

func TestMakeTerrain(t *testing.T) {
	w, meshes := newTestWorld(t)
	blend := &renderer.SampledTexture{}

	ter, err := w.MakeTerrain(1, 0, TexturePack{}, blend, "flat")
	if err != nil {
		t.Fatalf("MakeTerrain: %v", err)
	}
	if ter.X != 800 || ter.Z != 0 || ter.N != 5 || len(ter.Heights) != 25 {
		t.Errorf("got terrain at (%v, %v) with n %d and %d heights", ter.X, ter.Z, ter.N, len(ter.Heights))
	}
	if ter.Mesh == nil || ter.BlendMap != blend {
		t.Errorf("mesh or blend map not set")
	}
	if len(meshes.names) != 1 || len(meshes.vertices[0]) != 25 || len(meshes.indices[0]) != 6*4*4 {
		t.Errorf("got %d meshes", len(meshes.names))
	}
	if len(w.Terrains()) != 1 {
		t.Errorf("got %d terrains, want 1", len(w.Terrains()))
	}
}

func TestMakeTerrainErrors(t *testing.T) {
	if _, err := NewWorld().MakeTerrain(0, 0, TexturePack{}, nil, "flat"); !errors.Is(err, ErrNoSource) {
		t.Errorf("got %v, want ErrNoSource", err)
	}

	w, _ := newTestWorld(t)
	if _, err := w.MakeTerrain(0, 0, TexturePack{}, nil, "broken"); err == nil {
		t.Errorf("broken heightmap did not fail")
	}
	if len(w.Terrains()) != 0 {
		t.Errorf("failed terrain was registered")
	}
}

func TestMissingHeightmapIsFlat(t *testing.T) {
	w, meshes := newTestWorld(t)
	ter, err := w.MakeTerrain(0, 0, TexturePack{}, nil, "missing")
	if err != nil {
		t.Fatalf("MakeTerrain: %v", err)
	}
	if ter.Mesh != nil || ter.Heights != nil || len(meshes.names) != 0 {
		t.Errorf("missing heightmap produced geometry")
	}
	if w.TerrainAt(common.Vector3{X: -10, Z: -10}) != ter {
		t.Errorf("missing heightmap terrain not registered")
	}
	if h := w.GroundHeight(common.Vector3{X: -10, Z: -10}); h != 0 {
		t.Errorf("got height %v, want 0", h)
	}
}

func TestTerrainAt(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.MakeTerrain(0, 0, TexturePack{}, nil, "flat")
	b, _ := w.MakeTerrain(1, 2, TexturePack{}, nil, "small")

	tests := []struct {
		name string
		pos  common.Vector3
		want *Terrain
	}{
		{"inside the first tile", common.Vector3{X: -100, Z: -100}, a},
		{"positive coordinates truncate to cell 0", common.Vector3{X: 100, Z: 100}, a},
		{"second tile", common.Vector3{X: -900, Z: -1700}, b},
		{"no tile", common.Vector3{X: -900, Z: -100}, nil},
		{"far away", common.Vector3{X: -5000, Z: -5000}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.TerrainAt(tt.pos); got != tt.want {
				t.Errorf("got %p, want %p", got, tt.want)
			}
		})
	}
}

func TestGroundHeight(t *testing.T) {
	w, _ := newTestWorld(t)
	w.MakeTerrain(0, 0, TexturePack{}, nil, "flat")

	if h := w.GroundHeight(common.Vector3{X: -123, Z: -456}); !near(h, 10) {
		t.Errorf("got %v, want 10", h)
	}
	if h := w.GroundHeight(common.Vector3{X: -900, Z: -100}); h != 0 {
		t.Errorf("got %v outside every tile, want 0", h)
	}
}

func TestDrawTerrains(t *testing.T) {
	w, _ := newTestWorld(t)
	pack := TexturePack{
		Background: &renderer.SampledTexture{},
		Red:        &renderer.SampledTexture{},
		Green:      &renderer.SampledTexture{},
		Blue:       &renderer.SampledTexture{},
	}
	blend := &renderer.SampledTexture{}
	w.MakeTerrain(0, 0, pack, blend, "flat")
	w.MakeTerrain(1, 0, pack, blend, "missing")
	w.MakeTerrain(0, 1, pack, blend, "small")

	d := &drawRecorder{shaders: renderer.Shaders{Terrain: &renderer.Program{}}}
	w.DrawTerrains(d)

	if len(d.bound) != 1 || d.bound[0] != d.shaders.Terrain {
		t.Errorf("terrain shader not bound once")
	}
	if len(d.meshes) != 2 {
		t.Fatalf("got %d mesh draws, want 2 (the missing heightmap has no mesh)", len(d.meshes))
	}
	if d.positions[1] != (common.Vector3{Z: 800}) {
		t.Errorf("got position %v, want (0, 0, 800)", d.positions[1])
	}
	want := [5]renderer.Sampleable{pack.Background, pack.Red, pack.Green, pack.Blue, blend}
	if d.packs[0] != want {
		t.Errorf("texture pack bound in the wrong order")
	}
}

func TestGridCache(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWorld(t, WithCacheDir(dir))
	if _, err := w.MakeTerrain(0, 0, TexturePack{}, nil, "flat"); err != nil {
		t.Fatal(err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "flat-*.msgpack.zst"))
	if len(files) != 1 {
		t.Fatalf("got %d cache files, want 1", len(files))
	}

	c := &gridCache{dir: dir}
	bmp := flatHeightmap(5, 10)
	g, err := c.load("flat", bmp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want, _ := Generate(bmp, nil)
	for i := range want.Heights {
		if g.Heights[i] != want.Heights[i] || g.Normals[i] != want.Normals[i] {
			t.Fatalf("cached grid differs at %d", i)
		}
	}

	// a different heightmap under the same name misses
	if _, err := c.load("flat", flatHeightmap(5, 11)); err == nil {
		t.Errorf("changed heightmap hit the cache")
	}

	// corrupt entries fall back to generation
	if err := os.WriteFile(files[0], []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.load("flat", bmp); err == nil {
		t.Errorf("corrupt cache entry decoded")
	}
	w2, _ := newTestWorld(t, WithCacheDir(dir))
	ter, err := w2.MakeTerrain(0, 0, TexturePack{}, nil, "flat")
	if err != nil || ter.N != 5 {
		t.Errorf("regeneration after a corrupt cache failed: %v", err)
	}
}

func TestGenerateWithPoolMatchesSerial(t *testing.T) {
	const n = 9
	values := make([]uint32, n*n)
	for i := range values {
		values[i] = uint32(i*104729) % MaxPixelColor
	}
	bmp := rgbBitmap(n, n, values...)

	serial, _ := Generate(bmp, nil)
	parallel, err := Generate(bmp, worker.NewDynamicWorkerPool(4, 16, time.Second))
	if err != nil {
		t.Fatal(err)
	}
	for i := range serial.Heights {
		if serial.Heights[i] != parallel.Heights[i] || serial.Normals[i] != parallel.Normals[i] {
			t.Fatalf("pooled generation differs at %d", i)
		}
	}
}

func TestRelease(t *testing.T) {
	w, _ := newTestWorld(t)
	w.MakeTerrain(0, 0, TexturePack{}, nil, "flat")
	w.Release()
	if len(w.Terrains()) != 0 || w.TerrainAt(common.Vector3{}) != nil {
		t.Errorf("terrains survived Release")
	}
}

// countingPool counts Stop calls on a real pool.
type countingPool struct {
	worker.DynamicWorkerPool
	stops int
}

func (p *countingPool) Stop() {
	p.stops++
	p.DynamicWorkerPool.Stop()
}

func TestReleaseStopsOwnedPool(t *testing.T) {
	w := NewWorld(
		WithHeightmapSource(fakeHeightmaps{"flat": flatHeightmap(5, 10)}),
		WithMeshMaker(&fakeMeshes{}),
	).(*world)
	if w.pool == nil || !w.ownsPool {
		t.Fatalf("NewWorld did not create its own pool")
	}
	w.Release()
	if w.pool != nil || w.ownsPool {
		t.Errorf("owned pool not stopped by Release")
	}

	// generation still works without a pool
	ter, err := w.MakeTerrain(0, 0, TexturePack{}, nil, "flat")
	if err != nil || ter.Mesh == nil {
		t.Errorf("MakeTerrain after Release: %v", err)
	}
}

func TestReleaseKeepsInjectedPool(t *testing.T) {
	pool := &countingPool{DynamicWorkerPool: worker.NewDynamicWorkerPool(2, 16, time.Second)}
	defer pool.DynamicWorkerPool.Stop()

	w, _ := newTestWorld(t, WithWorkerPool(pool))
	w.Release()
	if pool.stops != 0 {
		t.Errorf("Release stopped a pool it does not own")
	}
}

func TestGridCacheStoreFailureRemovesTemp(t *testing.T) {
	dir := t.TempDir()
	c := &gridCache{dir: dir}
	bmp := flatHeightmap(3, 0)
	g, _ := Generate(bmp, nil)

	// a non-empty directory at the entry path makes the final rename fail
	blocker := c.path("flat", bmp)
	if err := os.MkdirAll(filepath.Join(blocker, "occupied"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := c.store("flat", bmp, g); err == nil {
		t.Fatalf("store succeeded over a directory")
	}
	if _, err := os.Stat(blocker + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}

	if err := os.RemoveAll(blocker); err != nil {
		t.Fatal(err)
	}
	if err := c.store("flat", bmp, g); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := os.Stat(blocker); err != nil {
		t.Errorf("cache entry missing after store: %v", err)
	}
}
