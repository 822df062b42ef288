package terrain

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

// HeightmapSource loads heightmap bitmaps with their first row at the top. A missing heightmap
// returns nil without an error. engine/loader.Catalog satisfies it.
type HeightmapSource interface {
	LoadHeightmap(name string) (*common.Bitmap, error)
}

// MeshMaker uploads terrain meshes. renderer.Renderer satisfies it.
type MeshMaker interface {
	MakeMesh(name string, vertices []renderer.MeshVertex, indices []uint32) (*renderer.Mesh, error)
}

// ErrNoSource is returned by MakeTerrain when the world has no heightmap source or mesh maker.
var ErrNoSource = errors.New("terrain world is missing a heightmap source or mesh maker")

// World holds the loaded terrain tiles and answers ground queries over them.
type World interface {
	// MakeTerrain generates a terrain tile from a heightmap and registers it at a grid cell. A
	// missing heightmap is not an error: the tile is registered without a mesh and reports height 0.
	//
	// Parameters:
	//   - gridX, gridZ: the tile's grid cell
	//   - pack: the textures blended across the tile
	//   - blendMap: the texture whose channels weight the pack
	//   - heightmapName: the heightmap to generate from
	//
	// Returns:
	//   - *Terrain: the registered terrain
	//   - error: an error if the heightmap cannot be read or the mesh cannot be created
	MakeTerrain(gridX, gridZ int, pack TexturePack, blendMap renderer.Sampleable, heightmapName string) (*Terrain, error)

	// TerrainAt returns the tile under a world position, or nil when no loaded tile covers it. The
	// position is negated and divided by Size, truncating toward zero, to find the grid cell.
	TerrainAt(position common.Vector3) *Terrain

	// GroundHeight returns the ground height under a world position, 0 when no tile covers it.
	GroundHeight(position common.Vector3) float32

	// Terrains returns the loaded tiles in load order.
	Terrains() []*Terrain

	// DrawTerrains draws every tile with a mesh using the terrain shader and the tile's texture
	// pack, placed at (X, 0, Z).
	//
	// Parameters:
	//   - r: the renderer to draw with
	DrawTerrains(r renderer.Renderer)

	// Release frees the tile meshes and forgets every tile. A worker pool created by NewWorld is
	// stopped; tiles made afterwards are generated on the calling goroutine.
	Release()
}

type world struct {
	log        *log.Logger
	heightmaps HeightmapSource
	meshes     MeshMaker
	pool       worker.DynamicWorkerPool
	ownsPool   bool
	cache      *gridCache

	terrains []*Terrain
}

var _ World = &world{}

// NewWorld creates an empty terrain world. Without WithWorkerPool a pool sized to the CPU count is
// created and Release stops it; without WithCacheDir generated grids are not cached.
//
// Parameters:
//   - options: functional options to configure the world
//
// Returns:
//   - World: the terrain world
func NewWorld(options ...WorldBuilderOption) World {
	w := &world{}
	for _, opt := range options {
		opt(w)
	}
	if w.pool == nil {
		w.pool = worker.NewDynamicWorkerPool(runtime.NumCPU(), 256, 1*time.Second)
		w.ownsPool = true
	}
	return w
}

func (w *world) MakeTerrain(gridX, gridZ int, pack TexturePack, blendMap renderer.Sampleable, heightmapName string) (*Terrain, error) {
	if w.heightmaps == nil || w.meshes == nil {
		return nil, ErrNoSource
	}
	t := &Terrain{
		GridX:    gridX,
		GridZ:    gridZ,
		X:        float32(gridX) * Size,
		Z:        float32(gridZ) * Size,
		Name:     heightmapName,
		Pack:     pack,
		BlendMap: blendMap,
	}

	bmp, err := w.heightmaps.LoadHeightmap(heightmapName)
	if err != nil {
		return nil, fmt.Errorf("failed to load heightmap %s: %w", heightmapName, err)
	}
	if bmp == nil {
		w.log.Warn("heightmap not found, terrain is flat", "heightmap", heightmapName, "grid_x", gridX, "grid_z", gridZ)
		w.terrains = append(w.terrains, t)
		return t, nil
	}

	grid, err := w.grid(heightmapName, bmp)
	if err != nil {
		return nil, fmt.Errorf("failed to generate terrain %s: %w", heightmapName, err)
	}
	mesh, err := w.meshes.MakeMesh("terrain "+heightmapName, grid.Vertices(), grid.Indices())
	if err != nil {
		return nil, fmt.Errorf("failed to create terrain mesh %s: %w", heightmapName, err)
	}

	t.Mesh = mesh
	t.Heights = grid.Heights
	t.N = grid.N
	w.terrains = append(w.terrains, t)
	w.log.Info("terrain created", "heightmap", heightmapName, "grid_x", gridX, "grid_z", gridZ, "n", grid.N)
	return t, nil
}

// grid returns the cached height field for the heightmap, generating and caching it on a miss.
func (w *world) grid(name string, bmp *common.Bitmap) (*Grid, error) {
	if w.cache != nil {
		g, err := w.cache.load(name, bmp)
		if err == nil {
			w.log.Debug("terrain grid cache hit", "heightmap", name)
			return g, nil
		}
		w.log.Debug("terrain grid cache miss", "heightmap", name, "error", err)
	}

	start := time.Now()
	g, err := Generate(bmp, w.pool)
	if err != nil {
		return nil, err
	}
	w.log.Debug("terrain grid generated", "heightmap", name, "n", g.N, "elapsed", time.Since(start))

	if w.cache != nil {
		if err := w.cache.store(name, bmp, g); err != nil {
			w.log.Warn("failed to cache terrain grid", "heightmap", name, "error", err)
		}
	}
	return g, nil
}

func (w *world) TerrainAt(position common.Vector3) *Terrain {
	cx := int(math.Abs(float64(int(-position.X / Size))))
	cz := int(math.Abs(float64(int(-position.Z / Size))))
	for _, t := range w.terrains {
		if t.GridX == cx && t.GridZ == cz {
			return t
		}
	}
	return nil
}

func (w *world) GroundHeight(position common.Vector3) float32 {
	return HeightAt(w.TerrainAt(position), -position.X, -position.Z)
}

func (w *world) Terrains() []*Terrain {
	return w.terrains
}

func (w *world) DrawTerrains(r renderer.Renderer) {
	r.SetShader(r.Shaders().Terrain)
	for _, t := range w.terrains {
		if t.Mesh == nil {
			continue
		}
		r.SetTexturePack(t.Pack.Background, t.Pack.Red, t.Pack.Green, t.Pack.Blue, t.BlendMap)
		r.DrawMesh(t.Mesh, common.Vector3{X: t.X, Z: t.Z}, common.Vector3{}, 1)
	}
}

func (w *world) Release() {
	for _, t := range w.terrains {
		if t.Mesh != nil {
			t.Mesh.Release()
		}
	}
	w.terrains = nil

	if w.ownsPool {
		w.pool.Stop()
		w.pool = nil
		w.ownsPool = false
	}
}
