package terrain

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
)

// WorldBuilderOption is a functional option for configuring a World.
type WorldBuilderOption func(*world)

// WithLogger sets the logger used for terrain generation messages.
func WithLogger(logger *log.Logger) WorldBuilderOption {
	return func(w *world) {
		w.log = logger
	}
}

// WithHeightmapSource sets where MakeTerrain loads heightmaps from.
//
// Parameters:
//   - source: the heightmap loader, typically the texture catalog
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithHeightmapSource(source HeightmapSource) WorldBuilderOption {
	return func(w *world) {
		w.heightmaps = source
	}
}

// WithMeshMaker sets what uploads the terrain meshes.
//
// Parameters:
//   - maker: the mesh uploader, typically the renderer
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithMeshMaker(maker MeshMaker) WorldBuilderOption {
	return func(w *world) {
		w.meshes = maker
	}
}

// WithWorkerPool sets the pool that generates heightmap rows.
func WithWorkerPool(pool worker.DynamicWorkerPool) WorldBuilderOption {
	return func(w *world) {
		w.pool = pool
	}
}

// WithCacheDir caches generated grids in dir. An empty dir disables the cache.
//
// Parameters:
//   - dir: the cache directory, see DefaultCacheDir
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithCacheDir(dir string) WorldBuilderOption {
	return func(w *world) {
		if dir == "" {
			w.cache = nil
			return
		}
		w.cache = &gridCache{dir: dir}
	}
}
