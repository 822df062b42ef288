package terrain

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion is bumped whenever the generated grid changes for the same heightmap.
const cacheVersion = 1

type cachedGrid struct {
	Version int   `msgpack:"version"`
	Grid    *Grid `msgpack:"grid"`
}

// DefaultCacheDir returns the per-user directory generated grids are cached in.
func DefaultCacheDir() (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "tm3d", "terrain"), nil
}

// gridCache stores generated grids as zstd compressed msgpack, one file per heightmap name and
// content hash.
type gridCache struct {
	dir string
}

func (c *gridCache) path(name string, bmp *common.Bitmap) string {
	h := fnv.New64a()
	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[0:], uint64(bmp.Width))
	binary.LittleEndian.PutUint64(dims[8:], uint64(bmp.Height))
	h.Write(dims[:])
	h.Write([]byte{byte(bmp.Format)})
	h.Write(bmp.Pix)

	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, name)
	return filepath.Join(c.dir, fmt.Sprintf("%s-%016x.msgpack.zst", safe, h.Sum64()))
}

// load returns the cached grid for the heightmap. Any read or decode failure is reported as an
// error and the caller regenerates.
func (c *gridCache) load(name string, bmp *common.Bitmap) (*Grid, error) {
	f, err := os.Open(c.path(name, bmp))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var cached cachedGrid
	if err := msgpack.NewDecoder(zr).Decode(&cached); err != nil {
		return nil, fmt.Errorf("failed to decode grid: %w", err)
	}
	g := cached.Grid
	if cached.Version != cacheVersion || g == nil || g.N != bmp.Height || len(g.Heights) != g.N*g.N || len(g.Normals) != g.N*g.N {
		return nil, fmt.Errorf("stale grid cache for %s", name)
	}
	return g, nil
}

// store writes the grid for the heightmap, replacing any previous entry.
func (c *gridCache) store(name string, bmp *common.Bitmap, g *Grid) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	path := c.path(name, bmp)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	stored := false
	defer func() {
		if !stored {
			f.Close()
			os.Remove(tmp)
		}
	}()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(cachedGrid{Version: cacheVersion, Grid: g}); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode grid: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	stored = true
	return nil
}
