package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"

	_ "golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// DefaultRoot is the directory holding the textures/ and models/ folders.
const DefaultRoot = "data"

// textureExtensions are probed in order by FindOrCreateTexture.
var textureExtensions = []string{"png", "jpg", "bmp"}

// Uploader creates GPU resources from decoded assets. renderer.Renderer satisfies it.
type Uploader interface {
	CreateTexture(bmp *common.Bitmap, label string) (*renderer.SampledTexture, error)
	MakeMesh(name string, vertices []renderer.MeshVertex, indices []uint32) (*renderer.Mesh, error)
}

// ErrNoUploader is returned by operations that need GPU uploads on a catalog built without one.
var ErrNoUploader = errors.New("catalog has no uploader")

// Catalog finds, decodes and caches the textures and meshes under a data directory.
type Catalog interface {
	// FindOrCreateTexture returns the texture with the given short name, loading
	// textures/<name>.png, .jpg or .bmp on first use. Rows are flipped so the first row is the
	// bottom of the image. A texture with no file returns nil and no error.
	//
	// Parameters:
	//   - name: the texture's short name
	//
	// Returns:
	//   - *renderer.SampledTexture: the cached or new texture, nil when no file exists
	//   - error: error if the file cannot be decoded or uploaded
	FindOrCreateTexture(name string) (*renderer.SampledTexture, error)

	// Texture returns an already loaded texture, or nil.
	Texture(name string) *renderer.SampledTexture

	// LoadHeightmap decodes textures/<name>.png, .jpg or .bmp without uploading it. Rows keep file
	// order. A missing file returns nil and no error.
	LoadHeightmap(name string) (*common.Bitmap, error)

	// LoadMesh returns the mesh with the given short name, loading models/<name>.obj on first use.
	//
	// Parameters:
	//   - name: the model's short name
	//
	// Returns:
	//   - *renderer.Mesh: the cached or new mesh
	//   - error: error if the file is missing, malformed or cannot be uploaded
	LoadMesh(name string) (*renderer.Mesh, error)

	// MakeMesh uploads loose geometry. Missing uvs default to (0, 0) and missing normals to
	// (0, 1, 0); uvs and normals may be nil or shorter than positions.
	//
	// Parameters:
	//   - name: the mesh name
	//   - positions: vertex positions
	//   - uvs: per-vertex texture coordinates
	//   - normals: per-vertex normals
	//   - indices: triangle list indices into positions
	//
	// Returns:
	//   - *renderer.Mesh: the uploaded mesh
	//   - error: error if the upload fails
	MakeMesh(name string, positions []common.Vector3, uvs []common.Vector2, normals []common.Vector3, indices []uint32) (*renderer.Mesh, error)

	// Preload decodes the named textures in parallel and uploads them on the calling goroutine.
	// Names already loaded or without a file are skipped.
	//
	// Parameters:
	//   - ctx: cancels the decoding
	//   - names: texture short names
	//
	// Returns:
	//   - error: the first decode or upload error
	Preload(ctx context.Context, names ...string) error

	// Release frees every cached texture and mesh.
	Release()
}

type catalog struct {
	mu sync.RWMutex

	root     string
	uploader Uploader
	log      *log.Logger
	backend  loaderBackend

	textures map[string]*renderer.SampledTexture
	meshes   map[string]*renderer.Mesh
}

var _ Catalog = &catalog{}

// NewCatalog creates a Catalog reading from DefaultRoot with the specified backend type and
// options applied.
//
// Parameters:
//   - backendType: the model format backend (e.g., BackendTypeOBJ)
//   - options: a variadic list of CatalogBuilderOption functions to configure the Catalog
//
// Returns:
//   - Catalog: a new Catalog
func NewCatalog(backendType LoaderBackendType, options ...CatalogBuilderOption) Catalog {
	c := &catalog{
		root:     DefaultRoot,
		textures: make(map[string]*renderer.SampledTexture),
		meshes:   make(map[string]*renderer.Mesh),
	}

	switch backendType {
	case BackendTypeOBJ:
		c.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(c)
	}
	return c
}

func (c *catalog) FindOrCreateTexture(name string) (*renderer.SampledTexture, error) {
	if t := c.Texture(name); t != nil {
		return t, nil
	}

	bmp, err := c.decodeTexture(name, true)
	if err != nil || bmp == nil {
		return nil, err
	}
	return c.upload(name, bmp)
}

func (c *catalog) Texture(name string) *renderer.SampledTexture {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.textures[name]
}

func (c *catalog) LoadHeightmap(name string) (*common.Bitmap, error) {
	return c.decodeTexture(name, false)
}

func (c *catalog) LoadMesh(name string) (*renderer.Mesh, error) {
	c.mu.RLock()
	if cached, ok := c.meshes[name]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	path := filepath.Join(c.root, "models", name+c.backend.Extension())
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	data, err := c.backend.LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	m, err := c.MakeMesh(name, data.Positions, data.UVs, data.Normals, data.Indices)
	if err != nil {
		return nil, err
	}
	c.log.Debug("mesh loaded", "name", name, "vertices", len(data.Positions), "indices", len(data.Indices))

	c.mu.Lock()
	c.meshes[name] = m
	c.mu.Unlock()
	return m, nil
}

func (c *catalog) MakeMesh(name string, positions []common.Vector3, uvs []common.Vector2, normals []common.Vector3, indices []uint32) (*renderer.Mesh, error) {
	if c.uploader == nil {
		return nil, ErrNoUploader
	}
	m, err := c.uploader.MakeMesh(name, MeshVertices(positions, uvs, normals), indices)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh %s: %w", name, err)
	}
	return m, nil
}

func (c *catalog) Preload(ctx context.Context, names ...string) error {
	bitmaps := make([]*common.Bitmap, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		if c.Texture(name) != nil {
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bmp, err := c.decodeTexture(name, true)
			bitmaps[i] = bmp
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, bmp := range bitmaps {
		if bmp == nil || c.Texture(names[i]) != nil {
			continue
		}
		if _, err := c.upload(names[i], bmp); err != nil {
			return err
		}
	}
	return nil
}

func (c *catalog) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.textures {
		t.Release()
	}
	for _, m := range c.meshes {
		m.Release()
	}
	c.textures = make(map[string]*renderer.SampledTexture)
	c.meshes = make(map[string]*renderer.Mesh)
}

// upload creates the texture for bmp and caches it under name.
func (c *catalog) upload(name string, bmp *common.Bitmap) (*renderer.SampledTexture, error) {
	if c.uploader == nil {
		return nil, ErrNoUploader
	}
	t, err := c.uploader.CreateTexture(bmp, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.textures[name]; ok {
		t.Release()
		return existing, nil
	}
	c.textures[name] = t
	c.log.Debug("texture loaded", "name", name, "width", bmp.Width, "height", bmp.Height)
	return t, nil
}

// decodeTexture decodes the first textures/<name>.<ext> that exists, nil when none does.
func (c *catalog) decodeTexture(name string, flip bool) (*common.Bitmap, error) {
	path := c.findTexture(name)
	if path == "" {
		c.log.Warn("texture not found", "name", name)
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	bmp, err := common.BitmapFromImage(img, flip)
	if err != nil {
		return nil, fmt.Errorf("failed to convert texture %s: %w", path, err)
	}
	return bmp, nil
}

func (c *catalog) findTexture(name string) string {
	for _, ext := range textureExtensions {
		path := filepath.Join(c.root, "textures", name+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("failed to stat texture", "path", path, "error", err)
		}
	}
	return ""
}

// MeshVertices interleaves loose geometry into mesh vertices. Missing uvs default to (0, 0) and
// missing normals to (0, 1, 0).
func MeshVertices(positions []common.Vector3, uvs []common.Vector2, normals []common.Vector3) []renderer.MeshVertex {
	out := make([]renderer.MeshVertex, len(positions))
	for i, p := range positions {
		out[i].Position = p
		if i < len(uvs) {
			out[i].UV = uvs[i]
		}
		if i < len(normals) {
			out[i].Normal = normals[i]
		} else {
			out[i].Normal = common.Vector3{Y: 1}
		}
	}
	return out
}
