package font

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/tm3d-go/engine/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultCapacity is the number of (name, size) fonts a Library keeps loaded.
const DefaultCapacity = 16

// FallbackName is the name under which the built-in Go Regular face is cached.
const FallbackName = "goregular"

type fontKey struct {
	name string
	size int
}

// Library loads fonts from a directory and caches them by (name, size). The least recently used
// font is released, atlas included, once the capacity is exceeded. Fonts missing from disk fall
// back to Go Regular.
type Library struct {
	dir      string
	uploader TextureUploader
	log      *log.Logger

	cache *lru.Cache[fontKey, *Font]
	files map[string][]byte
}

// NewLibrary creates a font library.
//
// Parameters:
//   - dir: the font directory, e.g. "data/fonts"
//   - capacity: the number of fonts kept loaded, DefaultCapacity when <= 0
//   - uploader: creates the atlases
//   - logger: optional logger, may be nil
//
// Returns:
//   - *Library: the library
//   - error: an error if the cache cannot be created
func NewLibrary(dir string, capacity int, uploader TextureUploader, logger *log.Logger) (*Library, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.NewWithEvict(capacity, func(key fontKey, f *Font) {
		logger.Debug("releasing font", "font", key.name, "size", key.size)
		f.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font cache: %w", err)
	}
	return &Library{
		dir:      dir,
		uploader: uploader,
		log:      logger,
		cache:    cache,
		files:    make(map[string][]byte),
	}, nil
}

// Get returns the font name at size pixels, loading it on first use.
//
// Parameters:
//   - name: the file name inside the font directory, e.g. "KarminaBold.otf"
//   - size: the pixel size
//
// Returns:
//   - *Font: the font
//   - error: an error if neither the file nor the fallback could be loaded
func (l *Library) Get(name string, size int) (*Font, error) {
	key := fontKey{name: name, size: size}
	if f, ok := l.cache.Get(key); ok {
		return f, nil
	}

	data, err := l.readFile(name)
	if err != nil {
		return nil, err
	}
	f, err := NewFont(name, data, size, l.uploader, l.log)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, f)
	l.log.Debug("loaded font", "font", name, "size", size)
	return f, nil
}

// Len returns the number of fonts currently loaded.
func (l *Library) Len() int {
	return l.cache.Len()
}

// Release frees every loaded font.
func (l *Library) Release() {
	l.cache.Purge()
	clear(l.files)
}

// readFile returns the font file contents, reading each file once. Missing files resolve to the
// fallback face.
func (l *Library) readFile(name string) ([]byte, error) {
	if data, ok := l.files[name]; ok {
		return data, nil
	}
	if name == FallbackName {
		return goregular.TTF, nil
	}

	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("font not found, using fallback", "font", name, "dir", l.dir)
		data = goregular.TTF
	} else if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", name, err)
	}
	l.files[name] = data
	return data, nil
}
