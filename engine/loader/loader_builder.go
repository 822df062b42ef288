package loader

import (
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
)

// CatalogBuilderOption is a functional option for configuring a Catalog via NewCatalog.
type CatalogBuilderOption func(*catalog)

// WithUploader is an option builder that sets what uploads decoded assets to the GPU.
//
// Parameters:
//   - u: the uploader, typically the renderer
//
// Returns:
//   - CatalogBuilderOption: a function that applies the uploader option to a catalog
func WithUploader(u Uploader) CatalogBuilderOption {
	return func(c *catalog) {
		c.uploader = u
	}
}

// WithRoot is an option builder that sets the data directory holding textures/ and models/.
//
// Parameters:
//   - dir: the data directory
//
// Returns:
//   - CatalogBuilderOption: a function that applies the root option to a catalog
func WithRoot(dir string) CatalogBuilderOption {
	return func(c *catalog) {
		c.root = dir
	}
}

// WithLogger sets the logger for asset messages.
func WithLogger(l *log.Logger) CatalogBuilderOption {
	return func(c *catalog) {
		c.log = l
	}
}
