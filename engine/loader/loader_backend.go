package loader

import (
	"io"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

// MeshData is a mesh decoded from a model file, held in CPU memory. UVs and Normals are either
// nil or indexed like Positions.
type MeshData struct {
	Positions []common.Vector3
	UVs       []common.Vector2
	Normals   []common.Vector3
	Indices   []uint32
}

// loaderBackend decodes one model file format into MeshData.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Extension returns the file extension the backend reads, including the dot.
	Extension() string

	// LoadReader decodes a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *MeshData: the decoded mesh
	//   - error: error if the data is malformed
	LoadReader(r io.Reader) (*MeshData, error)
}
