package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

// MeshVertex is one static mesh vertex. The layout is 32 bytes and matches the mesh vertex buffer
// layout.
type MeshVertex struct {
	Position common.Vector3
	UV       common.Vector2
	Normal   common.Vector3
}

// Mesh is an indexed triangle list uploaded to the GPU.
type Mesh struct {
	// Name identifies the mesh, usually the model file's short name.
	Name string
	// VertexCount is the number of uploaded vertices.
	VertexCount int
	// IndexCount is the number of indices drawn by DrawMesh.
	IndexCount int
	// Texture is the mesh's default diffuse texture. It may be nil.
	Texture Sampleable

	handle  any
	release func(any)
}

// Release frees the mesh's GPU buffers. Releasing twice is a no-op.
func (m *Mesh) Release() {
	if m == nil || m.handle == nil {
		return
	}
	if m.release != nil {
		m.release(m.handle)
	}
	m.handle = nil
}

func (r *renderer) MakeMesh(name string, vertices []MeshVertex, indices []uint32) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %s has no geometry", name)
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("mesh %s: index %d out of range for %d vertices", name, idx, len(vertices))
		}
	}
	handle, err := r.backend.CreateMesh(name, common.SliceToBytes(vertices), common.SliceToBytes(indices))
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh %s: %w", name, err)
	}
	return &Mesh{
		Name:        name,
		VertexCount: len(vertices),
		IndexCount:  len(indices),
		handle:      handle,
		release:     r.backend.ReleaseMesh,
	}, nil
}

func (r *renderer) DrawMesh(m *Mesh, position, rotation common.Vector3, scale float32) {
	if m == nil || m.handle == nil {
		return
	}
	r.SetObjectToWorld(common.ObjectToWorld(position, rotation, scale))
	r.RefreshTransform()

	if r.activeShader == nil {
		r.log.Warn("skipping mesh draw with no active shader", "mesh", m.Name)
		return
	}
	r.backend.DrawIndexed(m.handle, m.IndexCount)
	r.stats.DrawCalls++
	r.stats.Vertices += m.IndexCount
}
