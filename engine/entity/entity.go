package entity

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

// entityCount hands out unique IDs to entities created without WithID.
var entityCount atomic.Uint64

type entity struct {
	id      uint64
	enabled atomic.Bool
	mesh    *renderer.Mesh

	position common.Vector3
	rotation common.Vector3
	scale    float32
}

// Entity defines the interface for a placed mesh in the world: a mesh with a position, an euler
// rotation in degrees and a uniform scale.
type Entity interface {
	// ID returns the entity's unique identifier.
	//
	// Returns:
	//   - uint64: the entity ID
	ID() uint64

	// Enabled returns whether this entity is drawn.
	Enabled() bool

	// SetEnabled sets whether the entity is drawn.
	SetEnabled(enabled bool)

	// Mesh returns the entity's mesh, or nil if not set. The mesh's Texture is bound as the
	// diffuse texture when drawing.
	Mesh() *renderer.Mesh

	// SetMesh assigns the mesh.
	SetMesh(m *renderer.Mesh)

	// Position returns the world-space position.
	Position() common.Vector3

	// SetPosition sets the world-space position.
	SetPosition(position common.Vector3)

	// Rotation returns the euler rotation in degrees, applied X then Y then Z.
	Rotation() common.Vector3

	// SetRotation sets the euler rotation in degrees.
	SetRotation(rotation common.Vector3)

	// Scale returns the uniform scale.
	Scale() float32

	// SetScale sets the uniform scale.
	SetScale(scale float32)

	// Draw binds the mesh texture and draws the mesh with the active shader. Disabled entities
	// and entities without a mesh draw nothing.
	//
	// Parameters:
	//   - r: the renderer to draw with
	Draw(r renderer.Renderer)
}

var _ Entity = &entity{}

// NewEntity creates a new enabled Entity at the origin with scale 1.
//
// Parameters:
//   - options: functional options to configure the entity
//
// Returns:
//   - Entity: the newly created entity
func NewEntity(options ...EntityBuilderOption) Entity {
	return newEntity(options...)
}

func newEntity(options ...EntityBuilderOption) *entity {
	e := &entity{
		id:    entityCount.Add(1),
		scale: 1,
	}
	e.enabled.Store(true)
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *entity) ID() uint64 {
	return e.id
}

func (e *entity) Enabled() bool {
	return e.enabled.Load()
}

func (e *entity) SetEnabled(enabled bool) {
	e.enabled.Store(enabled)
}

func (e *entity) Mesh() *renderer.Mesh {
	return e.mesh
}

func (e *entity) SetMesh(m *renderer.Mesh) {
	e.mesh = m
}

func (e *entity) Position() common.Vector3 {
	return e.position
}

func (e *entity) SetPosition(position common.Vector3) {
	e.position = position
}

func (e *entity) Rotation() common.Vector3 {
	return e.rotation
}

func (e *entity) SetRotation(rotation common.Vector3) {
	e.rotation = rotation
}

func (e *entity) Scale() float32 {
	return e.scale
}

func (e *entity) SetScale(scale float32) {
	e.scale = scale
}

func (e *entity) Draw(r renderer.Renderer) {
	if !e.Enabled() || e.mesh == nil {
		return
	}
	if e.mesh.Texture != nil {
		r.SetDiffuseTexture(e.mesh.Texture)
	}
	r.DrawMesh(e.mesh, e.position, e.rotation, e.scale)
}
