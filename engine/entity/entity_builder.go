package entity

import (
	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

// EntityBuilderOption is a functional option for configuring an Entity during construction.
type EntityBuilderOption func(*entity)

// WithID sets the ID of the Entity.
//
// Parameters:
//   - id: unique identifier for the Entity
//
// Returns:
//   - EntityBuilderOption: functional option to set the ID
func WithID(id uint64) EntityBuilderOption {
	return func(e *entity) {
		e.id = id
	}
}

// WithEnabled sets whether the Entity is drawn.
func WithEnabled(enabled bool) EntityBuilderOption {
	return func(e *entity) {
		e.enabled.Store(enabled)
	}
}

// WithMesh sets the mesh drawn for this Entity.
//
// Parameters:
//   - m: the mesh, with its Texture used as the diffuse texture
//
// Returns:
//   - EntityBuilderOption: functional option to set the mesh
func WithMesh(m *renderer.Mesh) EntityBuilderOption {
	return func(e *entity) {
		e.mesh = m
	}
}

// WithPosition sets the initial position of the Entity.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - EntityBuilderOption: functional option to set the position
func WithPosition(position common.Vector3) EntityBuilderOption {
	return func(e *entity) {
		e.position = position
	}
}

// WithRotation sets the initial euler rotation in degrees.
func WithRotation(rotation common.Vector3) EntityBuilderOption {
	return func(e *entity) {
		e.rotation = rotation
	}
}

// WithScale sets the uniform scale.
func WithScale(scale float32) EntityBuilderOption {
	return func(e *entity) {
		e.scale = scale
	}
}
