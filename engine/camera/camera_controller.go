package camera

import "github.com/Carmen-Shannon/tm3d-go/common"

// Keys reports held keys. engine/input.Input satisfies it.
type Keys interface {
	IsDown(keyCode uint32) bool
}

// Ground reports the terrain height under a world position. Positions with no terrain report 0.
type Ground interface {
	GroundHeight(position common.Vector3) float32
}

// CameraController defines a first-person walking controller. It owns the eye position and
// look direction; a Camera reads them to build the view matrix.
//
// Mouse movement turns the view (yaw around Y, pitch clamped to +-89 degrees). W and S walk
// along the horizontal look direction, A and D strafe, and the eye keeps its height while
// walking. Space jumps when standing on the ground, a constant pull brings the eye back down,
// and the ground clamp keeps the eye at least EyeHeight above the terrain.
type CameraController interface {
	// Position returns the eye position in world space.
	Position() common.Vector3

	// SetPosition teleports the eye. The controller is considered airborne until the next
	// ground clamp.
	//
	// Parameters:
	//   - position: world-space eye position
	SetPosition(position common.Vector3)

	// Target returns the unit look direction.
	Target() common.Vector3

	// Yaw returns the heading in degrees. -90 looks down -Z.
	Yaw() float32

	// Pitch returns the elevation in degrees, within [-89, 89].
	Pitch() float32

	// SetOrientation sets yaw and pitch in degrees and recomputes the look direction.
	//
	// Parameters:
	//   - yaw: heading in degrees
	//   - pitch: elevation in degrees, clamped to [-89, 89]
	SetOrientation(yaw, pitch float32)

	// OnGround reports whether the last update ended standing on the ground.
	OnGround() bool

	// Update advances the controller by one simulation step.
	//
	// Parameters:
	//   - keys: held key state
	//   - dx, dy: mouse movement this frame in pixels, y grows downwards
	//   - dt: the simulation step in seconds
	//   - ground: terrain height lookup, nil for a flat ground at height 0
	Update(keys Keys, dx, dy, dt float32, ground Ground)
}
