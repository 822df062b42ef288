package camera

import "github.com/Carmen-Shannon/tm3d-go/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial eye position.
//
// Parameters:
//   - position: world-space eye position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position common.Vector3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = position
	}
}

// WithOrientation sets the initial heading and elevation.
//
// Parameters:
//   - yaw: heading in degrees (-90 looks down -Z)
//   - pitch: elevation in degrees, clamped to [-89, 89]
//
// Returns:
//   - CameraControllerOption: functional option to set the orientation
func WithOrientation(yaw, pitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw = yaw
		cc.pitch = pitch
	}
}

// WithMouseSensitivity sets the degrees turned per pixel of mouse movement.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithMoveSpeed sets the walking speed in units per second.
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithEyeHeight sets how far above the ground the eye rests.
func WithEyeHeight(height float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.eyeHeight = height
	}
}

// WithJump sets the jump behaviour. A jump sets the vertical velocity to impulse*dt units per
// step and every step removes gravity*dt from it.
//
// Parameters:
//   - impulse: jump impulse
//   - gravity: downward pull
//
// Returns:
//   - CameraControllerOption: functional option to set the jump
func WithJump(impulse, gravity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.jumpImpulse = impulse
		cc.gravity = gravity
	}
}
