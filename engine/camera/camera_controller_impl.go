package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

const maxPitch = 89.0

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vector3
	target   common.Vector3

	// Orientation in degrees
	yaw   float32
	pitch float32

	onGround     bool
	jumpVelocity float32

	mouseSensitivity float32
	moveSpeed        float32
	eyeHeight        float32
	jumpImpulse      float32
	gravity          float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a first-person controller at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:  &sync.Mutex{},
		yaw: -90,

		mouseSensitivity: 0.1,
		moveSpeed:        12.5,
		eyeHeight:        3.0,
		jumpImpulse:      50.0,
		gravity:          1.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.pitch = common.Clamp(cc.pitch, -maxPitch, maxPitch)
	cc.target = lookDirection(cc.yaw, cc.pitch)
	return cc
}

// --- internal helpers ---

// lookDirection returns the unit vector for a heading and elevation in degrees.
func lookDirection(yaw, pitch float32) common.Vector3 {
	return horizontalDirection(yaw, pitch).Add(common.Vector3{Y: sinDegrees(pitch)}).NormalizeOrZero()
}

// horizontalDirection is the look direction with its vertical component dropped, unnormalised.
func horizontalDirection(yaw, pitch float32) common.Vector3 {
	cp := cosDegrees(pitch)
	return common.Vector3{X: cosDegrees(yaw) * cp, Z: sinDegrees(yaw) * cp}
}

func sinDegrees(deg float32) float32 {
	return float32(math.Sin(float64(common.DegreesToRadians(deg))))
}

func cosDegrees(deg float32) float32 {
	return float32(math.Cos(float64(common.DegreesToRadians(deg))))
}

// --- CameraController ---

func (cc *cameraControllerImpl) Position() common.Vector3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(position common.Vector3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
	cc.onGround = false
	cc.jumpVelocity = 0
}

func (cc *cameraControllerImpl) Target() common.Vector3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) SetOrientation(yaw, pitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw = yaw
	cc.pitch = common.Clamp(pitch, -maxPitch, maxPitch)
	cc.target = lookDirection(cc.yaw, cc.pitch)
}

func (cc *cameraControllerImpl) OnGround() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.onGround
}

func (cc *cameraControllerImpl) Update(keys Keys, dx, dy, dt float32, ground Ground) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.yaw += dx * cc.mouseSensitivity
	cc.pitch = common.Clamp(cc.pitch-dy*cc.mouseSensitivity, -maxPitch, maxPitch)

	// strafing uses the direction from the previous step
	right := cc.target.Cross(common.Vector3{Y: 1}).NormalizeOrZero()
	forward := horizontalDirection(cc.yaw, cc.pitch).NormalizeOrZero()
	step := cc.moveSpeed * dt
	oldY := cc.position.Y

	if keys != nil {
		if keys.IsDown(common.KeyW) {
			cc.position = cc.position.Add(forward.Scale(step))
		} else if keys.IsDown(common.KeyS) {
			cc.position = cc.position.Sub(forward.Scale(step))
		}

		if keys.IsDown(common.KeyA) {
			cc.position = cc.position.Sub(right.Scale(step))
		} else if keys.IsDown(common.KeyD) {
			cc.position = cc.position.Add(right.Scale(step))
		}
	}
	cc.position.Y = oldY
	cc.target = lookDirection(cc.yaw, cc.pitch)

	if keys != nil && keys.IsDown(common.KeySpace) && cc.onGround {
		cc.jumpVelocity = cc.jumpImpulse * dt
		cc.onGround = false
	}
	cc.jumpVelocity -= cc.gravity * dt
	cc.position.Y += cc.jumpVelocity

	var floor float32
	if ground != nil {
		floor = ground.GroundHeight(cc.position)
	}
	floor += cc.eyeHeight
	if cc.position.Y < floor {
		cc.position.Y = floor
		cc.onGround = true
		cc.jumpVelocity = 0
	}
}
