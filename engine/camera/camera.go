package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up common.Vector3

	fov  float32
	near float32
	far  float32

	viewMatrix common.Matrix4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes the view matrix from an attached
// CameraController each frame via Update(). The projection depends on the render target, so it
// is built on demand for a given aspect ratio.
type Camera interface {
	// Up returns the camera's up vector.
	Up() common.Vector3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the world to view matrix computed by the last Update.
	//
	// Returns:
	//   - common.Matrix4: the row-major view matrix
	ViewMatrix() common.Matrix4

	// ProjectionMatrix builds the view to projection matrix for a render target.
	//
	// Parameters:
	//   - aspect: render target width divided by height
	//
	// Returns:
	//   - common.Matrix4: the row-major projection matrix
	ProjectionMatrix(aspect float32) common.Matrix4

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position and look direction from the controller and recomputes the view
	// matrix. If no controller is attached, this method does nothing.
	Update()

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: up vector
	SetUp(up common.Vector3)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// SetController attaches a CameraController to the camera and recomputes the view matrix.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the game's perspective settings: 70 degree vertical field
// of view, near plane 0.1 and far plane 1000.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		up:         common.Vector3{Y: 1},
		fov:        70.0 * (math.Pi / 180.0),
		near:       0.1,
		far:        1000.0,
		viewMatrix: common.Identity4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.updateMatrices()
	}
	return c
}

func (c *cameraImpl) Up() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix(aspect float32) common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		aspect = 1
	}
	return common.Perspective(aspect, c.fov, c.near, c.far)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up common.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recomputes the view matrix from the controller's eye and look direction.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}
	eye := c.controller.Position()
	c.viewMatrix = common.LookAt(eye, eye.Add(c.controller.Target()), c.up)
}
