package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

type heldKeys map[uint32]bool

func (k heldKeys) IsDown(keyCode uint32) bool { return k[keyCode] }

type flatGround float32

func (g flatGround) GroundHeight(common.Vector3) float32 { return float32(g) }

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func nearVector(a, b common.Vector3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestDefaultControllerLooksDownNegativeZ(t *testing.T) {
	cc := NewCameraController()
	if got, want := cc.Target(), (common.Vector3{Z: -1}); !nearVector(got, want) {
		t.Errorf("got target %v, want %v", got, want)
	}
	if cc.OnGround() {
		t.Errorf("new controller reports on ground")
	}
}

func TestWalking(t *testing.T) {
	tests := []struct {
		name string
		keys heldKeys
		want common.Vector3
	}{
		{"forward", heldKeys{common.KeyW: true}, common.Vector3{Y: 3, Z: -12.5}},
		{"back", heldKeys{common.KeyS: true}, common.Vector3{Y: 3, Z: 12.5}},
		{"left", heldKeys{common.KeyA: true}, common.Vector3{X: -12.5, Y: 3}},
		{"right", heldKeys{common.KeyD: true}, common.Vector3{X: 12.5, Y: 3}},
		{"forward wins over back", heldKeys{common.KeyW: true, common.KeyS: true}, common.Vector3{Y: 3, Z: -12.5}},
		{"idle", heldKeys{}, common.Vector3{Y: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := NewCameraController()
			cc.Update(tt.keys, 0, 0, 1, nil)
			if got := cc.Position(); !nearVector(got, tt.want) {
				t.Errorf("got position %v, want %v", got, tt.want)
			}
			if !cc.OnGround() {
				t.Errorf("controller not clamped to the ground")
			}
		})
	}
}

func TestWalkingKeepsHeightWhileLookingUp(t *testing.T) {
	cc := NewCameraController(WithPosition(common.Vector3{Y: 3}), WithOrientation(-90, 60))
	cc.Update(heldKeys{}, 0, 0, 0.01, nil)
	cc.Update(heldKeys{common.KeyW: true}, 0, 0, 1, nil)

	got := cc.Position()
	if !near(got.Y, 3) {
		t.Errorf("got height %v, want 3", got.Y)
	}
	if !near(got.Z, -12.5) {
		t.Errorf("got z %v, want -12.5", got.Z)
	}
}

func TestMouseLook(t *testing.T) {
	cc := NewCameraController()

	cc.Update(nil, 900, 0, 0, nil)
	if !near(cc.Yaw(), 0) {
		t.Errorf("got yaw %v, want 0", cc.Yaw())
	}
	if got, want := cc.Target(), (common.Vector3{X: 1}); !nearVector(got, want) {
		t.Errorf("got target %v, want %v", got, want)
	}

	// moving the mouse up looks up
	cc.Update(nil, 0, -300, 0, nil)
	if !near(cc.Pitch(), 30) {
		t.Errorf("got pitch %v, want 30", cc.Pitch())
	}
	if cc.Target().Y <= 0 {
		t.Errorf("got target %v, want a positive y", cc.Target())
	}
}

func TestPitchClamp(t *testing.T) {
	cc := NewCameraController()
	cc.Update(nil, 0, -10000, 0, nil)
	if cc.Pitch() != 89 {
		t.Errorf("got pitch %v, want 89", cc.Pitch())
	}
	cc.Update(nil, 0, 10000, 0, nil)
	if cc.Pitch() != -89 {
		t.Errorf("got pitch %v, want -89", cc.Pitch())
	}

	cc.SetOrientation(0, 120)
	if cc.Pitch() != 89 {
		t.Errorf("got pitch %v after SetOrientation, want 89", cc.Pitch())
	}
}

func TestJump(t *testing.T) {
	cc := NewCameraController()
	jump := heldKeys{common.KeySpace: true}

	// airborne controllers cannot jump
	cc.Update(jump, 0, 0, 0.1, nil)
	if got := cc.Position().Y; !near(got, 3) {
		t.Fatalf("got height %v before the jump, want 3", got)
	}

	cc.Update(jump, 0, 0, 0.1, nil)
	if cc.OnGround() {
		t.Errorf("controller still on ground after jumping")
	}
	if got := cc.Position().Y; !near(got, 7.9) {
		t.Errorf("got height %v, want 7.9", got)
	}

	// holding space in the air does not jump again
	cc.Update(jump, 0, 0, 0.1, nil)
	if got := cc.Position().Y; !near(got, 12.7) {
		t.Errorf("got height %v, want 12.7", got)
	}
}

func TestGroundClamp(t *testing.T) {
	cc := NewCameraController()
	cc.Update(nil, 0, 0, 0.016, flatGround(10))
	if got := cc.Position().Y; !near(got, 13) {
		t.Errorf("got height %v, want 13", got)
	}

	cc.SetPosition(common.Vector3{Y: 50})
	cc.Update(nil, 0, 0, 0.016, flatGround(10))
	if cc.OnGround() {
		t.Errorf("controller high above the ground reports on ground")
	}
}

func TestCameraViewMatrix(t *testing.T) {
	cc := NewCameraController(WithPosition(common.Vector3{Y: 3}))
	c := NewCamera(WithController(cc))

	got := c.ViewMatrix().MulVector3(common.Vector3{Y: 3, Z: -5})
	if want := (common.Vector3{Z: -5}); !nearVector(got, want) {
		t.Errorf("got view-space point %v, want %v", got, want)
	}

	cc.SetPosition(common.Vector3{X: 10, Y: 3})
	c.Update()
	got = c.ViewMatrix().MulVector3(common.Vector3{X: 10, Y: 3, Z: -5})
	if want := (common.Vector3{Z: -5}); !nearVector(got, want) {
		t.Errorf("got view-space point %v after moving, want %v", got, want)
	}
}

func TestCameraProjection(t *testing.T) {
	c := NewCamera()
	if !near(c.Fov(), float32(70*math.Pi/180)) || c.Near() != 0.1 || c.Far() != 1000 {
		t.Errorf("got fov %v near %v far %v", c.Fov(), c.Near(), c.Far())
	}

	p := c.ProjectionMatrix(2)
	if !near(p[1][1], 2*p[0][0]) {
		t.Errorf("aspect not applied: m00 %v m11 %v", p[0][0], p[1][1])
	}
	if got := p.MulVector3(common.Vector3{Z: -0.1}).Z; !near(got, 0) {
		t.Errorf("near plane maps to depth %v, want 0", got)
	}
}

func TestCameraOptions(t *testing.T) {
	tests := []struct {
		name     string
		options  []CameraBuilderOption
		wantFov  float32
		wantNear float32
		wantFar  float32
	}{
		{"defaults", nil, 70, 0.1, 1000},
		{"custom", []CameraBuilderOption{WithFovDegrees(90), WithClipPlanes(1, 500)}, 90, 1, 500},
		{"invalid ignored", []CameraBuilderOption{WithFovDegrees(180), WithClipPlanes(5, 2)}, 70, 0.1, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(tt.options...)
			if !near(c.Fov(), tt.wantFov*math.Pi/180) || c.Near() != tt.wantNear || c.Far() != tt.wantFar {
				t.Errorf("got fov %v near %v far %v", c.Fov(), c.Near(), c.Far())
			}
		})
	}
}
