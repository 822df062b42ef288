package entity

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer"
)

type heldKeys map[uint32]bool

func (k heldKeys) IsDown(keyCode uint32) bool { return k[keyCode] }

// drawRecorder records the calls Entity.Draw makes; every other Renderer method is unused.
type drawRecorder struct {
	renderer.Renderer

	textures []renderer.Sampleable
	meshes   []*renderer.Mesh
	poses    [][2]common.Vector3
	scales   []float32
}

func (d *drawRecorder) SetDiffuseTexture(t renderer.Sampleable) {
	d.textures = append(d.textures, t)
}

func (d *drawRecorder) DrawMesh(m *renderer.Mesh, position, rotation common.Vector3, scale float32) {
	d.meshes = append(d.meshes, m)
	d.poses = append(d.poses, [2]common.Vector3{position, rotation})
	d.scales = append(d.scales, scale)
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func nearVector(a, b common.Vector3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestEntityDefaults(t *testing.T) {
	a := NewEntity()
	b := NewEntity(WithID(42), WithScale(2), WithEnabled(false))

	if a.ID() == 0 || a.Scale() != 1 || !a.Enabled() {
		t.Errorf("got id %d scale %v enabled %v", a.ID(), a.Scale(), a.Enabled())
	}
	if b.ID() != 42 || b.Scale() != 2 || b.Enabled() {
		t.Errorf("options not applied: id %d scale %v enabled %v", b.ID(), b.Scale(), b.Enabled())
	}
}

func TestEntityDraw(t *testing.T) {
	tex := &renderer.SampledTexture{}
	mesh := &renderer.Mesh{Name: "stall", Texture: tex}
	e := NewEntity(
		WithMesh(mesh),
		WithPosition(common.Vector3{X: 1, Y: 2, Z: 3}),
		WithRotation(common.Vector3{Y: 45}),
		WithScale(0.5),
	)

	d := &drawRecorder{}
	e.Draw(d)

	if len(d.textures) != 1 || d.textures[0] != tex {
		t.Errorf("got textures %v, want the mesh texture", d.textures)
	}
	if len(d.meshes) != 1 || d.meshes[0] != mesh {
		t.Fatalf("got %d mesh draws, want 1", len(d.meshes))
	}
	if d.poses[0][0] != (common.Vector3{X: 1, Y: 2, Z: 3}) || d.poses[0][1] != (common.Vector3{Y: 45}) || d.scales[0] != 0.5 {
		t.Errorf("got pose %v scale %v", d.poses[0], d.scales[0])
	}
}

func TestEntityDrawSkips(t *testing.T) {
	d := &drawRecorder{}

	NewEntity().Draw(d)
	NewEntity(WithMesh(&renderer.Mesh{}), WithEnabled(false)).Draw(d)
	if len(d.meshes) != 0 {
		t.Errorf("got %d draws, want 0", len(d.meshes))
	}

	// a mesh without a texture keeps whatever texture is bound
	NewEntity(WithMesh(&renderer.Mesh{})).Draw(d)
	if len(d.meshes) != 1 || len(d.textures) != 0 {
		t.Errorf("got %d draws and %d texture binds, want 1 and 0", len(d.meshes), len(d.textures))
	}
}

func TestGuyRunning(t *testing.T) {
	tests := []struct {
		name    string
		keys    heldKeys
		dt      float32
		wantPos common.Vector3
		wantRot float32
	}{
		{"forward", heldKeys{common.KeyW: true}, 1, common.Vector3{Z: -20}, 0},
		{"back", heldKeys{common.KeyS: true}, 1, common.Vector3{Z: 20}, 0},
		{"turn left", heldKeys{common.KeyA: true}, 0.5, common.Vector3{}, 80},
		{"turn right", heldKeys{common.KeyD: true}, 0.5, common.Vector3{}, -80},
		{"turn then run", heldKeys{common.KeyW: true, common.KeyA: true}, 0.5625, common.Vector3{X: -11.25}, 90},
		{"idle", heldKeys{}, 1, common.Vector3{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuy()
			g.Update(tt.keys, tt.dt)
			if got := g.Position(); !nearVector(got, tt.wantPos) {
				t.Errorf("got position %v, want %v", got, tt.wantPos)
			}
			if got := g.Rotation().Y; !near(got, tt.wantRot) {
				t.Errorf("got heading %v, want %v", got, tt.wantRot)
			}
			if g.InAir() {
				t.Errorf("guy left the ground without jumping")
			}
		})
	}
}

func TestGuyJump(t *testing.T) {
	g := NewGuy(WithPosition(common.Vector3{Z: -50}))
	jump := heldKeys{common.KeySpace: true}

	g.Update(jump, 0.1)
	if !g.InAir() {
		t.Fatalf("guy did not jump")
	}
	if got := g.Position().Y; !near(got, 2.5) {
		t.Errorf("got height %v, want 2.5", got)
	}

	g.Update(nil, 0.1)
	if got := g.Position().Y; !near(got, 4.5) {
		t.Errorf("got height %v, want 4.5", got)
	}

	// no second jump while airborne
	g.Update(jump, 0.1)
	if got := g.Position().Y; !near(got, 6) {
		t.Errorf("got height %v, want 6", got)
	}

	g.Update(nil, 1)
	if g.InAir() || g.Position().Y != 0 {
		t.Errorf("got in air %v height %v after landing, want false 0", g.InAir(), g.Position().Y)
	}
	if g.Position().Z != -50 {
		t.Errorf("got z %v, want -50", g.Position().Z)
	}
}
