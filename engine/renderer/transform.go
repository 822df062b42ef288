package renderer

import (
	"github.com/Carmen-Shannon/tm3d-go/common"
)

// TransformSize is the byte size of the transform block uploaded to shaders.
const TransformSize = 4 * 16 * 4

// Transform is the renderer's matrix state. ObjectToProj is derived by RefreshTransform.
type Transform struct {
	ViewToProj    common.Matrix4
	WorldToView   common.Matrix4
	ObjectToWorld common.Matrix4
	ObjectToProj  common.Matrix4
}

// identityTransform returns a transform with all four matrices set to identity.
func identityTransform() Transform {
	return Transform{
		ViewToProj:    common.Identity4(),
		WorldToView:   common.Identity4(),
		ObjectToWorld: common.Identity4(),
		ObjectToProj:  common.Identity4(),
	}
}

// Bytes returns the transform block in upload order (view to proj, world to view, object to world,
// object to proj). Each matrix is transposed so shaders reading column-major data see the
// row-major matrix.
//
// Returns:
//   - []byte: TransformSize bytes
func (t Transform) Bytes() []byte {
	block := []common.Matrix4{
		t.ViewToProj.Transpose(),
		t.WorldToView.Transpose(),
		t.ObjectToWorld.Transpose(),
		t.ObjectToProj.Transpose(),
	}
	return common.SliceToBytes(block)
}

func (r *renderer) Transform() Transform {
	return r.transform
}

func (r *renderer) SetViewToProj(m common.Matrix4) {
	r.transform.ViewToProj = m
}

func (r *renderer) SetWorldToView(m common.Matrix4) {
	r.transform.WorldToView = m
}

func (r *renderer) SetObjectToWorld(m common.Matrix4) {
	r.transform.ObjectToWorld = m
}

func (r *renderer) RefreshTransform() {
	r.ImmediateFlush()

	t := &r.transform
	t.ObjectToProj = t.ViewToProj.Mul(t.WorldToView.Mul(t.ObjectToWorld))

	if r.activeShader == nil {
		r.transformDirty = true
		return
	}
	r.pushTransform()
}

func (r *renderer) Rendering2DRightHanded() {
	r.transform.ViewToProj = common.Orthographic2D(float32(r.renderTargetWidth), float32(r.renderTargetHeight))
	r.transform.WorldToView = common.Identity4()
	r.transform.ObjectToWorld = common.Identity4()
	r.RefreshTransform()
}

// pushTransform uploads the current transform block and clears the dirty mark.
func (r *renderer) pushTransform() {
	r.backend.WriteTransform(r.transform.Bytes())
	r.transformDirty = false
	r.stats.TransformWrites++
}
