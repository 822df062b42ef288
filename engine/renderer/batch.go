package renderer

import (
	"github.com/Carmen-Shannon/tm3d-go/common"
)

// MaxImmediateVertices is the fixed capacity of the immediate batch. The batch is never
// reallocated; reaching the capacity forces a flush.
const MaxImmediateVertices = 2400

// ImmediateVertex is one batched vertex: position, packed ABGR colour and texture coordinate.
// The layout is 24 bytes and matches the immediate vertex buffer layout.
type ImmediateVertex struct {
	Position common.Vector3
	Color    uint32
	UV       common.Vector2
}

// default texture coordinates of a quad's corners p0..p3.
var (
	quadUV0 = common.Vector2{X: 0, Y: 0}
	quadUV1 = common.Vector2{X: 1, Y: 0}
	quadUV2 = common.Vector2{X: 1, Y: 1}
	quadUV3 = common.Vector2{X: 0, Y: 1}
)

func (r *renderer) ImmediateBegin() {
	r.ImmediateFlush()
}

func (r *renderer) ImmediateFlush() {
	if r.immediateCount == 0 {
		return
	}
	count := r.immediateCount
	r.immediateCount = 0

	if r.activeShader == nil {
		r.log.Warn("dropping immediate batch with no active shader", "vertices", count)
		return
	}
	r.backend.DrawImmediate(common.SliceToBytes(r.immediate[:count]), count)
	r.stats.DrawCalls++
	r.stats.Vertices += count
}

func (r *renderer) ImmediateVertex(position common.Vector3, color uint32, uv common.Vector2) {
	if r.immediateCount >= MaxImmediateVertices {
		r.ImmediateFlush()
	}
	r.immediate[r.immediateCount] = ImmediateVertex{Position: position, Color: color, UV: uv}
	r.immediateCount++
}

func (r *renderer) ImmediateQuadUV(p0, p1, p2, p3 common.Vector3, uv0, uv1, uv2, uv3 common.Vector2, color common.Vector4) {
	if r.immediateCount+6 > MaxImmediateVertices {
		r.ImmediateFlush()
	}
	c := common.PackABGR(color)

	r.ImmediateVertex(p0, c, uv0)
	r.ImmediateVertex(p1, c, uv1)
	r.ImmediateVertex(p2, c, uv2)

	r.ImmediateVertex(p0, c, uv0)
	r.ImmediateVertex(p2, c, uv2)
	r.ImmediateVertex(p3, c, uv3)
}

func (r *renderer) ImmediateQuad(p0, p1, p2, p3 common.Vector3, color common.Vector4) {
	r.ImmediateQuadUV(p0, p1, p2, p3, quadUV0, quadUV1, quadUV2, quadUV3, color)
}

func (r *renderer) ImmediateQuad2DUV(p0, p1, p2, p3 common.Vector2, uv0, uv1, uv2, uv3 common.Vector2, color common.Vector4) {
	r.ImmediateQuadUV(flat(p0), flat(p1), flat(p2), flat(p3), uv0, uv1, uv2, uv3, color)
}

func (r *renderer) ImmediateQuad2D(p0, p1, p2, p3 common.Vector2, color common.Vector4) {
	r.ImmediateQuadUV(flat(p0), flat(p1), flat(p2), flat(p3), quadUV0, quadUV1, quadUV2, quadUV3, color)
}

func (r *renderer) ImmediateCount() int {
	return r.immediateCount
}

// flat lifts a 2D point onto the z = 0 plane.
func flat(p common.Vector2) common.Vector3 {
	return common.Vector3{X: p.X, Y: p.Y}
}
