package camera

import (
	"github.com/Faultbox/surfview/pkg/math"
)

// dragSensitivity converts the length of the drag axis into degrees.
// Empirical: a drag across the full viewport sweeps a large angle,
// uncapped.
const dragSensitivity = 100.0

// OrbitTransform accumulates an arcball-style rotation matrix from
// pointer drags. The rotation axis is the cross product of the drag
// start and current NDC vectors (with a fixed synthetic Z of 1), and
// every update composes against the snapshot taken at drag start, so
// rapid small move events cannot drift.
type OrbitTransform struct {
	current      math.Mat4
	dragStart    math.Mat4
	dragStartNDC math.Vec3
}

// NewOrbitTransform returns a transform with the default oblique tilt
// so the surface is not viewed edge-on.
func NewOrbitTransform() *OrbitTransform {
	tilt := defaultTilt()
	return &OrbitTransform{
		current:      tilt,
		dragStart:    tilt,
		dragStartNDC: math.Vec3{X: 0.5, Y: 0.5, Z: 1},
	}
}

func defaultTilt() math.Mat4 {
	return math.RotateAxisDeg(math.Vec3{Y: 1}, 45).
		Mul(math.RotateAxisDeg(math.Vec3{X: 1}, 240))
}

// Current returns the accumulated rotation matrix.
func (o *OrbitTransform) Current() math.Mat4 {
	return o.current
}

// BeginDrag snapshots the rotation and the drag anchor position.
func (o *OrbitTransform) BeginDrag(pos math.Vec2) {
	o.dragStart = o.current
	o.dragStartNDC = math.Vec3{X: pos.X, Y: pos.Y, Z: 1}
}

// UpdateDrag rotates relative to the drag anchor. The caller gates this
// on the primary button being held and the pointer being inside the
// viewport. A zero-length axis (no movement, or movement collinear with
// the synthetic Z) yields the identity rotation.
func (o *OrbitTransform) UpdateDrag(pos math.Vec2) {
	cur := math.Vec3{X: pos.X, Y: pos.Y, Z: 1}
	axis := o.dragStartNDC.Cross(cur)
	rot := math.RotateAxisDeg(axis, axis.Length()*dragSensitivity)
	o.current = rot.Mul(o.dragStart)
}

// Reset restores the default tilted orientation.
func (o *OrbitTransform) Reset() {
	tilt := defaultTilt()
	o.current = tilt
	o.dragStart = tilt
}
