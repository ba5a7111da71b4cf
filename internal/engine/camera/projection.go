package camera

import (
	"github.com/Faultbox/surfview/pkg/math"
)

// Z half-extent of the orthographic view volume. Kept at 1 to match a
// less-equal depth test over the normalized height range.
const (
	zMin = float32(-1)
	zMax = float32(1)
)

// PanZoomProjection maintains an orthographic view volume whose center
// offset (pan) and half-extent (zoom) follow pointer drags and the
// scroll wheel. The projection matrix is derived fresh on every query
// and re-fit to the viewport aspect ratio, stretching the short axis so
// the data is never cropped.
type PanZoomProjection struct {
	panStartNDC    math.Vec2
	panStartOffset math.Vec2
	pan            math.Vec2
	zoom           float32
	aspectRatio    float32
}

// NewPanZoomProjection returns a projection centered on the origin with
// the default zoom.
func NewPanZoomProjection() *PanZoomProjection {
	return &PanZoomProjection{
		zoom:        defaultZoomFactor,
		aspectRatio: 1,
	}
}

// BeginPan snapshots the pan anchor.
func (p *PanZoomProjection) BeginPan(pos math.Vec2) {
	p.panStartNDC = pos
	p.panStartOffset = p.pan
}

// UpdatePan moves the view volume relative to the pan anchor, the same
// anchor-relative pattern as the orbit drag.
func (p *PanZoomProjection) UpdatePan(pos math.Vec2) {
	p.pan = pos.Sub(p.panStartNDC).Add(p.panStartOffset)
}

// SetZoom assigns the view volume half-extent, driven by the pointer's
// zoom factor.
func (p *PanZoomProjection) SetZoom(factor float32) {
	p.zoom = factor
}

// SetAspectRatio stores the viewport width/height ratio for matrix
// derivation.
func (p *PanZoomProjection) SetAspectRatio(ratio float32) {
	p.aspectRatio = ratio
}

// Matrix derives the orthographic projection for the current pan, zoom
// and aspect ratio. Whichever of the X or Y extents is too small for
// the aspect ratio is stretched, never cropped.
func (p *PanZoomProjection) Matrix() math.Mat4 {
	xMin := -p.zoom - p.pan.X
	xMax := p.zoom - p.pan.X
	yMin := -p.zoom - p.pan.Y
	yMax := p.zoom - p.pan.Y

	dx := xMax - xMin
	dy := yMax - yMin
	dz := zMax - zMin
	if dx <= p.aspectRatio*dy {
		dx = dy * p.aspectRatio
	} else {
		dy = dx / p.aspectRatio
	}

	return math.Mat4{
		2 / dx, 0, 0, 0,
		0, 2 / dy, 0, 0,
		0, 0, 1 / dz, 0,
		-(xMax + xMin) / dx, -(yMax + yMin) / dy, -zMin / dz, 1,
	}
}

// Reset clears the pan offset and restores the default zoom.
func (p *PanZoomProjection) Reset() {
	p.pan = math.Vec2{}
	p.zoom = defaultZoomFactor
}
