// Package camera implements the viewer's interactive camera: pointer
// tracking, arcball-style orbit rotation and the pan/zoom orthographic
// projection, plus the controller that routes window events to them.
package camera

import (
	"errors"

	"github.com/Faultbox/surfview/pkg/math"
)

// ErrDegenerateViewport is returned when a viewport is too small to map
// pixel coordinates onto the device coordinate square. Callers should
// skip the interaction for that event; the error is never fatal.
var ErrDegenerateViewport = errors.New("viewport smaller than 2x2 pixels")

const (
	// scrollSensitivity scales wheel deltas into zoom factor changes.
	scrollSensitivity = 0.1
	// minScrollStep bounds a single wheel step so the multiplicative
	// zoom update can never zero out or flip sign.
	minScrollStep = 0.01
	// minZoomFactor keeps the accumulated factor away from float32
	// underflow on very long zoom-in sequences.
	minZoomFactor = 1e-6
	// defaultZoomFactor is the half-extent of the untouched view volume.
	defaultZoomFactor = 2.0
)

// PointerState tracks the raw pointer position, the primary button and
// the scroll-derived zoom factor. One instance lives for the whole
// viewer session.
type PointerState struct {
	x, y       float64
	leftDown   bool
	zoomFactor float32
}

// NewPointerState returns a pointer state with the default zoom factor.
func NewPointerState() *PointerState {
	return &PointerState{zoomFactor: defaultZoomFactor}
}

// RegisterMove stores the pointer position in window pixels.
// Sub-pixel precision is preserved.
func (p *PointerState) RegisterMove(x, y float64) {
	p.x, p.y = x, y
}

// Position returns the last known pointer position in window pixels.
func (p *PointerState) Position() (x, y float64) {
	return p.x, p.y
}

// RegisterButton updates the primary button state. Other buttons are
// ignored.
func (p *PointerState) RegisterButton(button Button, pressed bool) {
	if button == ButtonLeft {
		p.leftDown = pressed
	}
}

// LeftButtonDown reports whether the primary button is held.
func (p *PointerState) LeftButtonDown() bool {
	return p.leftDown
}

// RegisterScroll applies a wheel delta to the zoom factor. The update
// is multiplicative, so the factor stays strictly positive no matter
// how far the user scrolls.
func (p *PointerState) RegisterScroll(delta float32) {
	step := 1 - scrollSensitivity*delta
	if step < minScrollStep {
		step = minScrollStep
	}
	p.zoomFactor *= step
	if p.zoomFactor < minZoomFactor {
		p.zoomFactor = minZoomFactor
	}
}

// ZoomFactor returns the accumulated zoom factor. Always > 0.
func (p *PointerState) ZoomFactor() float32 {
	return p.zoomFactor
}

// DeviceCoordinates maps the current pointer position into normalized
// device coordinates, [-1,1] on both axes with Y up. Returns
// ErrDegenerateViewport for viewports with fewer than 2 pixels in a
// dimension.
func (p *PointerState) DeviceCoordinates(width, height int) (math.Vec2, error) {
	if width <= 1 || height <= 1 {
		return math.Vec2{}, ErrDegenerateViewport
	}
	x := float32(2*p.x/float64(width-1) - 1)
	y := float32(1 - 2*p.y/float64(height-1))
	return math.Vec2{X: x, Y: y}, nil
}

// IsInsideViewport reports whether an NDC position lies on the visible
// device coordinate square.
func IsInsideViewport(pos math.Vec2) bool {
	return pos.X >= -1 && pos.X <= 1 && pos.Y >= -1 && pos.Y <= 1
}

// Button identifies a pointer button.
type Button int

// Pointer buttons. Only the left button drives camera interaction.
const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)
