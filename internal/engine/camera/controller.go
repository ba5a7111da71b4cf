package camera

import (
	"github.com/Faultbox/surfview/pkg/math"
)

// Controller routes raw window events to the pointer, orbit and
// projection state. A drag means "pan" while the modifier key is held
// and "rotate" otherwise. All coordinate conversion failures are
// returned to the caller, which logs them and skips the event.
type Controller struct {
	Pointer    *PointerState
	Orbit      *OrbitTransform
	Projection *PanZoomProjection

	panModifier bool
	width       int
	height      int
}

// NewController builds a controller with freshly constructed camera
// state for the given viewport size.
func NewController(width, height int) *Controller {
	c := &Controller{
		Pointer:    NewPointerState(),
		Orbit:      NewOrbitTransform(),
		Projection: NewPanZoomProjection(),
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport records the viewport size and re-fits the projection's
// aspect ratio. Called on window resize.
func (c *Controller) SetViewport(width, height int) {
	c.width = width
	c.height = height
	if height > 0 {
		c.Projection.SetAspectRatio(float32(width) / float32(height))
	}
}

// SetPanModifier toggles between pan and rotate for subsequent drags.
func (c *Controller) SetPanModifier(held bool) {
	c.panModifier = held
}

// PointerMoved updates the pointer position and, during an active drag,
// the orbit rotation or pan offset.
func (c *Controller) PointerMoved(x, y float64) error {
	c.Pointer.RegisterMove(x, y)
	if !c.Pointer.LeftButtonDown() {
		return nil
	}
	pos, err := c.Pointer.DeviceCoordinates(c.width, c.height)
	if err != nil {
		return err
	}
	if !IsInsideViewport(pos) {
		return nil
	}
	if c.panModifier {
		c.Projection.UpdatePan(pos)
	} else {
		c.Orbit.UpdateDrag(pos)
	}
	return nil
}

// ButtonChanged updates button state and anchors a new drag when the
// primary button goes down.
func (c *Controller) ButtonChanged(button Button, pressed bool) error {
	c.Pointer.RegisterButton(button, pressed)
	if button != ButtonLeft || !pressed {
		return nil
	}
	pos, err := c.Pointer.DeviceCoordinates(c.width, c.height)
	if err != nil {
		return err
	}
	if c.panModifier {
		c.Projection.BeginPan(pos)
	} else {
		c.Orbit.BeginDrag(pos)
	}
	return nil
}

// Scrolled applies a wheel delta and pushes the new zoom factor into
// the projection.
func (c *Controller) Scrolled(delta float32) {
	c.Pointer.RegisterScroll(delta)
	c.Projection.SetZoom(c.Pointer.ZoomFactor())
}

// Rotation returns the current orbit rotation matrix.
func (c *Controller) Rotation() math.Mat4 {
	return c.Orbit.Current()
}

// ProjectionMatrix returns the current orthographic projection matrix.
func (c *Controller) ProjectionMatrix() math.Mat4 {
	return c.Projection.Matrix()
}

// Reset restores both the orbit orientation and the projection volume
// to their defaults ("back to origin").
func (c *Controller) Reset() {
	c.Orbit.Reset()
	c.Projection.Reset()
}
