package viewer

import (
	"github.com/Faultbox/surfview/internal/engine/surface"
)

// Command is a control message applied between frames. External callers
// send commands through Commands(); the loop drains the channel at the
// start of every frame, so a command never interleaves with a draw.
type Command interface {
	isCommand()
}

// SetSurface replaces the height field and its amplitude companion.
type SetSurface struct {
	Height    *surface.Field
	Amplitude *surface.Field
}

// SetAmplitude replaces only the amplitude field.
type SetAmplitude struct {
	Amplitude *surface.Field
}

// SetHeightShader switches to the height colormap program.
type SetHeightShader struct{}

// SetAmplitudeShader switches to the amplitude grayscale program.
type SetAmplitudeShader struct{}

// SetOverlays installs highlight overlays over the surface.
type SetOverlays struct {
	Overlays []surface.Overlay
}

// ClearOverlays removes all overlays.
type ClearOverlays struct{}

// BackToOrigin resets the orbit orientation, pan and zoom.
type BackToOrigin struct{}

// GetPixel requests the pick result under the cursor. The reply channel
// receives exactly one PixelResult; buffer it with capacity 1 to avoid
// blocking the frame loop.
type GetPixel struct {
	Reply chan PixelResult
}

// PixelResult is the outcome of a pick request.
type PixelResult struct {
	X     float32
	Y     float32
	Value float32
	Err   error
}

func (SetSurface) isCommand()         {}
func (SetAmplitude) isCommand()       {}
func (SetHeightShader) isCommand()    {}
func (SetAmplitudeShader) isCommand() {}
func (SetOverlays) isCommand()        {}
func (ClearOverlays) isCommand()      {}
func (BackToOrigin) isCommand()       {}
func (GetPixel) isCommand()           {}
