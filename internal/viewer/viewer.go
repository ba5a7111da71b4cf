// Package viewer implements the interactive loop: window events drive
// the camera, every frame renders the surface and encodes the pick
// readback into the same submission, and a command channel lets other
// goroutines change what is displayed between frames.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/surfview/internal/config"
	"github.com/Faultbox/surfview/internal/engine/camera"
	"github.com/Faultbox/surfview/internal/engine/framebuffer"
	"github.com/Faultbox/surfview/internal/engine/gpu"
	"github.com/Faultbox/surfview/internal/engine/input"
	"github.com/Faultbox/surfview/internal/engine/picking"
	"github.com/Faultbox/surfview/internal/engine/renderer"
	"github.com/Faultbox/surfview/internal/engine/surface"
	"github.com/Faultbox/surfview/internal/engine/window"
	"github.com/Faultbox/surfview/internal/logger"
)

// Percentile bounds used to clip data outliers before display.
const (
	lowerClipPercentile = 2.0
	upperClipPercentile = 98.0
)

var errNoSurface = errors.New("surface not initialized")

// framebufferTarget is implemented by the GL pick target.
type framebufferTarget interface {
	Framebuffer() *framebuffer.Framebuffer
}

// Viewer is the main viewer instance.
type Viewer struct {
	config  *config.Config
	running bool

	window     *window.Window
	renderer   *renderer.Renderer
	input      *input.Input
	controller *camera.Controller

	device      *gpu.Device
	picker      *picking.IndexPicker
	valueReader *picking.ValueReader

	commands chan Command

	heightField *surface.Field
	overlaysOn  bool

	mouseX, mouseY int
	width, height  int
}

// New creates a new viewer instance.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("picking", cfg.Viewer.Picking),
	)

	v := &Viewer{
		config:   cfg,
		commands: make(chan Command, 16),
		width:    cfg.Graphics.Width,
		height:   cfg.Graphics.Height,
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      "Surfview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	v.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
		VSync:  cfg.Graphics.VSync,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.controller = camera.NewController(cfg.Graphics.Width, cfg.Graphics.Height)

	v.device = gpu.NewDevice()
	v.picker = picking.NewIndexPicker(v.device, cfg.Graphics.Width, cfg.Graphics.Height)
	if cfg.Viewer.Picking == config.PickingValue {
		v.valueReader = picking.NewValueReader(v.device)
	}

	logger.Info("viewer initialized successfully")
	return v, nil
}

// Commands returns the channel other goroutines send control messages
// through.
func (v *Viewer) Commands() chan<- Command {
	return v.commands
}

// Run starts the main viewer loop.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for v.running {
		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Apply queued commands
		v.drainCommands()

		// 3. Render and encode the pick copy into the same frame
		v.renderFrame()

		// 4. Present
		v.window.SwapBuffers()

		// 5. Resolve this frame's pick and report it
		v.reportPick()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.config.Viewer.ShowFPS {
				logger.Debug("fps", zap.Int("count", frameCount))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.width, v.height = event.Width, event.Height
			v.renderer.Resize(event.Width, event.Height)
			v.controller.SetViewport(event.Width, event.Height)
			v.picker.Resize(event.Width, event.Height)

		case input.EventMouseMove:
			v.mouseX, v.mouseY = event.MouseX, event.MouseY
			if err := v.controller.PointerMoved(float64(event.MouseX), float64(event.MouseY)); err != nil {
				logger.Debug("pointer move skipped", zap.Error(err))
			}

		case input.EventMouseDown, input.EventMouseUp:
			button, ok := mapButton(event.Button)
			if !ok {
				continue
			}
			v.mouseX, v.mouseY = event.MouseX, event.MouseY
			pressed := event.Type == input.EventMouseDown
			if err := v.controller.ButtonChanged(button, pressed); err != nil {
				logger.Debug("button change skipped", zap.Error(err))
			}

		case input.EventMouseWheel:
			v.controller.Scrolled(float32(event.WheelY))

		case input.EventKeyDown:
			v.handleKey(event.Key)

		case input.EventKeyUp:
			if event.Key == sdl.SCANCODE_LSHIFT || event.Key == sdl.SCANCODE_RSHIFT {
				v.controller.SetPanModifier(false)
			}
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false

	case sdl.SCANCODE_LSHIFT, sdl.SCANCODE_RSHIFT:
		v.controller.SetPanModifier(true)

	case sdl.SCANCODE_S:
		use := !v.renderer.HeightShaderActive()
		v.renderer.UseHeightShader(use)
		if use {
			logger.Info("setting height shader")
		} else {
			logger.Info("setting amplitude shader")
		}

	case sdl.SCANCODE_T:
		if v.overlaysOn {
			v.applyCommand(ClearOverlays{})
		} else {
			v.applyCommand(SetOverlays{Overlays: surface.ExampleOverlays()})
		}

	case sdl.SCANCODE_O:
		v.applyCommand(BackToOrigin{})
	}
}

func (v *Viewer) drainCommands() {
	for {
		select {
		case cmd := <-v.commands:
			v.applyCommand(cmd)
		default:
			return
		}
	}
}

func (v *Viewer) applyCommand(cmd Command) {
	switch c := cmd.(type) {
	case SetSurface:
		logger.Info("setting new surface")
		// Clip spikes so they neither eat the colormap nor distort
		// reported values.
		v.heightField = c.Height.OutlierClipped(lowerClipPercentile, upperClipPercentile)
		v.renderer.SetSurface(v.heightField, c.Amplitude)
		v.overlaysOn = false

	case SetAmplitude:
		logger.Info("setting new amplitude")
		v.renderer.SetAmplitude(c.Amplitude)

	case SetHeightShader:
		logger.Info("setting height shader")
		v.renderer.UseHeightShader(true)

	case SetAmplitudeShader:
		logger.Info("setting amplitude shader")
		v.renderer.UseHeightShader(false)

	case SetOverlays:
		logger.Info("setting overlays")
		v.renderer.SetOverlays(c.Overlays)
		v.overlaysOn = true

	case ClearOverlays:
		logger.Info("clearing overlays")
		v.renderer.ClearOverlays()
		v.overlaysOn = false

	case BackToOrigin:
		v.controller.Reset()

	case GetPixel:
		result := v.readPixel()
		select {
		case c.Reply <- result:
		default:
			logger.Warn("pixel reply channel full, dropping result")
		}
	}
}

func (v *Viewer) renderFrame() {
	v.renderer.SetZoomLevel(zoomBucket(v.controller.Pointer.ZoomFactor()))

	var cursor, output picking.Buffer
	if v.valueReader != nil {
		// gl_FragCoord has a bottom-left origin, the pointer a top-left
		// one.
		v.valueReader.UpdateCursor(float64(v.mouseX), float64(v.height-1-v.mouseY))
		cursor = v.valueReader.CursorBuffer()
		output = v.valueReader.OutputBuffer()
	}

	target := v.picker.Target().(framebufferTarget).Framebuffer()
	v.renderer.Draw(target, v.controller.Rotation(), v.controller.ProjectionMatrix(), cursor, output)

	// Encode the readback copy into the submission that just rendered.
	v.picker.SetCursor(float64(v.mouseX), float64(v.mouseY))
	if v.valueReader != nil {
		v.valueReader.EncodeCopy(v.device)
	} else {
		v.picker.EncodeCopy(v.device)
	}

	v.renderer.Present(target)
}

func (v *Viewer) reportPick() {
	if v.heightField == nil {
		return
	}
	result := v.readPixel()
	if result.Err != nil {
		logger.Error("pixel read failed", zap.Error(result.Err))
		return
	}
	logger.Sugar.Infof("Pixel at [%v/%v]=%.3f", result.X, result.Y, result.Value)
}

// readPixel resolves the pick for the frame just submitted. The value
// variant reads the record the fragment shader wrote; the index variant
// reads back the sample coordinate and looks the value up on the CPU.
func (v *Viewer) readPixel() PixelResult {
	if v.heightField == nil {
		return PixelResult{Err: errNoSurface}
	}

	if v.valueReader != nil {
		value, err := v.valueReader.Read()
		if err != nil {
			return PixelResult{Err: err}
		}
		return PixelResult{X: value.X, Y: value.Y, Value: value.V}
	}

	pending := v.picker.Request()
	v.device.Poll()
	idx, err := pending.Wait()
	if err != nil {
		return PixelResult{Err: err}
	}
	if int(idx.Column) >= v.heightField.Width || int(idx.Row) >= v.heightField.Height {
		return PixelResult{Err: fmt.Errorf("picked sample [%d/%d] outside the field", idx.Column, idx.Row)}
	}
	return PixelResult{
		X:     float32(idx.Column),
		Y:     float32(idx.Row),
		Value: v.heightField.At(int(idx.Column), int(idx.Row)),
	}
}

func mapButton(b uint8) (camera.Button, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return camera.ButtonLeft, true
	case sdl.BUTTON_MIDDLE:
		return camera.ButtonMiddle, true
	case sdl.BUTTON_RIGHT:
		return camera.ButtonRight, true
	}
	return 0, false
}
