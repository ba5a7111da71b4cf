// Package renderer draws the surface grid with OpenGL. The grid is a
// single triangle strip over the data texture; a height-colored and an
// amplitude-colored fragment program share the vertex stage. Every draw
// also feeds the pick outputs: the (column, row) pair of each fragment
// goes to the integer attachment and, when a cursor buffer is bound,
// the fragment under the cursor writes its source coordinate and value
// into a storage buffer.
package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/surfview/internal/engine/framebuffer"
	"github.com/Faultbox/surfview/internal/engine/mesh"
	"github.com/Faultbox/surfview/internal/engine/picking"
	"github.com/Faultbox/surfview/internal/engine/shader"
	"github.com/Faultbox/surfview/internal/engine/surface"
	"github.com/Faultbox/surfview/internal/logger"
	"github.com/Faultbox/surfview/pkg/math"
)

// Storage buffer binding points shared with the fragment shaders.
const (
	cursorBinding = 0
	outputBinding = 1
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	VSync  bool
}

// bufferID is implemented by backend buffers that expose their GL name.
type bufferID interface {
	ID() uint32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	heightProgram    uint32
	amplitudeProgram uint32
	useHeight        bool

	gridVAO    uint32
	gridVBO    uint32
	gridEBO    uint32
	indexCount int32

	heightTexture    uint32
	amplitudeTexture uint32
	overlayTexture   uint32

	gridWidth  int32
	gridHeight int32
	zMin, zMax float32
	zoomLevel  uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:    cfg,
		useHeight: true,
		zoomLevel: 2,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	r.heightProgram, err = shader.CompileProgram(vertexShaderSource, heightFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("height program: %w", err)
	}
	r.amplitudeProgram, err = shader.CompileProgram(vertexShaderSource, amplitudeFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("amplitude program: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.gridVAO != 0 {
		gl.DeleteVertexArrays(1, &r.gridVAO)
	}
	if r.gridVBO != 0 {
		gl.DeleteBuffers(1, &r.gridVBO)
	}
	if r.gridEBO != 0 {
		gl.DeleteBuffers(1, &r.gridEBO)
	}
	for _, tex := range []uint32{r.heightTexture, r.amplitudeTexture, r.overlayTexture} {
		if tex != 0 {
			gl.DeleteTextures(1, &tex)
		}
	}
	if r.heightProgram != 0 {
		gl.DeleteProgram(r.heightProgram)
	}
	if r.amplitudeProgram != 0 {
		gl.DeleteProgram(r.amplitudeProgram)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetSurface uploads the height field and its amplitude companion and
// rebuilds the grid geometry. The height texture is normalized to
// [0, 1]; the raw value range is kept so the pick shader can report
// original values.
func (r *Renderer) SetSurface(height, amplitude *surface.Field) {
	r.zMin, r.zMax = height.ValueRange()
	r.gridWidth = int32(height.Width)
	r.gridHeight = int32(height.Height)

	r.heightTexture = r.uploadField(r.heightTexture, height.Scaled(0, 1))
	if amplitude != nil {
		r.amplitudeTexture = r.uploadField(r.amplitudeTexture, amplitude.Scaled(0, 1))
	}
	r.ClearOverlays()
	r.buildGrid(height.Width, height.Height)

	logger.Info("surface uploaded",
		zap.Int("width", height.Width),
		zap.Int("height", height.Height),
		zap.Float32("min", r.zMin),
		zap.Float32("max", r.zMax),
	)
}

// SetAmplitude replaces only the amplitude field.
func (r *Renderer) SetAmplitude(amplitude *surface.Field) {
	r.amplitudeTexture = r.uploadField(r.amplitudeTexture, amplitude.Scaled(0, 1))
}

// SetOverlays rasterizes the overlays and uploads them as an RGBA mask
// over the surface.
func (r *Renderer) SetOverlays(overlays []surface.Overlay) {
	if r.gridWidth == 0 || r.gridHeight == 0 {
		return
	}
	data := surface.Mask(overlays, int(r.gridWidth), int(r.gridHeight))

	if r.overlayTexture == 0 {
		gl.GenTextures(1, &r.overlayTexture)
	}
	gl.BindTexture(gl.TEXTURE_2D, r.overlayTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, r.gridWidth, r.gridHeight, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ClearOverlays uploads an empty mask.
func (r *Renderer) ClearOverlays() {
	r.SetOverlays(nil)
}

// UseHeightShader switches between the height colormap and the
// amplitude grayscale program.
func (r *Renderer) UseHeightShader(use bool) {
	r.useHeight = use
}

// HeightShaderActive reports which fragment program draws the surface.
func (r *Renderer) HeightShaderActive() bool {
	return r.useHeight
}

// SetZoomLevel selects the decimation level derived from the zoom
// factor. Level 0 fetches every sample; higher levels coarsen the grid
// to calm shimmer when zoomed far out.
func (r *Renderer) SetZoomLevel(level uint32) {
	if level > 2 {
		level = 2
	}
	r.zoomLevel = level
}

// Draw renders one frame into the target framebuffer. cursor and output
// are the pick storage buffers; pass nil to draw without the value pick
// stage.
func (r *Renderer) Draw(target *framebuffer.Framebuffer, rotation, projection math.Mat4, cursor, output picking.Buffer) {
	target.Bind()
	target.Clear(0, 0, 0, 1)

	if r.indexCount == 0 {
		target.Unbind()
		return
	}

	program := r.heightProgram
	if !r.useHeight {
		program = r.amplitudeProgram
	}
	gl.UseProgram(program)

	gl.UniformMatrix4fv(shader.GetUniform(program, "uRotation"), 1, false, rotation.Ptr())
	gl.UniformMatrix4fv(shader.GetUniform(program, "uProjection"), 1, false, projection.Ptr())
	gl.Uniform2i(shader.GetUniform(program, "uGridSize"), r.gridWidth, r.gridHeight)
	gl.Uniform2f(shader.GetUniform(program, "uValueRange"), r.zMin, r.zMax)
	gl.Uniform1ui(shader.GetUniform(program, "uZoomLevel"), r.zoomLevel)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.heightTexture)
	gl.Uniform1i(shader.GetUniform(program, "uHeight"), 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, r.amplitudeTexture)
	gl.Uniform1i(shader.GetUniform(program, "uAmplitude"), 1)
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, r.overlayTexture)
	gl.Uniform1i(shader.GetUniform(program, "uOverlay"), 2)

	pickActive := cursor != nil && output != nil
	gl.Uniform1i(shader.GetUniform(program, "uPickEnabled"), boolToInt(pickActive))
	if pickActive {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, cursorBinding, cursor.(bufferID).ID())
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, outputBinding, output.(bufferID).ID())
	}

	gl.BindVertexArray(r.gridVAO)
	gl.DrawElements(gl.TRIANGLE_STRIP, r.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	target.Unbind()
}

// Present copies the finished frame to the window.
func (r *Renderer) Present(target *framebuffer.Framebuffer) {
	target.BlitToScreen(int32(r.config.Width), int32(r.config.Height))
}

func (r *Renderer) uploadField(texture uint32, field *surface.Field) uint32 {
	if texture == 0 {
		gl.GenTextures(1, &texture)
	}
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32F, int32(field.Width), int32(field.Height), 0,
		gl.RED, gl.FLOAT, gl.Ptr(field.Data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

func (r *Renderer) buildGrid(width, height int) {
	if r.gridVAO != 0 {
		gl.DeleteVertexArrays(1, &r.gridVAO)
		gl.DeleteBuffers(1, &r.gridVBO)
		gl.DeleteBuffers(1, &r.gridEBO)
	}

	ids := mesh.VertexIDs(width, height)
	indices := mesh.GridIndices(width, height)
	r.indexCount = int32(len(indices))
	if r.indexCount == 0 {
		return
	}

	gl.GenVertexArrays(1, &r.gridVAO)
	gl.BindVertexArray(r.gridVAO)

	gl.GenBuffers(1, &r.gridVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(ids)*4, unsafe.Pointer(&ids[0]), gl.STATIC_DRAW)
	gl.VertexAttribIPointer(0, 1, gl.UNSIGNED_INT, 4, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &r.gridEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.gridEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("grid rebuilt",
		zap.Int("vertices", len(ids)),
		zap.Int32("indices", r.indexCount),
	)
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
