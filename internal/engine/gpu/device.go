// Package gpu implements the pick readback backend on OpenGL. Readback
// buffers are plain buffer objects; map completion is driven by fence
// syncs so a map never stalls the frame that issued it.
package gpu

import (
	"errors"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/surfview/internal/engine/framebuffer"
	"github.com/Faultbox/surfview/internal/engine/picking"
)

// Device implements picking.Device and picking.Encoder on the current
// OpenGL context. All methods must be called from the thread that owns
// the context.
type Device struct {
	pendingMaps []pendingMap
}

type pendingMap struct {
	buf  *glBuffer
	sync uintptr
	done func(data []byte, err error)
}

// NewDevice creates the backend for the current context.
func NewDevice() *Device {
	return &Device{}
}

// glBuffer is a GL buffer object sized at creation and reused for every
// frame.
type glBuffer struct {
	device *Device
	id     uint32
	size   int
	mapped bool
}

func (b *glBuffer) Size() int { return b.size }

// ID returns the GL buffer object name so the renderer can bind the
// buffer to a shader storage binding point.
func (b *glBuffer) ID() uint32 { return b.id }

// MapRead inserts a fence after all commands issued so far and defers
// the map itself to Poll, once the fence signals that the copy into
// this buffer has landed.
func (b *glBuffer) MapRead(done func(data []byte, err error)) {
	sync := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	b.device.pendingMaps = append(b.device.pendingMaps, pendingMap{buf: b, sync: sync, done: done})
}

func (b *glBuffer) Unmap() {
	if !b.mapped {
		return
	}
	gl.BindBuffer(gl.COPY_READ_BUFFER, b.id)
	gl.UnmapBuffer(gl.COPY_READ_BUFFER)
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	b.mapped = false
}

// glTarget wraps the offscreen framebuffer whose second attachment holds
// the pick records.
type glTarget struct {
	fb *framebuffer.Framebuffer
}

func (t *glTarget) Size() (int, int) {
	w, h := t.fb.Size()
	return int(w), int(h)
}

func (t *glTarget) Destroy() { t.fb.Destroy() }

// Framebuffer exposes the underlying render target so the renderer can
// bind it for the scene pass.
func (t *glTarget) Framebuffer() *framebuffer.Framebuffer { return t.fb }

// CreateTarget builds the offscreen framebuffer with color, pick and
// depth attachments.
func (d *Device) CreateTarget(width, height int) picking.Target {
	fb, err := framebuffer.New(int32(width), int32(height))
	if err != nil {
		// Target creation failure leaves nothing to render into. The
		// window and context are already up at this point, so this is
		// a hard stop, not a recoverable pick error.
		panic(err)
	}
	return &glTarget{fb: fb}
}

// CreateBuffer allocates a buffer object readable by the CPU.
func (d *Device) CreateBuffer(size int) picking.Buffer {
	buf := &glBuffer{device: d, size: size}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, buf.id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, size, nil, gl.DYNAMIC_READ)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return buf
}

// WriteBuffer uploads data into a buffer before the next draw.
func (d *Device) WriteBuffer(dst picking.Buffer, data []byte) {
	buf := dst.(*glBuffer)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, buf.id)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// CopyTexel reads the pick record at (x, y) from the target's integer
// attachment into the destination buffer through a pixel pack binding.
// x and y use top-left window coordinates; GL reads bottom-left, so the
// row is flipped here.
func (d *Device) CopyTexel(src picking.Target, x, y int, dst picking.Buffer) {
	tgt := src.(*glTarget)
	buf := dst.(*glBuffer)
	_, h := tgt.Size()

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, tgt.fb.FBO())
	gl.ReadBuffer(gl.COLOR_ATTACHMENT1)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, buf.id)
	gl.ReadPixels(int32(x), int32(h-1-y), 1, 1, gl.RG_INTEGER, gl.UNSIGNED_INT, nil)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}

// CopyBuffer copies the full contents of src into dst on the GPU.
func (d *Device) CopyBuffer(src, dst picking.Buffer) {
	s := src.(*glBuffer)
	b := dst.(*glBuffer)
	gl.BindBuffer(gl.COPY_READ_BUFFER, s.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, s.size)
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// Poll blocks until every outstanding map request has completed and runs
// its callback.
func (d *Device) Poll() {
	pending := d.pendingMaps
	d.pendingMaps = nil

	for _, pm := range pending {
		// One second is far beyond any sane frame time. Hitting it
		// means the context is gone.
		status := gl.ClientWaitSync(pm.sync, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(1e9))
		gl.DeleteSync(pm.sync)
		if status == gl.WAIT_FAILED || status == gl.TIMEOUT_EXPIRED {
			pm.done(nil, errors.New("fence wait failed"))
			continue
		}

		gl.BindBuffer(gl.COPY_READ_BUFFER, pm.buf.id)
		ptr := gl.MapBufferRange(gl.COPY_READ_BUFFER, 0, pm.buf.size, gl.MAP_READ_BIT)
		gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
		if ptr == nil {
			pm.done(nil, errors.New("buffer map returned nil"))
			continue
		}
		pm.buf.mapped = true
		data := unsafe.Slice((*byte)(ptr), pm.buf.size)
		pm.done(data, nil)
	}
}
