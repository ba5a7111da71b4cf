package picking

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// indexRecordSize is two uint32 values: source row and column.
const indexRecordSize = 8

// PickedIndex is the source sample coordinate rendered at the queried
// pixel.
type PickedIndex struct {
	Row    uint32
	Column uint32
}

// Pending is a shared handle to an in-flight index readback. All
// callers that requested a pick while the same readback was outstanding
// hold the same Pending and observe the same result.
type Pending struct {
	done chan struct{}
	idx  PickedIndex
	err  error
}

// Done is closed when the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the readback resolves and returns its result.
func (p *Pending) Wait() (PickedIndex, error) {
	<-p.done
	return p.idx, p.err
}

// IndexPicker reads back the (row, column) record the fragment shader
// wrote into the pick render target at the cursor position. The copy
// into the readback buffer is encoded into the same submission as the
// render pass; the map is resolved asynchronously via Device.Poll.
//
// The protocol walks Idle -> CopyIssued -> MapRequested -> MapReady ->
// Idle. While a readback is pending no new copy is encoded and no
// second map is issued; Request returns the shared pending handle
// instead.
type IndexPicker struct {
	device   Device
	target   Target
	readback Buffer

	mu      sync.Mutex
	pending *Pending

	cursorX, cursorY float64
	width, height    int
}

// NewIndexPicker creates the pick target for the given viewport size
// and a fixed-size readback buffer reused for every frame.
func NewIndexPicker(device Device, width, height int) *IndexPicker {
	return &IndexPicker{
		device:   device,
		target:   device.CreateTarget(width, height),
		readback: device.CreateBuffer(indexRecordSize),
		width:    width,
		height:   height,
	}
}

// Target returns the pick render target for the renderer to attach.
func (p *IndexPicker) Target() Target {
	return p.target
}

// SetCursor stores the pixel position the next copy reads from.
func (p *IndexPicker) SetCursor(x, y float64) {
	p.cursorX, p.cursorY = x, y
}

// Resize recreates the pick target when the viewport changes. A pending
// readback still resolves against the bytes already copied from the old
// target; the two are never mixed.
func (p *IndexPicker) Resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.target.Destroy()
	p.target = p.device.CreateTarget(width, height)
	p.width = width
	p.height = height
}

// EncodeCopy records the cursor texel copy into the frame's submission.
// Skipped while a readback is pending, so copies cannot pile up behind
// an outstanding map.
func (p *IndexPicker) EncodeCopy(enc Encoder) {
	p.mu.Lock()
	busy := p.pending != nil
	p.mu.Unlock()
	if busy {
		return
	}

	x := clampPixel(p.cursorX, p.width)
	y := clampPixel(p.cursorY, p.height)
	enc.CopyTexel(p.target, x, y, p.readback)
}

// Request starts a readback of the last copied texel, or joins the one
// already in flight. The returned handle resolves once Device.Poll has
// driven the map to completion; the pending slot is cleared exactly
// once, before the handle is signalled, so a follow-up request starts a
// fresh read.
func (p *IndexPicker) Request() *Pending {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil {
		return p.pending
	}

	pending := &Pending{done: make(chan struct{})}
	p.pending = pending

	p.readback.MapRead(func(data []byte, err error) {
		if err != nil {
			pending.err = fmt.Errorf("%w: %v", ErrMapFailed, err)
		} else {
			// The map succeeded, so the buffer must be released even
			// when the record is unusable.
			if len(data) < indexRecordSize {
				pending.err = fmt.Errorf("%w: short read of %d bytes", ErrMapFailed, len(data))
			} else {
				pending.idx = PickedIndex{
					Row:    binary.LittleEndian.Uint32(data[4:8]),
					Column: binary.LittleEndian.Uint32(data[0:4]),
				}
			}
			p.readback.Unmap()
		}

		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
		close(pending.done)
	})

	return pending
}

func clampPixel(v float64, limit int) int {
	px := int(v)
	if px < 0 {
		px = 0
	}
	if px > limit-1 {
		px = limit - 1
	}
	return px
}
