package picking

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// valueRecordSize is three float32 values: source x, source y and the
// interpolated data value.
const valueRecordSize = 12

// cursorRecordSize is the cursor position as two float32 values.
const cursorRecordSize = 8

// Value is the record the fragment shader wrote for the fragment under
// the cursor: the interpolated source coordinate and data value.
type Value struct {
	X float32
	Y float32
	V float32
}

// ValueReader implements the storage-buffer pick variant: the cursor
// position is uploaded to the GPU each frame, the fragment shader
// writes the interpolated (x, y, value) record for the fragment under
// the cursor into a storage buffer, and that record is copied to a
// staging buffer in the same submission. Read returns the record of
// the previous submission, so a pick trails the displayed frame by
// exactly one frame; that latency is a property of the design, not a
// defect.
type ValueReader struct {
	device  Device
	cursor  Buffer
	output  Buffer
	staging Buffer

	// mu serializes reads so the staging buffer is never mapped twice
	// concurrently.
	mu sync.Mutex
}

// NewValueReader allocates the cursor, output and staging buffers. All
// three are fixed-size and reused for every frame; none of them depend
// on the viewport size.
func NewValueReader(device Device) *ValueReader {
	return &ValueReader{
		device:  device,
		cursor:  device.CreateBuffer(cursorRecordSize),
		output:  device.CreateBuffer(valueRecordSize),
		staging: device.CreateBuffer(valueRecordSize),
	}
}

// CursorBuffer returns the buffer the renderer binds as the read-only
// cursor position input of the fragment shader.
func (r *ValueReader) CursorBuffer() Buffer {
	return r.cursor
}

// OutputBuffer returns the buffer the renderer binds as the writable
// pick output of the fragment shader.
func (r *ValueReader) OutputBuffer() Buffer {
	return r.output
}

// UpdateCursor uploads the pointer position for the next frame's
// shader pass.
func (r *ValueReader) UpdateCursor(x, y float64) {
	var buf [cursorRecordSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(x)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(y)))
	r.device.WriteBuffer(r.cursor, buf[:])
}

// EncodeCopy records the output-to-staging copy into the frame's
// submission, after the render pass that filled the output buffer.
func (r *ValueReader) EncodeCopy(enc Encoder) {
	enc.CopyBuffer(r.output, r.staging)
}

// Read maps the staging buffer and blocks until the backend resolves
// the map, then returns the decoded record. Concurrent callers are
// serialized; a read failure is returned as a typed error and is never
// fatal to the session.
func (r *ValueReader) Read() (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type outcome struct {
		value Value
		err   error
	}
	ch := make(chan outcome, 1)

	r.staging.MapRead(func(data []byte, err error) {
		if err != nil {
			ch <- outcome{err: fmt.Errorf("%w: %v", ErrMapFailed, err)}
			return
		}
		if len(data) < valueRecordSize {
			r.staging.Unmap()
			ch <- outcome{err: fmt.Errorf("%w: short read of %d bytes", ErrMapFailed, len(data))}
			return
		}
		v := Value{
			X: math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
			V: math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])),
		}
		r.staging.Unmap()
		ch <- outcome{value: v}
	})

	// Poll blocks until outstanding maps resolved, so the outcome is
	// ready unless the backend dropped the callback.
	r.device.Poll()

	select {
	case out := <-ch:
		return out.value, out.err
	default:
		return Value{}, ErrChannelClosed
	}
}
