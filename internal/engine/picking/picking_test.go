package picking

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// fakeBuffer is a CPU-side stand-in for a GPU buffer.
type fakeBuffer struct {
	data     []byte
	mapped   bool
	mapCalls int
	device   *fakeDevice
}

func (b *fakeBuffer) Size() int { return len(b.data) }

func (b *fakeBuffer) MapRead(done func(data []byte, err error)) {
	b.mapCalls++
	if b.mapped {
		// Double-mapping is a fatal API violation on real backends.
		b.device.t.Fatal("MapRead called on an already mapped buffer")
	}
	b.mapped = true
	buf := b
	b.device.pollQueue = append(b.device.pollQueue, func() {
		if buf.device.mapErr != nil {
			buf.mapped = false
			done(nil, buf.device.mapErr)
			return
		}
		data := buf.data
		if buf.device.shortRead {
			data = data[:len(data)/2]
		}
		done(data, nil)
	})
}

func (b *fakeBuffer) Unmap() { b.mapped = false }

// fakeTarget stores one record per pixel, like the pick render target.
type fakeTarget struct {
	width, height int
	texels        [][]byte
	destroyed     bool
}

func (t *fakeTarget) Size() (int, int) { return t.width, t.height }
func (t *fakeTarget) Destroy()         { t.destroyed = true }

func (t *fakeTarget) write(x, y int, record []byte) {
	t.texels[y*t.width+x] = append([]byte(nil), record...)
}

// fakeDevice implements Device with deferred map completion so tests
// control exactly when readbacks resolve.
type fakeDevice struct {
	t          *testing.T
	pollQueue  []func()
	mapErr     error
	shortRead  bool
	copyCalls  int
	dropCalls  bool
	lastTarget *fakeTarget
}

func newFakeDevice(t *testing.T) *fakeDevice {
	return &fakeDevice{t: t}
}

func (d *fakeDevice) CreateTarget(width, height int) Target {
	tgt := &fakeTarget{
		width:  width,
		height: height,
		texels: make([][]byte, width*height),
	}
	d.lastTarget = tgt
	return tgt
}

func (d *fakeDevice) CreateBuffer(size int) Buffer {
	return &fakeBuffer{data: make([]byte, size), device: d}
}

func (d *fakeDevice) WriteBuffer(dst Buffer, data []byte) {
	copy(dst.(*fakeBuffer).data, data)
}

func (d *fakeDevice) CopyTexel(src Target, x, y int, dst Buffer) {
	d.copyCalls++
	tgt := src.(*fakeTarget)
	buf := dst.(*fakeBuffer)
	if buf.mapped {
		d.t.Fatal("copy into a mapped buffer")
	}
	if record := tgt.texels[y*tgt.width+x]; record != nil {
		copy(buf.data, record)
	}
}

func (d *fakeDevice) CopyBuffer(src, dst Buffer) {
	d.copyCalls++
	s := src.(*fakeBuffer)
	b := dst.(*fakeBuffer)
	if b.mapped {
		d.t.Fatal("copy into a mapped buffer")
	}
	copy(b.data, s.data)
}

func (d *fakeDevice) Poll() {
	if d.dropCalls {
		d.pollQueue = nil
		return
	}
	queue := d.pollQueue
	d.pollQueue = nil
	for _, fn := range queue {
		fn()
	}
}

func indexRecord(column, row uint32) []byte {
	buf := make([]byte, indexRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], column)
	binary.LittleEndian.PutUint32(buf[4:8], row)
	return buf
}

func valueRecord(x, y, v float32) []byte {
	buf := make([]byte, valueRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v))
	return buf
}

func TestIndexPickerReadsRenderedFrame(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 64, 64)

	// Frame: render pass writes the record, then the copy is encoded
	// into the same submission.
	dev.lastTarget.write(10, 20, indexRecord(10, 20))
	p.SetCursor(10, 20)
	p.EncodeCopy(dev)

	pending := p.Request()
	dev.Poll()

	idx, err := pending.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if idx.Column != 10 || idx.Row != 20 {
		t.Errorf("picked index = %+v, want column 10 row 20", idx)
	}
}

func TestIndexPickerSharesPendingRead(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 32, 32)

	dev.lastTarget.write(3, 4, indexRecord(3, 4))
	p.SetCursor(3, 4)
	p.EncodeCopy(dev)

	first := p.Request()
	second := p.Request()

	if first != second {
		t.Error("two requests before resolution should share the same pending handle")
	}

	readback := p.readback.(*fakeBuffer)
	if readback.mapCalls != 1 {
		t.Errorf("map calls = %d, want exactly 1 for concurrent requests", readback.mapCalls)
	}

	dev.Poll()

	a, errA := first.Wait()
	b, errB := second.Wait()
	if errA != nil || errB != nil {
		t.Fatalf("Wait() errors = %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("shared requests resolved to different results: %+v vs %+v", a, b)
	}
}

func TestIndexPickerSkipsCopyWhilePending(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 32, 32)

	p.EncodeCopy(dev)
	if dev.copyCalls != 1 {
		t.Fatalf("copy calls = %d, want 1", dev.copyCalls)
	}

	p.Request()

	// A new frame starts while the map is outstanding: the copy must
	// be skipped so it cannot clobber the mapped buffer.
	p.EncodeCopy(dev)
	if dev.copyCalls != 1 {
		t.Errorf("copy calls = %d, want still 1 while a read is pending", dev.copyCalls)
	}

	dev.Poll()

	// After resolution the next frame copies again.
	p.EncodeCopy(dev)
	if dev.copyCalls != 2 {
		t.Errorf("copy calls = %d, want 2 after the pending read resolved", dev.copyCalls)
	}
}

func TestIndexPickerFreshRequestAfterResolve(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 16, 16)

	dev.lastTarget.write(1, 1, indexRecord(1, 1))
	p.SetCursor(1, 1)
	p.EncodeCopy(dev)
	first := p.Request()
	dev.Poll()
	first.Wait()

	// Second frame renders a different record at the cursor.
	dev.lastTarget.write(1, 1, indexRecord(5, 6))
	p.EncodeCopy(dev)
	second := p.Request()
	if second == first {
		t.Fatal("a resolved pending handle must not be reused")
	}
	dev.Poll()

	idx, err := second.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if idx.Column != 5 || idx.Row != 6 {
		t.Errorf("picked index = %+v, want column 5 row 6 from the new frame", idx)
	}
}

func TestIndexPickerMapError(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 16, 16)

	p.EncodeCopy(dev)
	dev.mapErr = errors.New("device lost")
	pending := p.Request()
	dev.Poll()

	_, err := pending.Wait()
	if !errors.Is(err, ErrMapFailed) {
		t.Errorf("Wait() error = %v, want ErrMapFailed", err)
	}
}

func TestIndexPickerShortReadReleasesBuffer(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 16, 16)

	p.EncodeCopy(dev)
	dev.shortRead = true
	pending := p.Request()
	dev.Poll()

	if _, err := pending.Wait(); !errors.Is(err, ErrMapFailed) {
		t.Fatalf("Wait() error = %v, want ErrMapFailed", err)
	}
	if p.readback.(*fakeBuffer).mapped {
		t.Error("readback buffer left mapped after a truncated record")
	}

	// The next frame must be able to copy and read again; the fake
	// fatals if the copy targets a still-mapped buffer.
	dev.shortRead = false
	dev.lastTarget.write(2, 3, indexRecord(2, 3))
	p.SetCursor(2, 3)
	p.EncodeCopy(dev)
	pending = p.Request()
	dev.Poll()

	idx, err := pending.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if idx.Column != 2 || idx.Row != 3 {
		t.Errorf("picked index = %+v, want column 2 row 3", idx)
	}
}

func TestIndexPickerResizeRecreatesTarget(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 32, 32)
	old := dev.lastTarget

	p.Resize(64, 48)

	if !old.destroyed {
		t.Error("old pick target should be destroyed on resize")
	}
	if w, h := p.Target().Size(); w != 64 || h != 48 {
		t.Errorf("new target size = %dx%d, want 64x48", w, h)
	}

	// Same size is a no-op.
	current := p.Target()
	p.Resize(64, 48)
	if p.Target() != current {
		t.Error("resize to the same dimensions should not recreate the target")
	}
}

func TestIndexPickerResizeKeepsPendingIntact(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 32, 32)

	dev.lastTarget.write(7, 8, indexRecord(7, 8))
	p.SetCursor(7, 8)
	p.EncodeCopy(dev)
	pending := p.Request()

	// Viewport resized while the read is outstanding: the pending
	// read completes against the bytes copied from the old target.
	p.Resize(128, 128)
	dev.Poll()

	idx, err := pending.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if idx.Column != 7 || idx.Row != 8 {
		t.Errorf("picked index = %+v, want the pre-resize record", idx)
	}
}

func TestIndexPickerCursorClamped(t *testing.T) {
	dev := newFakeDevice(t)
	p := NewIndexPicker(dev, 8, 8)

	dev.lastTarget.write(7, 7, indexRecord(7, 7))
	p.SetCursor(100, 100) // far outside the target
	p.EncodeCopy(dev)
	pending := p.Request()
	dev.Poll()

	idx, err := pending.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if idx.Column != 7 || idx.Row != 7 {
		t.Errorf("picked index = %+v, want the clamped edge texel", idx)
	}
}

func TestValueReaderOneFrameDelay(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	// Frame N: shader writes the record, copy encoded in the same
	// submission.
	dev.WriteBuffer(r.OutputBuffer(), valueRecord(4, 9, 1.5))
	r.EncodeCopy(dev)

	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := Value{X: 4, Y: 9, V: 1.5}
	if got != want {
		t.Errorf("Read() = %+v, want %+v", got, want)
	}

	// Frame N+1 overwrites the output, but without a new copy the
	// staging buffer still holds frame N: the read is one frame late,
	// never mixed.
	dev.WriteBuffer(r.OutputBuffer(), valueRecord(1, 1, 99))
	got, err = r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != want {
		t.Errorf("Read() = %+v, want the previous frame's %+v", got, want)
	}

	// After the next copy the new record becomes visible.
	r.EncodeCopy(dev)
	got, err = r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if (got != Value{X: 1, Y: 1, V: 99}) {
		t.Errorf("Read() = %+v, want the new frame's record", got)
	}
}

func TestValueReaderCursorUpload(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	r.UpdateCursor(12.5, 40.25)

	data := r.CursorBuffer().(*fakeBuffer).data
	x := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	if x != 12.5 || y != 40.25 {
		t.Errorf("uploaded cursor = (%v, %v), want (12.5, 40.25)", x, y)
	}
}

func TestValueReaderCursorSelectsSinglePixel(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	// The fragment shader matches by integer pixel cell, with
	// gl_FragCoord sitting at the pixel center (c + 0.5).
	cell := func(v float32) int { return int(v) }

	for _, px := range []int{0, 1, 100, 719} {
		r.UpdateCursor(float64(px), float64(px))
		data := r.CursorBuffer().(*fakeBuffer).data
		cx := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))

		center := float32(px) + 0.5
		if cell(center) != cell(cx) {
			t.Errorf("pixel %d: fragment cell %d, uploaded cursor cell %d", px, cell(center), cell(cx))
		}
		if cell(center+1) == cell(cx) {
			t.Errorf("pixel %d: right neighbor matched the cursor", px)
		}
		if px > 0 && cell(center-1) == cell(cx) {
			t.Errorf("pixel %d: left neighbor matched the cursor", px)
		}
	}
}

func TestValueReaderMapError(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	dev.mapErr = errors.New("out of memory")
	_, err := r.Read()
	if !errors.Is(err, ErrMapFailed) {
		t.Errorf("Read() error = %v, want ErrMapFailed", err)
	}
}

func TestValueReaderShortReadReleasesBuffer(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	dev.shortRead = true
	if _, err := r.Read(); !errors.Is(err, ErrMapFailed) {
		t.Fatalf("Read() error = %v, want ErrMapFailed", err)
	}
	if r.staging.(*fakeBuffer).mapped {
		t.Error("staging buffer left mapped after a truncated record")
	}

	// A fresh copy and read must work; the fake fatals if the copy
	// targets a still-mapped buffer.
	dev.shortRead = false
	dev.WriteBuffer(r.OutputBuffer(), valueRecord(2, 3, 7))
	r.EncodeCopy(dev)
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if (got != Value{X: 2, Y: 3, V: 7}) {
		t.Errorf("Read() = %+v, want the fresh record", got)
	}
}

func TestValueReaderDroppedCompletion(t *testing.T) {
	dev := newFakeDevice(t)
	r := NewValueReader(dev)

	dev.dropCalls = true
	_, err := r.Read()
	if !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Read() error = %v, want ErrChannelClosed", err)
	}
}
