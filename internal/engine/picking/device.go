// Package picking implements the GPU pixel readback protocol: the
// renderer encodes pick data on the GPU each frame, this package copies
// a single record back to CPU-visible memory and resolves it through an
// asynchronous map/poll cycle. At most one readback is in flight at any
// time; concurrent requests share the pending result.
package picking

// Buffer is a fixed-size GPU buffer that can receive copies and be
// mapped for CPU reads.
type Buffer interface {
	Size() int

	// MapRead requests an asynchronous map of the buffer contents.
	// done is invoked exactly once, from Device.Poll, with the mapped
	// bytes or an error. The bytes are only valid until Unmap.
	MapRead(done func(data []byte, err error))

	// Unmap releases a mapped buffer so it can be copied into again.
	Unmap()
}

// Target is a pick render target sized to the viewport. The renderer
// writes one record per fragment into it; this package only reads.
type Target interface {
	Size() (width, height int)
	Destroy()
}

// Encoder records copy commands into the current frame's command
// submission. Copies execute after the render pass of the same
// submission, so a readback always reflects the frame just rendered,
// never a stale or future one.
type Encoder interface {
	// CopyTexel copies the single record at (x, y) from the target
	// into the destination buffer.
	CopyTexel(src Target, x, y int, dst Buffer)

	// CopyBuffer copies the full contents of src into dst.
	CopyBuffer(src, dst Buffer)
}

// Device creates pick resources and drives map completions.
type Device interface {
	CreateTarget(width, height int) Target
	CreateBuffer(size int) Buffer

	// WriteBuffer uploads data into a GPU buffer before the next
	// submission.
	WriteBuffer(dst Buffer, data []byte)

	// Poll blocks until all outstanding map requests have completed
	// and their callbacks have run.
	Poll()
}
