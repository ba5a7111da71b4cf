package picking

import "errors"

// Pick readback failures. All of them are non-fatal: the caller logs
// and keeps rendering without a pick result for that frame.
var (
	// ErrMapFailed reports that the GPU backend could not map the
	// staging buffer for reading.
	ErrMapFailed = errors.New("mapping pick readback buffer failed")

	// ErrChannelClosed reports that a completion channel was dropped
	// before signaling. Treated as a map failure.
	ErrChannelClosed = errors.New("pick completion channel closed")
)
