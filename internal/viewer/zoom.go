package viewer

// zoomBucket maps the continuous zoom factor onto the renderer's three
// decimation levels. The factor is the view volume half-extent: small
// means the camera is close and every sample is kept, large means
// zoomed far out and the grid is coarsened.
func zoomBucket(zoom float32) uint32 {
	switch {
	case zoom > 0.8:
		return 2
	case zoom > 0.2:
		return 1
	default:
		return 0
	}
}
