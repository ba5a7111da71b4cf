// Package mesh builds the vertex and index data for the surface grid.
// The grid is rendered as triangle strips; vertices carry only their
// flat sample index, the vertex shader derives position and height from
// the data texture.
package mesh

// GridIndices returns the triangle-strip index list for a width x
// height sample grid. Each strip row walks two columns at a time, so an
// even trailing column is left uncovered; callers pass odd widths for
// full coverage.
func GridIndices(width, height int) []uint32 {
	if width < 2 || height < 2 {
		return nil
	}

	w := uint32(width)
	indices := make([]uint32, 0, (height-1)*((width-1)/2)*6)
	for i := uint32(0); i < uint32(height)-1; i++ {
		for j := uint32(0); j < (w-1)/2; j++ {
			j := j * 2
			indices = append(indices,
				i*w+j,
				(i+1)*w+j,
				i*w+j+1,
				(i+1)*w+j+1,
				i*w+j+2,
				(i+1)*w+j+2,
			)
		}
	}
	return indices
}

// VertexIDs returns the per-vertex attribute data: the flat sample
// index of each grid vertex.
func VertexIDs(width, height int) []uint32 {
	ids := make([]uint32, width*height)
	for i := range ids {
		ids[i] = uint32(i)
	}
	return ids
}
