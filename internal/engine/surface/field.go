// Package surface holds the scalar data fields the viewer renders: the
// height field, the optional amplitude field and pixel overlays.
package surface

import "sort"

// Field is a dense row-major grid of float32 samples.
type Field struct {
	Width  int
	Height int
	Data   []float32
}

// New allocates a zero-filled field.
func New(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// Index returns the flat offset of sample (x, y).
func (f *Field) Index(x, y int) int {
	return y*f.Width + x
}

// At returns the sample at (x, y).
func (f *Field) At(x, y int) float32 {
	return f.Data[y*f.Width+x]
}

// ValueRange returns the minimum and maximum sample values.
func (f *Field) ValueRange() (min, max float32) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	min, max = f.Data[0], f.Data[0]
	for _, v := range f.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// OutlierClipped returns a copy of the field with every sample clamped
// to the given percentile bounds. Extreme spikes would otherwise eat
// the whole color range and flatten the rest of the surface.
func (f *Field) OutlierClipped(lowerPercentile, upperPercentile float32) *Field {
	if len(f.Data) == 0 {
		return &Field{Width: f.Width, Height: f.Height}
	}

	sorted := append([]float32(nil), f.Data...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	lo := percentileIndex(lowerPercentile, len(sorted))
	hi := percentileIndex(upperPercentile, len(sorted))
	minValue := sorted[lo]
	maxValue := sorted[hi]

	out := &Field{Width: f.Width, Height: f.Height, Data: make([]float32, len(f.Data))}
	for i, v := range f.Data {
		if v < minValue {
			v = minValue
		}
		if v > maxValue {
			v = maxValue
		}
		out.Data[i] = v
	}
	return out
}

// Scaled returns a copy of the field linearly remapped so its value
// range becomes [newMin, newMax].
func (f *Field) Scaled(newMin, newMax float32) *Field {
	oldMin, oldMax := f.ValueRange()
	scale := float32(0)
	if oldMax != oldMin {
		scale = (newMax - newMin) / (oldMax - oldMin)
	}

	out := &Field{Width: f.Width, Height: f.Height, Data: make([]float32, len(f.Data))}
	for i, v := range f.Data {
		out.Data[i] = newMin + (v-oldMin)*scale
	}
	return out
}

// Resized returns a nearest-neighbor resample of the field.
func (f *Field) Resized(width, height int) *Field {
	out := New(width, height)
	xRatio := float32(f.Width) / float32(width)
	yRatio := float32(f.Height) / float32(height)

	for j := 0; j < height; j++ {
		py := int(float32(j) * yRatio)
		for i := 0; i < width; i++ {
			px := int(float32(i) * xRatio)
			out.Data[j*width+i] = f.Data[py*f.Width+px]
		}
	}
	return out
}

func percentileIndex(percentile float32, length int) int {
	idx := int(percentile/100.0*float32(length) + 0.5)
	if idx > length-1 {
		idx = length - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
