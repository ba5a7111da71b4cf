package surface

// PixelRange marks the flat sample indices [Start, End) of an overlay.
type PixelRange struct {
	Start uint32
	End   uint32
}

// Overlay highlights a set of sample ranges in a single RGBA color. The
// alpha channel controls how strongly the highlight blends over the
// surface colors.
type Overlay struct {
	Pixels []PixelRange
	Color  [4]byte
}

// Mask rasterizes the overlays into an RGBA texture image, one texel
// per sample. Samples covered by no overlay stay fully transparent;
// later overlays win where ranges intersect. Ranges reaching past the
// field are truncated.
func Mask(overlays []Overlay, width, height int) []byte {
	total := width * height
	data := make([]byte, total*4)

	for _, overlay := range overlays {
		for _, r := range overlay.Pixels {
			end := r.End
			if end > uint32(total) {
				end = uint32(total)
			}
			for idx := r.Start; idx < end; idx++ {
				copy(data[idx*4:idx*4+4], overlay.Color[:])
			}
		}
	}

	return data
}

// ExampleOverlays returns the demo highlight set toggled from the
// keyboard: five short red row segments and one long yellow band.
func ExampleOverlays() []Overlay {
	return []Overlay{
		{
			Pixels: []PixelRange{
				{Start: 0, End: 100},
				{Start: 1024, End: 1124},
				{Start: 2048, End: 2148},
				{Start: 3072, End: 3172},
				{Start: 4096, End: 4196},
			},
			Color: [4]byte{255, 0, 0, 100},
		},
		{
			Pixels: []PixelRange{{Start: 5000, End: 50000}},
			Color:  [4]byte{255, 255, 0, 100},
		},
	}
}
