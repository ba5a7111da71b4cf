package surface

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/tiff"
)

// LoadTIFF reads a grayscale TIFF file into a field. Sample values are
// kept raw; the renderer rescales by the field's value range, so the
// bit depth of the source does not matter.
func LoadTIFF(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return fromImage(img), nil
}

// LoadPair reads the height field and its matching amplitude field. The
// amplitude is resampled to the height field's dimensions when the two
// files disagree.
func LoadPair(surfacePath, amplitudePath string) (height, amplitude *Field, err error) {
	height, err = LoadTIFF(surfacePath)
	if err != nil {
		return nil, nil, err
	}

	amplitude, err = LoadTIFF(amplitudePath)
	if err != nil {
		return nil, nil, err
	}

	if amplitude.Width != height.Width || amplitude.Height != height.Height {
		amplitude = amplitude.Resized(height.Width, height.Height)
	}

	return height, amplitude, nil
}

func fromImage(img image.Image) *Field {
	bounds := img.Bounds()
	field := New(bounds.Dx(), bounds.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < field.Height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < field.Width; x++ {
				field.Data[y*field.Width+x] = float32(row[x])
			}
		}
	case *image.Gray16:
		for y := 0; y < field.Height; y++ {
			for x := 0; x < field.Width; x++ {
				field.Data[y*field.Width+x] = float32(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < field.Height; y++ {
			for x := 0; x < field.Width; x++ {
				g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				field.Data[y*field.Width+x] = float32(g.Y)
			}
		}
	}

	return field
}
