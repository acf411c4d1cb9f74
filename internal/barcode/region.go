package barcode

import (
	"image"
	"image/color"
)

const (
	// bandKeep is the fraction of the peak row score a neighbouring row needs
	// to stay inside the band.
	bandKeep = 0.5
	// bandPadding is added above and below the band, as a fraction of its height.
	bandPadding = 0.25
	minBandRows = 8
)

// CandidateRegion returns the sub-rectangle of img most likely to contain a
// 1D barcode, judged by where horizontal intensity changes dominate vertical
// ones. ok is false when no row has that signature.
func CandidateRegion(img image.Image) (image.Rectangle, bool) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return image.Rectangle{}, false
	}

	gray := toGray(img)
	scores := make([]float64, height)
	for y := 1; y < height-1; y++ {
		var sum float64
		for x := 1; x < width-1; x++ {
			gx := absDiff(gray.GrayAt(bounds.Min.X+x+1, bounds.Min.Y+y).Y, gray.GrayAt(bounds.Min.X+x-1, bounds.Min.Y+y).Y)
			gy := absDiff(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y+1).Y, gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y-1).Y)
			if d := gx - gy; d > 0 {
				sum += float64(d)
			}
		}
		scores[y] = sum
	}
	scores = smooth(scores, 3)

	peak, peakRow := 0.0, -1
	for y, s := range scores {
		if s > peak {
			peak, peakRow = s, y
		}
	}
	if peakRow < 0 || peak == 0 {
		return image.Rectangle{}, false
	}

	top, bottom := peakRow, peakRow
	for top > 0 && scores[top-1] >= peak*bandKeep {
		top--
	}
	for bottom < height-1 && scores[bottom+1] >= peak*bandKeep {
		bottom++
	}
	band := bottom - top + 1
	if band < minBandRows {
		band = minBandRows
	}
	pad := int(float64(band) * bandPadding)
	top = max(0, top-pad)
	bottom = min(height-1, bottom+pad)

	rect := image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Max.X, bounds.Min.Y+bottom+1)
	if rect.Eq(bounds) {
		return image.Rectangle{}, false
	}
	return rect, true
}

// Crop copies rect out of img.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			out.Set(x-rect.Min.X, y-rect.Min.Y, img.At(x, y))
		}
	}
	return out
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.SetGray(x, y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}

func smooth(values []float64, radius int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo, hi := max(0, i-radius), min(len(values)-1, i+radius)
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
