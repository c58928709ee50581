package region

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Default adaptive-threshold parameters. Card borders and holofoil
// backgrounds vary in tone across a strip, so a single global threshold
// smears either the text or the background.
const (
	DefaultWindow = 21
	DefaultBias   = 7
)

// Binarize applies a local-adaptive mean threshold: each pixel is compared
// against the mean of its surrounding window minus bias. An integral image of
// grayscale intensities is built once so every windowed mean is O(1).
// Pixels at or under the threshold become black, others white.
func Binarize(img image.Image, window, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	if w == 0 || h == 0 {
		return out
	}
	gray := imaging.Grayscale(img)
	lum := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = int(gray.Pix[gray.PixOffset(x, y)])
		}
	}
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += lum[y*w+x]
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			sum := ints[y1*w+x1]
			if x0 > 0 {
				sum -= ints[y1*w+x0-1]
			}
			if y0 > 0 {
				sum -= ints[(y0-1)*w+x1]
			}
			if x0 > 0 && y0 > 0 {
				sum += ints[(y0-1)*w+x0-1]
			}
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			th := mean - bias
			if th < 0 {
				th = 0
			}
			if lum[y*w+x] <= th {
				out.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return out
}

// BinarizeDefault binarizes with the package default window and bias.
func BinarizeDefault(img image.Image) *image.NRGBA {
	return Binarize(img, DefaultWindow, DefaultBias)
}
