package geometry

import (
	"fmt"
	"image"
	"image/color"
)

// homography maps destination coordinates onto source coordinates, so the
// warp loop can iterate over output pixels and sample the input.
type homography [9]float64

func (h homography) apply(x, y float64) (float64, float64) {
	d := h[6]*x + h[7]*y + h[8]
	if d == 0 {
		d = 1e-12
	}
	return (h[0]*x + h[1]*y + h[2]) / d, (h[3]*x + h[4]*y + h[5]) / d
}

// computeHomography solves the 8-unknown projective mapping src[i] -> dst[i]
// with direct linear transform rows and Gaussian elimination.
func computeHomography(src, dst Quad) (homography, error) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}
	// Gaussian elimination with partial pivoting.
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return homography{}, fmt.Errorf("degenerate quad: singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	var h homography
	for i := 0; i < 8; i++ {
		h[i] = a[i][8] / a[i][i]
	}
	h[8] = 1
	return h, nil
}

// warpPerspective renders a w x h output by mapping every destination pixel
// through the destination->source homography and bilinear-sampling the input.
// When replicate is true, samples outside the source clamp to the nearest
// edge pixel; otherwise they fill with the border constant (white).
func warpPerspective(src image.Image, q Quad, w, h int, replicate bool) (*image.NRGBA, error) {
	dstQuad := Quad{{0, 0}, {float64(w - 1), 0}, {float64(w - 1), float64(h - 1)}, {0, float64(h - 1)}}
	hm, err := computeHomography(dstQuad, q)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := hm.apply(float64(x), float64(y))
			out.SetNRGBA(x, y, sampleBilinear(src, b, sx, sy, replicate))
		}
	}
	return out, nil
}

func sampleBilinear(src image.Image, b image.Rectangle, sx, sy float64, replicate bool) color.NRGBA {
	inside := sx >= float64(b.Min.X) && sy >= float64(b.Min.Y) &&
		sx <= float64(b.Max.X-1) && sy <= float64(b.Max.Y-1)
	if !inside && !replicate {
		return color.NRGBA{255, 255, 255, 255}
	}
	sx = clampF(sx, float64(b.Min.X), float64(b.Max.X-1))
	sy = clampF(sy, float64(b.Min.Y), float64(b.Max.Y-1))
	x0 := int(sx)
	y0 := int(sy)
	x1 := min(x0+1, b.Max.X-1)
	y1 := min(y0+1, b.Max.Y-1)
	fx := sx - float64(x0)
	fy := sy - float64(y0)
	blend := func(c00, c10, c01, c11 uint32) uint8 {
		top := float64(c00)*(1-fx) + float64(c10)*fx
		bot := float64(c01)*(1-fx) + float64(c11)*fx
		return uint8((top*(1-fy) + bot*fy) / 257)
	}
	r00, g00, b00, a00 := src.At(x0, y0).RGBA()
	r10, g10, b10, a10 := src.At(x1, y0).RGBA()
	r01, g01, b01, a01 := src.At(x0, y1).RGBA()
	r11, g11, b11, a11 := src.At(x1, y1).RGBA()
	return color.NRGBA{
		R: blend(r00, r10, r01, r11),
		G: blend(g00, g10, g01, g11),
		B: blend(b00, b10, b01, b11),
		A: blend(a00, a10, a01, a11),
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
