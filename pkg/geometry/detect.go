package geometry

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrNoCard signals that no acceptable card boundary was found. This is an
// expected outcome: the caller should fall back to a manual quadrilateral.
var ErrNoCard = errors.New("no card boundary detected")

const (
	// maxWorkingSide caps the detection working resolution.
	maxWorkingSide = 900
	// minContourAreaFrac rejects contours smaller than this fraction of the
	// working frame.
	minContourAreaFrac = 0.08
	// minOutputAreaFrac is the floor on rectified-output area relative to the
	// source frame, applied during final revalidation.
	minOutputAreaFrac = 0.05
	// edgeThreshold binarizes the Sobel gradient magnitude.
	edgeThreshold = 40
	// approxEpsilonFrac scales the polygon-simplification tolerance by
	// contour perimeter.
	approxEpsilonFrac = 0.02
)

// Rectify locates the card quadrilateral in photo and returns the
// perspective-corrected, axis-aligned card image. Returns ErrNoCard when no
// quad survives scoring and revalidation.
func Rectify(photo image.Image) (*image.NRGBA, error) {
	q, err := DetectQuad(photo)
	if err != nil {
		return nil, err
	}
	w, h := q.DestSize()
	srcB := photo.Bounds()
	if !ratioWithinBand(float64(w), float64(h)) ||
		float64(w*h) < minOutputAreaFrac*float64(srcB.Dx()*srcB.Dy()) {
		return nil, ErrNoCard
	}
	return warpPerspective(photo, q, w, h, true)
}

// RectifyQuad warps photo through a caller-supplied quadrilateral with no
// detection step. Manual crops may legitimately sample outside the photo, so
// out-of-range samples fill with the border constant instead of replicating
// edges.
func RectifyQuad(photo image.Image, pts []Point) (*image.NRGBA, error) {
	if len(pts) != 4 {
		return nil, errors.New("manual rectification requires exactly four points")
	}
	q := OrderPoints(pts)
	if !q.IsConvex() {
		return nil, errors.New("manual quadrilateral is not convex")
	}
	w, h := q.DestSize()
	if w < 2 || h < 2 {
		return nil, errors.New("manual quadrilateral is degenerate")
	}
	return warpPerspective(photo, q, w, h, false)
}

// DetectQuad finds the best-scoring card-shaped quadrilateral in photo, in
// original photo coordinates.
func DetectQuad(photo image.Image) (Quad, error) {
	b := photo.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	scale := 1.0
	work := photo
	if longest > maxWorkingSide {
		scale = float64(longest) / maxWorkingSide
		if b.Dx() >= b.Dy() {
			work = imaging.Resize(photo, maxWorkingSide, 0, imaging.Lanczos)
		} else {
			work = imaging.Resize(photo, 0, maxWorkingSide, imaging.Lanczos)
		}
	}
	gray := imaging.Grayscale(work)
	gray = imaging.Blur(gray, 1.4)

	edges := sobelEdges(gray, edgeThreshold)
	closeMask(edges)
	dilateMask(edges)

	wW := edges.w
	wH := edges.h
	minArea := minContourAreaFrac * float64(wW*wH)
	contours := externalContours(edges)

	bestScore := -1.0
	var best []Point
	for _, c := range contours {
		area := polygonArea(c)
		if area < minArea {
			continue
		}
		eps := approxEpsilonFrac * perimeter(c)
		approx := approxPolygon(c, eps)
		corners := approx
		if len(corners) != 4 {
			corners = minAreaRect(c)
		}
		if len(corners) != 4 {
			continue
		}
		q := OrderPoints(corners)
		if !q.IsConvex() {
			continue
		}
		qw, qh := q.DestSize()
		closeness := ratioCloseness(float64(qw), float64(qh))
		if closeness == 0 {
			continue // outside the ratio band, disqualified
		}
		qArea := q.Area()
		fill := 0.0
		if qArea > 0 {
			fill = math.Min(1, area/qArea)
		}
		norm := qArea / float64(wW*wH)
		score := closeness + norm + fill
		if score > bestScore {
			bestScore = score
			best = corners
		}
	}
	if best == nil {
		return Quad{}, ErrNoCard
	}
	return OrderPoints(best).Scale(scale), nil
}

// sobelEdges computes gradient magnitude on a grayscale NRGBA image and
// thresholds it into a binary mask.
func sobelEdges(gray *image.NRGBA, threshold int) *mask {
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	lum := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = int(gray.Pix[gray.PixOffset(x, y)])
		}
	}
	out := newMask(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := -lum[i-w-1] - 2*lum[i-1] - lum[i+w-1] +
				lum[i-w+1] + 2*lum[i+1] + lum[i+w+1]
			gy := -lum[i-w-1] - 2*lum[i-w] - lum[i-w+1] +
				lum[i+w-1] + 2*lum[i+w] + lum[i+w+1]
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy >= threshold*4 {
				out.set(x, y, true)
			}
		}
	}
	return out
}

// closeMask applies a morphological close (dilate then erode) with a 3x3
// kernel to bridge broken edge segments.
func closeMask(m *mask) {
	dilateMask(m)
	erodeMask(m)
}

func dilateMask(m *mask) {
	src := append([]bool{}, m.bits...)
	at := func(x, y int) bool {
		if x < 0 || y < 0 || x >= m.w || y >= m.h {
			return false
		}
		return src[y*m.w+x]
	}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if at(x, y) || at(x-1, y) || at(x+1, y) || at(x, y-1) || at(x, y+1) {
				m.bits[y*m.w+x] = true
			}
		}
	}
}

func erodeMask(m *mask) {
	src := append([]bool{}, m.bits...)
	at := func(x, y int) bool {
		if x < 0 || y < 0 || x >= m.w || y >= m.h {
			return false
		}
		return src[y*m.w+x]
	}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			m.bits[y*m.w+x] = at(x, y) && at(x-1, y) && at(x+1, y) && at(x, y-1) && at(x, y+1)
		}
	}
}
