package geometry

import (
	"math"
	"sort"
)

// CardRatio is the width/height ratio of a standard trading card (2.5in x 3.5in).
const CardRatio = 2.5 / 3.5

// RatioTolerance is the accepted deviation band around CardRatio. Empirical;
// wide enough to absorb perspective foreshortening before rectification.
const RatioTolerance = 0.22

// Point is a 2D point in pixel space.
type Point struct {
	X float64
	Y float64
}

// Quad is a convex quadrilateral ordered top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// OrderPoints arranges four arbitrary corner points into Quad order:
// sort by Y to split into a top and bottom pair, then sort each pair by X.
func OrderPoints(pts []Point) Quad {
	p := make([]Point, len(pts))
	copy(p, pts)
	sort.Slice(p, func(i, j int) bool { return p[i].Y < p[j].Y })
	top := p[:2]
	bottom := p[2:4]
	if top[0].X > top[1].X {
		top[0], top[1] = top[1], top[0]
	}
	if bottom[0].X > bottom[1].X {
		bottom[0], bottom[1] = bottom[1], bottom[0]
	}
	return Quad{top[0], top[1], bottom[1], bottom[0]}
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// IsConvex reports whether the quad's corners form a convex polygon.
// Cross products of consecutive edges must all share a sign.
func (q Quad) IsConvex() bool {
	sign := 0
	for i := 0; i < 4; i++ {
		a := q[i]
		b := q[(i+1)%4]
		c := q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return sign != 0
}

// DestSize derives the rectified output dimensions: the larger of the two
// horizontal edges for width and the larger of the two vertical edges for
// height, so a skewed quad never loses pixels on its longer side.
func (q Quad) DestSize() (int, int) {
	w := math.Max(dist(q[0], q[1]), dist(q[3], q[2]))
	h := math.Max(dist(q[0], q[3]), dist(q[1], q[2]))
	return int(math.Round(w)), int(math.Round(h))
}

// Area computes the quad area via the shoelace formula.
func (q Quad) Area() float64 {
	return polygonArea(q[:])
}

// Scale returns the quad with every coordinate multiplied by f.
func (q Quad) Scale(f float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{p.X * f, p.Y * f}
	}
	return out
}

func polygonArea(pts []Point) float64 {
	sum := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// ratioWithinBand reports whether a width/height ratio falls inside the
// accepted card-ratio band, checking both orientations.
func ratioWithinBand(w, h float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	r := w / h
	return math.Abs(r-CardRatio) <= RatioTolerance || math.Abs(1/r-CardRatio) <= RatioTolerance
}

// ratioCloseness scores how near w/h is to the card ratio: 1 at a perfect
// match, 0 at the edge of the tolerance band.
func ratioCloseness(w, h float64) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	r := w / h
	d := math.Abs(r - CardRatio)
	if inv := math.Abs(1/r - CardRatio); inv < d {
		d = inv
	}
	if d > RatioTolerance {
		return 0
	}
	return 1 - d/RatioTolerance
}
