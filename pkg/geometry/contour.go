package geometry

import (
	"math"
	"sort"
)

// mask is a binary working image: true = foreground (edge) pixel.
type mask struct {
	w, h int
	bits []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, bits: make([]bool, w*h)}
}

func (m *mask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.w+x]
}

func (m *mask) set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.bits[y*m.w+x] = v
}

// mooreOffsets enumerates the 8-neighborhood clockwise starting east.
var mooreOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// externalContours traces the outer boundary of every connected foreground
// component using Moore neighbor following. Interior holes are not traced;
// the card detector only needs outer outlines.
func externalContours(m *mask) [][]Point {
	visited := newMask(m.w, m.h)
	var contours [][]Point
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.at(x, y) || visited.at(x, y) {
				continue
			}
			// Only start a trace at a pixel whose western neighbor is
			// background, i.e. an outer-boundary entry point.
			if m.at(x-1, y) {
				visited.set(x, y, true)
				continue
			}
			c := traceBoundary(m, x, y)
			for _, p := range c {
				visited.set(int(p.X), int(p.Y), true)
			}
			// Flood-mark the component so we do not restart inside it.
			fillComponent(m, visited, x, y)
			if len(c) >= 4 {
				contours = append(contours, c)
			}
		}
	}
	return contours
}

func traceBoundary(m *mask, sx, sy int) []Point {
	contour := []Point{{float64(sx), float64(sy)}}
	// backtrack starts pointing west (we entered from the west).
	cx, cy := sx, sy
	dir := 4
	for {
		found := false
		for i := 0; i < 8; i++ {
			d := (dir + 1 + i) % 8
			nx := cx + mooreOffsets[d][0]
			ny := cy + mooreOffsets[d][1]
			if m.at(nx, ny) {
				cx, cy = nx, ny
				dir = (d + 4) % 8
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if cx == sx && cy == sy {
			break
		}
		contour = append(contour, Point{float64(cx), float64(cy)})
		if len(contour) > 4*(m.w+m.h) {
			break // runaway guard
		}
	}
	return contour
}

func fillComponent(m, visited *mask, sx, sy int) {
	stack := [][2]int{{sx, sy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := p[0], p[1]
		if !m.at(x, y) || visited.at(x, y) {
			continue
		}
		visited.set(x, y, true)
		stack = append(stack, [2]int{x + 1, y}, [2]int{x - 1, y}, [2]int{x, y + 1}, [2]int{x, y - 1})
	}
}

// perimeter returns the closed-contour arc length.
func perimeter(c []Point) float64 {
	sum := 0.0
	for i := range c {
		sum += dist(c[i], c[(i+1)%len(c)])
	}
	return sum
}

// approxPolygon simplifies a closed contour with Douglas-Peucker. The curve
// is split at its two mutually farthest points and each open half simplified.
func approxPolygon(c []Point, epsilon float64) []Point {
	if len(c) < 3 {
		return c
	}
	ai, bi := 0, 0
	best := -1.0
	// Farthest pair; sample coarsely on big contours to bound cost.
	step := 1
	if len(c) > 400 {
		step = len(c) / 400
	}
	for i := 0; i < len(c); i += step {
		for j := i + 1; j < len(c); j += step {
			if d := dist(c[i], c[j]); d > best {
				best = d
				ai, bi = i, j
			}
		}
	}
	half1 := append([]Point{}, c[ai:bi+1]...)
	half2 := append(append([]Point{}, c[bi:]...), c[:ai+1]...)
	out := douglasPeucker(half1, epsilon)
	back := douglasPeucker(half2, epsilon)
	// Endpoints of the two halves coincide; drop the duplicates.
	if len(back) > 2 {
		out = append(out, back[1:len(back)-1]...)
	}
	return out
}

func douglasPeucker(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return pts
	}
	idx, maxd := 0, 0.0
	a, b := pts[0], pts[len(pts)-1]
	for i := 1; i < len(pts)-1; i++ {
		if d := pointSegmentDist(pts[i], a, b); d > maxd {
			maxd = d
			idx = i
		}
	}
	if maxd <= epsilon {
		return []Point{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func pointSegmentDist(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return dist(p, Point{a.X + t*dx, a.Y + t*dy})
}

// convexHull computes the hull with Andrew's monotone chain, CCW order.
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	p := append([]Point{}, pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	var lower, upper []Point
	for _, pt := range p {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}
	for i := len(p) - 1; i >= 0; i-- {
		pt := p[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// minAreaRect finds the minimum-area enclosing rectangle of a contour via
// rotating calipers over its convex hull, returning the four corners.
func minAreaRect(c []Point) []Point {
	hull := convexHull(c)
	if len(hull) < 3 {
		return hull
	}
	bestArea := math.Inf(1)
	var best []Point
	for i := 0; i < len(hull); i++ {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		theta := math.Atan2(b.Y-a.Y, b.X-a.X)
		cos, sin := math.Cos(-theta), math.Sin(-theta)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range hull {
			x := p.X*cos - p.Y*sin
			y := p.X*sin + p.Y*cos
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
		area := (maxX - minX) * (maxY - minY)
		if area < bestArea {
			bestArea = area
			// Rotate the aligned corners back to image space.
			rcos, rsin := math.Cos(theta), math.Sin(theta)
			corners := [][2]float64{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
			best = best[:0]
			for _, co := range corners {
				best = append(best, Point{co[0]*rcos - co[1]*rsin, co[0]*rsin + co[1]*rcos})
			}
		}
	}
	return append([]Point{}, best...)
}
