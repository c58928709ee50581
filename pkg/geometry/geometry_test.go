package geometry

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
)

func TestOrderPoints(t *testing.T) {
	pts := []Point{{90, 10}, {10, 12}, {12, 110}, {88, 108}}
	q := OrderPoints(pts)
	if q[0] != (Point{10, 12}) || q[1] != (Point{90, 10}) {
		t.Fatalf("top pair wrong: %v", q)
	}
	if q[2] != (Point{88, 108}) || q[3] != (Point{12, 110}) {
		t.Fatalf("bottom pair wrong: %v", q)
	}
}

func TestQuadConvexity(t *testing.T) {
	convex := Quad{{0, 0}, {100, 0}, {100, 140}, {0, 140}}
	if !convex.IsConvex() {
		t.Fatalf("rectangle should be convex")
	}
	bowtie := Quad{{0, 0}, {100, 140}, {100, 0}, {0, 140}}
	if bowtie.IsConvex() {
		t.Fatalf("bowtie should not be convex")
	}
}

func TestDestSizeUsesLongerEdges(t *testing.T) {
	q := Quad{{0, 0}, {100, 0}, {90, 140}, {0, 130}}
	w, h := q.DestSize()
	if w != 100 || h != 140 {
		t.Fatalf("expected 100x140 got %dx%d", w, h)
	}
}

func TestHomographyIdentity(t *testing.T) {
	q := Quad{{0, 0}, {99, 0}, {99, 139}, {0, 139}}
	h, err := computeHomography(q, q)
	if err != nil {
		t.Fatalf("homography: %v", err)
	}
	for _, p := range []Point{{0, 0}, {50, 70}, {99, 139}} {
		x, y := h.apply(p.X, p.Y)
		if math.Abs(x-p.X) > 1e-6 || math.Abs(y-p.Y) > 1e-6 {
			t.Fatalf("identity mapping moved (%v,%v) to (%v,%v)", p.X, p.Y, x, y)
		}
	}
}

func TestHomographyMapsCorners(t *testing.T) {
	src := Quad{{0, 0}, {49, 0}, {49, 69}, {0, 69}}
	dst := Quad{{10, 5}, {80, 12}, {75, 105}, {8, 98}}
	h, err := computeHomography(src, dst)
	if err != nil {
		t.Fatalf("homography: %v", err)
	}
	for i := range src {
		x, y := h.apply(src[i].X, src[i].Y)
		if math.Abs(x-dst[i].X) > 1e-6 || math.Abs(y-dst[i].Y) > 1e-6 {
			t.Fatalf("corner %d mapped to (%v,%v), want %v", i, x, y, dst[i])
		}
	}
}

// cardScene draws a dark card-ratio rectangle on a light background.
func cardScene(frameW, frameH int, rect image.Rectangle) *image.NRGBA {
	img := imaging.New(frameW, frameH, color.NRGBA{220, 220, 220, 255})
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{40, 40, 40, 255})
		}
	}
	return img
}

func TestDetectQuadSyntheticRectangle(t *testing.T) {
	rect := image.Rect(150, 180, 400, 530) // 250x350, exactly card ratio, ~18% of frame
	img := cardScene(600, 800, rect)
	q, err := DetectQuad(img)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	want := Quad{
		{float64(rect.Min.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Max.Y)},
		{float64(rect.Min.X), float64(rect.Max.Y)},
	}
	for i := range q {
		if math.Abs(q[i].X-want[i].X) > 8 || math.Abs(q[i].Y-want[i].Y) > 8 {
			t.Fatalf("corner %d = %v, want near %v", i, q[i], want[i])
		}
	}
}

func TestRectifyOutputRatio(t *testing.T) {
	img := cardScene(600, 800, image.Rect(150, 180, 400, 530))
	out, err := Rectify(img)
	if err != nil {
		t.Fatalf("rectify: %v", err)
	}
	w := float64(out.Bounds().Dx())
	h := float64(out.Bounds().Dy())
	r := w / h
	if math.Abs(r-CardRatio) > RatioTolerance && math.Abs(1/r-CardRatio) > RatioTolerance {
		t.Fatalf("rectified ratio %v outside tolerance of %v", r, CardRatio)
	}
}

func TestRectifyNoCard(t *testing.T) {
	img := imaging.New(600, 800, color.NRGBA{220, 220, 220, 255})
	if _, err := Rectify(img); err != ErrNoCard {
		t.Fatalf("expected ErrNoCard on blank frame, got %v", err)
	}
}

func TestRectifyRejectsWrongRatio(t *testing.T) {
	// A square region is far outside the card-ratio band.
	img := cardScene(600, 800, image.Rect(100, 200, 500, 600))
	if _, err := Rectify(img); err != ErrNoCard {
		t.Fatalf("expected ErrNoCard for square region, got %v", err)
	}
}

func TestRectifyQuadManual(t *testing.T) {
	img := cardScene(600, 800, image.Rect(150, 180, 400, 530))
	pts := []Point{{150, 180}, {400, 180}, {400, 530}, {150, 530}}
	out, err := RectifyQuad(img, pts)
	if err != nil {
		t.Fatalf("manual rectify: %v", err)
	}
	if out.Bounds().Dx() != 250 || out.Bounds().Dy() != 350 {
		t.Fatalf("expected 250x350 got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
	// Center pixel must come from inside the card.
	c := out.NRGBAAt(125, 175)
	if c.R > 60 {
		t.Fatalf("center pixel should be dark, got %v", c)
	}
}

func TestRectifyQuadRejectsBadInput(t *testing.T) {
	img := imaging.New(100, 100, color.NRGBA{255, 255, 255, 255})
	if _, err := RectifyQuad(img, []Point{{0, 0}, {1, 1}, {2, 2}}); err == nil {
		t.Fatalf("expected error for 3 points")
	}
	degenerate := []Point{{0, 0}, {50, 0}, {100, 0}, {150, 0}}
	if _, err := RectifyQuad(img, degenerate); err == nil {
		t.Fatalf("expected error for collinear points")
	}
}

func TestMinAreaRectAxisAligned(t *testing.T) {
	pts := []Point{{10, 10}, {60, 10}, {60, 80}, {10, 80}, {35, 10}, {10, 45}}
	rect := minAreaRect(pts)
	if len(rect) != 4 {
		t.Fatalf("expected 4 corners got %d", len(rect))
	}
	area := polygonArea(rect)
	if math.Abs(area-50*70) > 1 {
		t.Fatalf("expected area %v got %v", 50*70, area)
	}
}
