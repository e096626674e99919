package fit

import (
	"errors"
	"math"
	"testing"

	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"
)

func circlePrimitive(cx, cy, r float64, n int) shape.Primitive {
	return shape.Primitive(geometry.GenerateCirclePoints(cx, cy, r, n))
}

// rectPrimitive returns an axis-aligned rectangle with a midpoint on each
// edge, so it clears the circle fitting threshold.
func rectPrimitive(x, y, w, h float64) shape.Primitive {
	return shape.Primitive{
		{X: x, Y: y}, {X: x + w/2, Y: y}, {X: x + w, Y: y},
		{X: x + w, Y: y + h/2}, {X: x + w, Y: y + h},
		{X: x + w/2, Y: y + h}, {X: x, Y: y + h}, {X: x, Y: y + h/2},
	}
}

func TestFit_EmptyPrimitive(t *testing.T) {
	f := New()
	for _, kind := range Kinds {
		for _, strategy := range []Strategy{Automatic, Manual} {
			_, err := f.Fit(nil, kind, strategy, false)
			if !errors.Is(err, ErrDegenerateShape) {
				t.Errorf("%s/%s: expected ErrDegenerateShape, got %v", kind, strategy, err)
			}
		}
	}
}

func TestFit_ManualIsBoundingBox(t *testing.T) {
	f := New()
	p := circlePrimitive(100, 100, 40, 64)
	box := p.Bounds()

	tests := []struct {
		kind Kind
		want float64
	}{
		{OuterDiameter, box.MaxSide()},
		{InnerDiameter, box.MinSide()},
		{Height, box.Height},
	}

	for _, tt := range tests {
		for _, precision := range []bool{false, true} {
			res, err := f.FitDetail(p, tt.kind, Manual, precision)
			if err != nil {
				t.Fatalf("%s: %v", tt.kind, err)
			}
			if res.Value != tt.want {
				t.Errorf("%s precision=%v: got %f, want %f", tt.kind, precision, res.Value, tt.want)
			}
			if res.Method != MethodBoxManual {
				t.Errorf("%s: method = %s", tt.kind, res.Method)
			}
		}
	}
}

func TestFit_SparseFallbackMatchesManual(t *testing.T) {
	f := New()
	sparse := shape.Primitive{{X: 0, Y: 0}, {X: 30, Y: 4}, {X: 12, Y: 20}, {X: 2, Y: 9}}

	for _, kind := range []Kind{OuterDiameter, InnerDiameter} {
		for _, precision := range []bool{false, true} {
			auto, err := f.FitDetail(sparse, kind, Automatic, precision)
			if err != nil {
				t.Fatal(err)
			}
			manual, err := f.Fit(sparse, kind, Manual, precision)
			if err != nil {
				t.Fatal(err)
			}
			if auto.Value != manual {
				t.Errorf("%s: automatic fallback %f != manual %f", kind, auto.Value, manual)
			}
			if auto.Method != MethodBoxFallback || !auto.Fallback() {
				t.Errorf("%s: expected fallback method, got %s", kind, auto.Method)
			}
		}
	}

	single := shape.Primitive{{X: 5, Y: 5}}
	h, err := f.Fit(single, Height, Automatic, false)
	if err != nil || h != 0 {
		t.Errorf("single-point height = %f, %v", h, err)
	}
}

func TestFit_PerfectCircleOuterDiameter(t *testing.T) {
	f := New()
	const r = 37.5
	p := circlePrimitive(210, 140, r, 72)

	for _, precision := range []bool{false, true} {
		res, err := f.FitDetail(p, OuterDiameter, Automatic, precision)
		if err != nil {
			t.Fatalf("precision=%v: %v", precision, err)
		}
		if math.Abs(res.Value-2*r) > 1e-6 {
			t.Errorf("precision=%v: diameter = %.9f, want %.9f", precision, res.Value, 2*r)
		}
		if res.Residual > 1e-6 {
			t.Errorf("precision=%v: residual = %g, want ~0", precision, res.Residual)
		}
	}
}

func TestRefineCircle_BestFitInsideEnclosing(t *testing.T) {
	// A circle of radius 50 with one bump: the enclosing circle grows to
	// cover the bump while the least-squares fit stays near the true radius.
	pts := geometry.GenerateCirclePoints(0, 0, 50, 120)
	pts[0] = geometry.Point2D{X: 58, Y: 0}

	enclosing := geometry.MinEnclosingCircle(pts)
	refined, err := RefineCircle(pts, enclosing)
	if err != nil {
		t.Fatal(err)
	}

	if refined.Radius >= enclosing.Radius {
		t.Errorf("refined radius %f should be below enclosing radius %f", refined.Radius, enclosing.Radius)
	}
	if math.Abs(refined.Radius-50) > 0.5 {
		t.Errorf("refined radius = %f, want ~50", refined.Radius)
	}
	if RadialRMS(pts, refined) > RadialRMS(pts, enclosing) {
		t.Error("refinement increased the RMS deviation")
	}
}

func TestFit_InnerDiameterSquare(t *testing.T) {
	f := New()
	p := rectPrimitive(20, 30, 40, 40)

	plain, err := f.FitDetail(p, InnerDiameter, Automatic, false)
	if err != nil {
		t.Fatal(err)
	}
	precise, err := f.FitDetail(p, InnerDiameter, Automatic, true)
	if err != nil {
		t.Fatal(err)
	}

	if plain.Method != MethodDistanceTransform || precise.Method != MethodBoundaryDistance {
		t.Errorf("methods = %s/%s", plain.Method, precise.Method)
	}
	if plain.Fallback() || precise.Fallback() {
		t.Error("transform results are not bounding-box fallbacks")
	}
	if plain.Value < 38 || plain.Value > 46 {
		t.Errorf("transform inner diameter = %f, want ~40", plain.Value)
	}
	if math.Abs(precise.Value-40) > 2 {
		t.Errorf("precise inner diameter = %f, want ~40", precise.Value)
	}
	if precise.Value > plain.Value {
		t.Errorf("precise %f exceeds transform estimate %f", precise.Value, plain.Value)
	}
}

func TestFit_InnerDiameterPreciseNotLarger(t *testing.T) {
	f := New()
	shapes := []shape.Primitive{
		rectPrimitive(0, 0, 60, 24),
		rectPrimitive(5, 5, 17, 31),
		rectPrimitive(100, 50, 80, 80),
	}

	for i, p := range shapes {
		if !geometry.IsConvex(p) {
			t.Fatalf("shape %d should be convex", i)
		}
		plain, err := f.Fit(p, InnerDiameter, Automatic, false)
		if err != nil {
			t.Fatal(err)
		}
		precise, err := f.Fit(p, InnerDiameter, Automatic, true)
		if err != nil {
			t.Fatal(err)
		}
		if precise > plain {
			t.Errorf("shape %d: precise %f > transform %f", i, precise, plain)
		}
	}
}

func TestFit_InnerDiameterLargeConvex(t *testing.T) {
	f := New()
	hexagon := shape.Primitive(geometry.GenerateCirclePoints(500, 400, 260, 6))
	for i := range hexagon {
		// rotate off the pixel axes
		dx, dy := hexagon[i].X-500, hexagon[i].Y-400
		sin, cos := math.Sincos(0.3)
		hexagon[i] = geometry.Point2D{X: 500 + dx*cos - dy*sin, Y: 400 + dx*sin + dy*cos}
	}

	tests := []struct {
		name string
		p    shape.Primitive
		want float64
		tol  float64
	}{
		{"circle r=200", circlePrimitive(300, 300, 200, 720), 400, 3},
		{"circle r=320", circlePrimitive(400, 380, 320, 1440), 640, 3},
		{"rotated hexagon", hexagon, 2 * 260 * math.Sqrt(3) / 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain, err := f.FitDetail(tt.p, InnerDiameter, Automatic, false)
			if err != nil {
				t.Fatal(err)
			}
			precise, err := f.FitDetail(tt.p, InnerDiameter, Automatic, true)
			if err != nil {
				t.Fatal(err)
			}

			if precise.Value > plain.Value {
				t.Errorf("precise %f > transform %f", precise.Value, plain.Value)
			}
			if math.Abs(precise.Value-tt.want) > tt.tol {
				t.Errorf("precise = %f, want %f", precise.Value, tt.want)
			}
			if math.Abs(plain.Value-tt.want) > 3*tt.tol {
				t.Errorf("transform = %f, want %f", plain.Value, tt.want)
			}
		})
	}
}

func TestExactDistanceTransform_MatchesBruteForce(t *testing.T) {
	const rows, cols = 9, 13
	mask := make([]byte, rows*cols)
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			if (x*7+y*3)%11 != 0 {
				mask[y*cols+x] = 255
			}
		}
	}

	got := exactDistanceTransform(mask, rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			want := math.Inf(1)
			for yy := 0; yy < rows; yy++ {
				for xx := 0; xx < cols; xx++ {
					if mask[yy*cols+xx] != 0 {
						continue
					}
					d := float64((x-xx)*(x-xx) + (y-yy)*(y-yy))
					want = math.Min(want, d)
				}
			}
			if got[y*cols+x] != want {
				t.Fatalf("(%d,%d): squared distance %f, want %f", x, y, got[y*cols+x], want)
			}
		}
	}

	idx, v := peak(got)
	for i, d := range got {
		if d > v || (d == v && i < idx) {
			t.Fatalf("peak at %d (%f) but %d holds %f", idx, v, i, d)
		}
	}
}

func TestFit_HeightRotatedBar(t *testing.T) {
	f := New()
	bar := geometry.RotatedRect{Center: geometry.Point2D{X: 80, Y: 80}, Width: 12, Height: 60, Angle: 20}
	corners := bar.Corners()
	p := shape.Primitive(corners[:])

	auto, err := f.FitDetail(p, Height, Automatic, false)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(auto.Value-60) > 1e-6 {
		t.Errorf("min-area height = %f, want 60", auto.Value)
	}

	precise, err := f.FitDetail(p, Height, Automatic, true)
	if err != nil {
		t.Fatal(err)
	}
	if precise.Value != p.Bounds().Height {
		t.Errorf("vertical extent = %f, want %f", precise.Value, p.Bounds().Height)
	}
	if precise.Method != MethodVerticalExtent {
		t.Errorf("method = %s", precise.Method)
	}
}

func TestParseKindAndStrategy(t *testing.T) {
	if k, err := ParseKind("Inner Diameter"); err != nil || k != InnerDiameter {
		t.Errorf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("depth"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if s, err := ParseStrategy("Manual"); err != nil || s != Manual {
		t.Errorf("ParseStrategy = %v, %v", s, err)
	}

	var k Kind
	if err := k.UnmarshalText([]byte("height")); err != nil || k != Height {
		t.Errorf("UnmarshalText = %v, %v", k, err)
	}
}
