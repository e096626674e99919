package measure

import (
	"errors"
	"math"
	"strings"
	"testing"

	"tool-gauge/internal/fit"
	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"
)

func circle(cx, cy, r float64) shape.Primitive {
	return shape.Primitive(geometry.GenerateCirclePoints(cx, cy, r, 72))
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestAnalyze_RequiresDetections(t *testing.T) {
	s := newTestSession(t, 10)
	if _, err := s.Analyze(); !errors.Is(err, ErrNoReferenceDetected) {
		t.Errorf("expected ErrNoReferenceDetected, got %v", err)
	}

	s.Automatic().SetObjects(
		shape.NewDetectedObject(shape.RoleReference, box(0, 0, 10, 10)),
		shape.NewDetectedObject(shape.RoleTool, shape.Primitive{{X: 1, Y: 1}, {X: 5, Y: 5}}),
	)
	if _, err := s.Analyze(); !errors.Is(err, fit.ErrDegenerateShape) {
		t.Errorf("expected ErrDegenerateShape for a two-point tool, got %v", err)
	}
}

func TestAnalyze_RoundTool(t *testing.T) {
	s := newTestSession(t, 10)
	a := s.Automatic()
	a.SetObjects(
		shape.NewDetectedObject(shape.RoleReference, box(0, 0, 10, 10)),
		shape.NewDetectedObject(shape.RoleTool, circle(100, 100, 20)),
	)
	if err := a.Calibrate(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Measure(fit.OuterDiameter); err != nil {
		t.Fatal(err)
	}

	res, err := s.Analyze()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.AreaRatio-math.Pi*4) > 0.1 {
		t.Errorf("area ratio = %f, want ~%f", res.AreaRatio, math.Pi*4)
	}
	if res.Circularity < 0.99 || res.Circularity > 1 {
		t.Errorf("circularity = %f, want ~1", res.Circularity)
	}
	if res.Inspection != InspectionScanning {
		t.Errorf("inspection = %s", res.Inspection)
	}
	if math.Abs(res.Diameter-40) > 1e-6 || res.Height != 0 {
		t.Errorf("diameter/height = %f/%f", res.Diameter, res.Height)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if !hasMessage(res.Notes, "large diameter") || hasMessage(res.Notes, "wear") {
		t.Errorf("notes = %v", res.Notes)
	}
}

func TestAnalyze_SlenderTool(t *testing.T) {
	s := newTestSession(t, 1)
	a := s.Automatic()
	ref := shape.NewDetectedObject(shape.RoleReference, box(0, 0, 10, 10))

	a.SetObjects(ref, shape.NewDetectedObject(shape.RoleTool, circle(50, 50, 4)))
	if err := a.Calibrate(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Measure(fit.OuterDiameter); err != nil {
		t.Fatal(err)
	}

	s.SetView(ViewSide)
	a.SetObjects(ref, shape.NewDetectedObject(shape.RoleTool, box(20, 20, 4, 60)))
	if _, err := a.Measure(fit.Height); err != nil {
		t.Fatal(err)
	}

	res, err := s.Analyze()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Diameter-0.8) > 1e-6 || math.Abs(res.Height-6) > 1e-6 {
		t.Errorf("diameter/height = %f/%f, want 0.8/6", res.Diameter, res.Height)
	}
	if want := 4 * math.Pi * 240 / (128 * 128); math.Abs(res.Circularity-want) > 1e-9 {
		t.Errorf("circularity = %f, want %f", res.Circularity, want)
	}
	if res.Inspection != InspectionSinglePoint {
		t.Errorf("inspection = %s", res.Inspection)
	}
	for _, want := range []string{"very small diameter", "high aspect ratio", "irregular boundary"} {
		if !hasMessage(res.Warnings, want) {
			t.Errorf("missing warning %q in %v", want, res.Warnings)
		}
	}
	if !hasMessage(res.Notes, "wear") {
		t.Errorf("notes = %v", res.Notes)
	}
	if out := res.String(); !strings.Contains(out, "WARNING: high aspect ratio") {
		t.Errorf("report:\n%s", out)
	}
}
