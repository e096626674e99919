package measure

import (
	"fmt"
	"math"
	"strings"

	"tool-gauge/internal/fit"
	"tool-gauge/pkg/geometry"
)

// Thresholds for the shape analysis. Diameters are in reference units.
const (
	minSuitableAreaRatio = 0.5
	sharpCircularity     = 0.85
	scanningCircularity  = 0.9
	smallDiameter        = 1.0
	largeDiameter        = 25.0
	fragileAspect        = 5.0
)

// InspectionMode is the recommended CMM inspection approach for a tool.
type InspectionMode string

const (
	InspectionScanning    InspectionMode = "scanning"
	InspectionSinglePoint InspectionMode = "single-point"
)

// Analysis describes the detected tool's shape relative to the reference
// together with any warnings raised by the recorded dimensions.
type Analysis struct {
	AreaRatio   float64        `json:"area_ratio"`  // tool area / reference area
	Circularity float64        `json:"circularity"` // 4πA/P², 1 for a circle
	Diameter    float64        `json:"diameter,omitempty"`
	Height      float64        `json:"height,omitempty"`
	Inspection  InspectionMode `json:"inspection"`
	Notes       []string       `json:"notes,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Analyze inspects the detected pair and the recorded diameter and height.
// The diameter is taken from the top view and the height from the side
// view, falling back to the other view when missing.
func (s *Session) Analyze() (Analysis, error) {
	if s.reference == nil {
		return Analysis{}, ErrNoReferenceDetected
	}
	if s.tool == nil {
		return Analysis{}, ErrNoToolDetected
	}
	if !s.tool.Primitive.IsPolygon() || !s.reference.Primitive.IsPolygon() {
		return Analysis{}, fmt.Errorf("analyze: %w", fit.ErrDegenerateShape)
	}

	toolArea := geometry.PolygonArea(s.tool.Primitive)
	refArea := geometry.PolygonArea(s.reference.Primitive)
	perimeter := geometry.Perimeter(s.tool.Primitive)
	if refArea == 0 || perimeter == 0 {
		return Analysis{}, fmt.Errorf("analyze: %w", fit.ErrDegenerateShape)
	}

	a := Analysis{
		AreaRatio:   toolArea / refArea,
		Circularity: 4 * math.Pi * toolArea / (perimeter * perimeter),
		Inspection:  InspectionSinglePoint,
	}
	if a.Circularity > scanningCircularity {
		a.Inspection = InspectionScanning
	}

	if a.AreaRatio > minSuitableAreaRatio {
		a.note("tool size is suitable for measurement")
	} else {
		a.warn("tool is small relative to the reference; check magnification")
	}
	if a.Circularity > sharpCircularity {
		a.note("boundary is regular, edges look sharp")
	} else {
		a.warn("irregular boundary, the tool may need inspection")
	}
	if a.Circularity < scanningCircularity {
		a.note("check the cutting edges for wear")
	}

	if r, ok := s.recordPreferring(ViewTop, fit.OuterDiameter); ok {
		a.Diameter = r.Value
		switch {
		case a.Diameter < smallDiameter:
			a.warn(fmt.Sprintf("very small diameter (%.3f), handle with care", a.Diameter))
		case a.Diameter > largeDiameter:
			a.note(fmt.Sprintf("large diameter (%.3f), check machine capacity", a.Diameter))
		}
	}
	if r, ok := s.recordPreferring(ViewSide, fit.Height); ok {
		a.Height = r.Value
	}
	if a.Diameter > 0 && a.Height > 0 {
		if aspect := a.Height / a.Diameter; aspect > fragileAspect {
			a.warn(fmt.Sprintf("high aspect ratio (%.1f:1), the tool is fragile", aspect))
		}
	}

	return a, nil
}

func (s *Session) recordPreferring(v View, kind fit.Kind) (Record, bool) {
	if r, ok := s.RecordIn(v, kind); ok {
		return r, true
	}
	for _, other := range Views {
		if other == v {
			continue
		}
		if r, ok := s.RecordIn(other, kind); ok {
			return r, true
		}
	}
	return Record{}, false
}

func (a *Analysis) note(msg string) { a.Notes = append(a.Notes, msg) }
func (a *Analysis) warn(msg string) { a.Warnings = append(a.Warnings, msg) }

// String formats the analysis as a short report.
func (a Analysis) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "area ratio %.2f, circularity %.3f, recommended inspection: %s\n",
		a.AreaRatio, a.Circularity, a.Inspection)
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "  WARNING: %s\n", w)
	}
	for _, n := range a.Notes {
		fmt.Fprintf(&b, "  note: %s\n", n)
	}
	return b.String()
}
