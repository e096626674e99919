// Package fit computes raw pixel dimensions of a shape primitive: outer
// diameter, inner diameter and height.
package fit

import (
	"errors"
	"fmt"
	"strings"

	"tool-gauge/pkg/geometry"
)

// ErrDegenerateShape is returned when a primitive has no points at all.
var ErrDegenerateShape = errors.New("degenerate shape")

// Kind is the dimension being measured.
type Kind int

const (
	// OuterDiameter is the diameter of the enclosing (or best-fit) circle.
	OuterDiameter Kind = iota
	// InnerDiameter is the diameter of the largest inscribed circle.
	InnerDiameter
	// Height is the long side of the enclosing rectangle.
	Height
)

// Kinds lists every measurement kind in display order.
var Kinds = []Kind{OuterDiameter, InnerDiameter, Height}

func (k Kind) String() string {
	switch k {
	case OuterDiameter:
		return "diameter"
	case InnerDiameter:
		return "inner_diameter"
	case Height:
		return "height"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name so it can key JSON maps.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. Display labels such as "Inner Diameter"
// are accepted too.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	switch norm {
	case "diameter", "outer_diameter", "outer":
		return OuterDiameter, nil
	case "inner_diameter", "inner":
		return InnerDiameter, nil
	case "height":
		return Height, nil
	}
	return 0, fmt.Errorf("unknown measurement kind %q", s)
}

// Strategy selects how a primitive is turned into a dimension.
type Strategy int

const (
	// Automatic fits geometric models to the boundary points.
	Automatic Strategy = iota
	// Manual always uses bounding-box extents.
	Manual
)

func (s Strategy) String() string {
	switch s {
	case Automatic:
		return "automatic"
	case Manual:
		return "manual"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses "automatic" or "manual".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic", "auto":
		return Automatic, nil
	case "manual":
		return Manual, nil
	}
	return 0, fmt.Errorf("unknown measurement strategy %q", s)
}

// Method records which computation produced a result.
type Method int

const (
	MethodBoxFallback Method = iota
	MethodBoxManual
	MethodEnclosingCircle
	MethodLeastSquaresCircle
	MethodDistanceTransform
	MethodBoundaryDistance
	MethodMinAreaRect
	MethodVerticalExtent
)

func (m Method) String() string {
	switch m {
	case MethodBoxFallback:
		return "bounding box (fallback)"
	case MethodBoxManual:
		return "bounding box"
	case MethodEnclosingCircle:
		return "enclosing circle"
	case MethodLeastSquaresCircle:
		return "least-squares circle"
	case MethodDistanceTransform:
		return "distance transform"
	case MethodBoundaryDistance:
		return "boundary distance"
	case MethodMinAreaRect:
		return "min-area rectangle"
	case MethodVerticalExtent:
		return "vertical extent"
	default:
		return "unknown"
	}
}

// Result is a raw pixel dimension with the details of how it was found.
// Center and Radius are set for circle-based methods only. Residual is the
// RMS radial deviation of the boundary from a fitted circle; it is
// diagnostic and never used as an uncertainty.
type Result struct {
	Value    float64          `json:"value"`
	Method   Method           `json:"method"`
	Center   geometry.Point2D `json:"center,omitempty"`
	Radius   float64          `json:"radius,omitempty"`
	Residual float64          `json:"residual,omitempty"`
}

// Fallback reports whether the value came from the bounding box.
func (r Result) Fallback() bool {
	return r.Method == MethodBoxFallback || r.Method == MethodBoxManual
}
