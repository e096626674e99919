// Package shape holds the boundary primitives produced by contour extraction
// and the logic that associates operator clicks with them.
package shape

import (
	"tool-gauge/pkg/geometry"
)

// Primitive is an ordered sequence of pixel coordinates forming a closed
// boundary. The last point connects back to the first.
type Primitive []geometry.Point2D

// IsPolygon reports whether the primitive has enough points to enclose area.
func (p Primitive) IsPolygon() bool {
	return len(p) >= 3
}

// Bounds returns the axis-aligned bounding box.
func (p Primitive) Bounds() geometry.Rect {
	return geometry.BoundingBox(p)
}

// Distance returns the unsigned distance from pt to the primitive: 0 when
// pt is inside or on the boundary, otherwise the distance to the nearest edge.
func (p Primitive) Distance(pt geometry.Point2D) float64 {
	return geometry.PolygonDistance(pt, p)
}

// Role identifies which part a detected object plays in a measurement.
type Role int

const (
	// RoleReference is the object of known physical size.
	RoleReference Role = iota
	// RoleTool is the object being measured.
	RoleTool
)

func (r Role) String() string {
	switch r {
	case RoleReference:
		return "reference"
	case RoleTool:
		return "tool"
	default:
		return "unknown"
	}
}

// DetectedObject is a primitive with an assigned role.
type DetectedObject struct {
	Role      Role          `json:"role"`
	Primitive Primitive     `json:"primitive"`
	Box       geometry.Rect `json:"bounding_box"`
}

// NewDetectedObject assigns a role to a primitive and caches its bounds.
func NewDetectedObject(role Role, p Primitive) DetectedObject {
	return DetectedObject{Role: role, Primitive: p, Box: p.Bounds()}
}
