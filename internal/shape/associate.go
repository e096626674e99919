package shape

import (
	"errors"
	"math"

	"tool-gauge/pkg/geometry"
)

// ErrNoPrimitives is returned when there are no candidate primitives to
// associate a click with.
var ErrNoPrimitives = errors.New("no shape primitives")

// Nearest returns the index of the primitive whose boundary lies closest to
// click and that distance. Ties go to the earlier primitive.
func Nearest(click geometry.Point2D, primitives []Primitive) (int, float64, error) {
	if len(primitives) == 0 {
		return -1, 0, ErrNoPrimitives
	}

	best := -1
	bestDist := math.Inf(1)
	for i, p := range primitives {
		if len(p) == 0 {
			continue
		}
		if d := p.Distance(click); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 {
		return -1, 0, ErrNoPrimitives
	}
	return best, bestDist, nil
}

// Associate returns the primitive whose boundary lies closest to click.
func Associate(click geometry.Point2D, primitives []Primitive) (Primitive, error) {
	i, _, err := Nearest(click, primitives)
	if err != nil {
		return nil, err
	}
	return primitives[i], nil
}

// SelectPair resolves the two clicks of an interactive selection. Roles
// follow click order: the first click picks the reference, the second the
// tool. Both clicks may resolve to the same primitive.
func SelectPair(refClick, toolClick geometry.Point2D, primitives []Primitive) (ref, tool DetectedObject, err error) {
	refPrim, err := Associate(refClick, primitives)
	if err != nil {
		return DetectedObject{}, DetectedObject{}, err
	}
	toolPrim, err := Associate(toolClick, primitives)
	if err != nil {
		return DetectedObject{}, DetectedObject{}, err
	}
	return NewDetectedObject(RoleReference, refPrim), NewDetectedObject(RoleTool, toolPrim), nil
}
