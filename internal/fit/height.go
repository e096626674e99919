package fit

import (
	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"
)

// height returns the long side of the minimum-area rectangle, or in
// precision mode the vertical extent of the boundary points.
func (f *Fitter) height(p shape.Primitive, precision bool) Result {
	if precision {
		box := p.Bounds()
		return Result{Value: box.Height, Method: MethodVerticalExtent}
	}

	rect := geometry.MinAreaRect(p)
	return Result{
		Value:  rect.LongSide(),
		Method: MethodMinAreaRect,
		Center: rect.Center,
	}
}
