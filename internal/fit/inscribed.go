package fit

import (
	"fmt"
	goimage "image"
	"image/color"
	"math"

	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"

	"gocv.io/x/gocv"
)

// innerDiameter locates the largest inscribed circle with an exact
// Euclidean distance transform of the filled shape. In precision mode the
// radius is replaced by the exact distance from the transform's peak to the
// boundary polygon, which never exceeds the raster value for convex shapes.
func (f *Fitter) innerDiameter(p shape.Primitive, precision bool) (Result, error) {
	center, radius, err := f.inscribedCircle(p)
	if err != nil {
		return Result{}, fmt.Errorf("fit %s: %w", InnerDiameter, err)
	}

	method := MethodDistanceTransform
	if precision {
		radius = geometry.BoundaryDistance(center, p)
		method = MethodBoundaryDistance
	}

	return Result{
		Value:  2 * radius,
		Method: method,
		Center: center,
		Radius: radius,
	}, nil
}

// inscribedCircle rasterizes the primitive into a mask just large enough
// to hold it plus a blank margin, and returns the location and value of the
// distance transform maximum in image coordinates.
//
// The outline is stroked two pixels wide on top of the fill. Rounding the
// vertices to the pixel grid moves the boundary by at most half a diagonal,
// so with the stroke every zero pixel lies outside the polygon and the
// transform never underestimates the distance to the boundary.
func (f *Fitter) inscribedCircle(p shape.Primitive) (geometry.Point2D, float64, error) {
	box := p.Bounds()
	margin := f.opts.MaskMargin
	if margin < 2 {
		margin = 2
	}

	originX := int(math.Floor(box.X)) - margin
	originY := int(math.Floor(box.Y)) - margin
	cols := int(math.Ceil(box.X+box.Width)) - originX + margin + 1
	rows := int(math.Ceil(box.Y+box.Height)) - originY + margin + 1

	pts := make([]goimage.Point, len(p))
	for i, pt := range p {
		pts[i] = goimage.Pt(int(math.Round(pt.X))-originX, int(math.Round(pt.Y))-originY)
	}

	mask := gocv.Zeros(rows, cols, gocv.MatTypeCV8U)
	defer mask.Close()

	contour := gocv.NewPointsVectorFromPoints([][]goimage.Point{pts})
	defer contour.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.DrawContours(&mask, contour, -1, white, -1)
	gocv.DrawContours(&mask, contour, -1, white, 2)

	if gocv.CountNonZero(mask) == 0 {
		return geometry.Point2D{}, 0, ErrDegenerateShape
	}

	dist := exactDistanceTransform(mask.ToBytes(), rows, cols)
	idx, sq := peak(dist)
	center := geometry.Point2D{
		X: float64(idx%cols + originX),
		Y: float64(idx/cols + originY),
	}
	return center, math.Sqrt(sq), nil
}
