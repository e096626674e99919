package geometry

import "math"

// RotatedRect is a rectangle with arbitrary orientation.
// Angle is the direction of the Width edge in degrees, in [0, 180).
type RotatedRect struct {
	Center Point2D `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// LongSide returns the larger of the two side lengths.
func (r RotatedRect) LongSide() float64 {
	return math.Max(r.Width, r.Height)
}

// ShortSide returns the smaller of the two side lengths.
func (r RotatedRect) ShortSide() float64 {
	return math.Min(r.Width, r.Height)
}

// Area returns the rectangle area.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// Corners returns the four corners in order around the rectangle.
func (r RotatedRect) Corners() [4]Point2D {
	rad := r.Angle * math.Pi / 180
	u := Point2D{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(r.Width / 2)
	v := Point2D{X: -math.Sin(rad), Y: math.Cos(rad)}.Scale(r.Height / 2)
	return [4]Point2D{
		r.Center.Sub(u).Sub(v),
		r.Center.Add(u).Sub(v),
		r.Center.Add(u).Add(v),
		r.Center.Sub(u).Add(v),
	}
}

// MinAreaRect returns the minimum-area rectangle enclosing the points.
// One side of the optimal rectangle is collinear with a convex hull edge,
// so every hull edge direction is tried.
func MinAreaRect(points []Point2D) RotatedRect {
	hull := ConvexHull(points)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	case 2:
		d := hull[1].Sub(hull[0])
		return RotatedRect{
			Center: Point2D{X: (hull[0].X + hull[1].X) / 2, Y: (hull[0].Y + hull[1].Y) / 2},
			Width:  math.Hypot(d.X, d.Y),
			Angle:  normalizeAngle(math.Atan2(d.Y, d.X) * 180 / math.Pi),
		}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	n := len(hull)

	for i := 0; i < n; i++ {
		edge := hull[(i+1)%n].Sub(hull[i])
		length := math.Hypot(edge.X, edge.Y)
		if length == 0 {
			continue
		}
		u := edge.Scale(1 / length)
		v := Point2D{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu, pv := p.Dot(u), p.Dot(v)
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		w, h := maxU-minU, maxV-minV
		if area := w * h; area < bestArea {
			bestArea = area
			cu, cv := (minU+maxU)/2, (minV+maxV)/2
			best = RotatedRect{
				Center: u.Scale(cu).Add(v.Scale(cv)),
				Width:  w,
				Height: h,
				Angle:  normalizeAngle(math.Atan2(u.Y, u.X) * 180 / math.Pi),
			}
		}
	}

	return best
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}
