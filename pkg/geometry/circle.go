package geometry

import (
	"math"
	"math/rand"
)

// circleEpsilon is the relative slack used for containment tests so that
// points lying on a computed circle are not rejected by rounding error.
const circleEpsilon = 1e-9

// Circle is a circle in image coordinates.
type Circle struct {
	Center Point2D `json:"center"`
	Radius float64 `json:"radius"`
}

// Diameter returns twice the radius.
func (c Circle) Diameter() float64 {
	return 2 * c.Radius
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point2D) bool {
	return distSq(c.Center, p) <= c.Radius*c.Radius*(1+circleEpsilon)+circleEpsilon
}

// MinEnclosingCircle returns the smallest circle containing every point,
// using Welzl's randomized incremental algorithm (expected linear time).
// The shuffle is seeded so results are reproducible.
func MinEnclosingCircle(points []Point2D) Circle {
	switch len(points) {
	case 0:
		return Circle{}
	case 1:
		return Circle{Center: points[0]}
	}

	pts := make([]Point2D, len(points))
	copy(pts, points)
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	c := Circle{Center: pts[0]}
	for i := 1; i < len(pts); i++ {
		if c.Contains(pts[i]) {
			continue
		}
		c = Circle{Center: pts[i]}
		for j := 0; j < i; j++ {
			if c.Contains(pts[j]) {
				continue
			}
			c = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if !c.Contains(pts[k]) {
					c = circleFrom3(pts[i], pts[j], pts[k])
				}
			}
		}
	}
	return c
}

// circleFrom2 returns the circle with a-b as diameter.
func circleFrom2(a, b Point2D) Circle {
	center := Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return Circle{Center: center, Radius: center.Distance(a)}
}

// circleFrom3 returns the circumcircle of a, b, c. Collinear triples fall
// back to the circle spanning the two farthest points.
func circleFrom3(a, b, c Point2D) Circle {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFrom2(a, b)
		if alt := circleFrom2(a, c); alt.Radius > best.Radius {
			best = alt
		}
		if alt := circleFrom2(b, c); alt.Radius > best.Radius {
			best = alt
		}
		return best
	}

	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	center := Point2D{X: a.X + ux, Y: a.Y + uy}
	return Circle{Center: center, Radius: math.Hypot(ux, uy)}
}
