package geometry

import (
	"math"
	"sort"
)

// ConvexHull computes the convex hull of a set of points using the monotone
// chain algorithm. Returns the hull in counter-clockwise order without
// collinear points. Inputs with fewer than 3 distinct points are returned
// deduplicated.
func ConvexHull(points []Point2D) []Point2D {
	// Make a copy to avoid modifying the input
	pts := make([]Point2D, len(points))
	copy(pts, points)

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Drop exact duplicates
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq

	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point2D, 0, 2*len(pts))

	// Lower hull
	for _, p := range pts {
		for len(hull) >= 2 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper hull
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Last point repeats the first
	return hull[:len(hull)-1]
}

// IsConvex returns true if the polygon vertices form a convex polygon.
// The polygon is assumed to be simple (non-self-intersecting).
func IsConvex(polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	n := len(polygon)
	var sign int

	for i := 0; i < n; i++ {
		cross := crossProduct(
			polygon[i],
			polygon[(i+1)%n],
			polygon[(i+2)%n],
		)

		if cross != 0 {
			currentSign := 1
			if cross < 0 {
				currentSign = -1
			}

			if sign == 0 {
				sign = currentSign
			} else if currentSign != sign {
				return false
			}
		}
	}

	return true
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// SegmentDistance returns the distance from p to the closed segment a-b.
func SegmentDistance(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Scale(t)))
}

// BoundaryDistance returns the distance from p to the nearest point on the
// closed polyline through polygon, whether p lies inside or outside.
// Returns +Inf for an empty polygon.
func BoundaryDistance(p Point2D, polygon []Point2D) float64 {
	switch len(polygon) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(polygon[0])
	}

	best := math.Inf(1)
	n := len(polygon)
	for i := 0; i < n; i++ {
		d := SegmentDistance(p, polygon[i], polygon[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// PolygonDistance returns the unsigned distance from p to a polygon region:
// 0 if p lies inside or on the boundary, otherwise the distance to the
// nearest edge. Polygons with fewer than 3 points have no interior.
func PolygonDistance(p Point2D, polygon []Point2D) float64 {
	d := BoundaryDistance(p, polygon)
	if d == 0 || PointInPolygon(p, polygon) {
		return 0
	}
	return d
}

// crossProduct computes the cross product of vectors OA and OB.
// PolygonArea returns the enclosed area of a simple polygon (shoelace
// formula). The sign of the winding is discarded.
func PolygonArea(polygon []Point2D) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := polygon[i], polygon[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed polyline through the points.
func Perimeter(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}
	var sum float64
	for i := range polygon {
		sum += polygon[i].Distance(polygon[(i+1)%len(polygon)])
	}
	return sum
}

func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
