package fit

import (
	"fmt"
	"log"
	"math"

	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// outerDiameter fits the minimum enclosing circle and, in precision mode,
// refines it into a least-squares circle.
func (f *Fitter) outerDiameter(p shape.Primitive, precision bool) (Result, error) {
	circle := geometry.MinEnclosingCircle(p)
	method := MethodEnclosingCircle

	if precision {
		refined, err := RefineCircle(p, circle)
		if err != nil {
			return Result{}, fmt.Errorf("fit %s: %w", OuterDiameter, err)
		}
		circle = refined
		method = MethodLeastSquaresCircle
	}

	return Result{
		Value:    circle.Diameter(),
		Method:   method,
		Center:   circle.Center,
		Radius:   circle.Radius,
		Residual: RadialRMS(p, circle),
	}, nil
}

// RefineCircle minimizes the sum of squared radial deviations
// (|p_i - c| - r)^2 over center and radius, starting from initial.
// The optimizer's best location is kept even if it stops on a line search
// failure, as long as it is no worse than the start.
func RefineCircle(points []geometry.Point2D, initial geometry.Circle) (geometry.Circle, error) {
	if len(points) == 0 {
		return initial, ErrDegenerateShape
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			var sum float64
			for _, p := range points {
				d := math.Hypot(p.X-x[0], p.Y-x[1]) - x[2]
				sum += d * d
			}
			return sum
		},
		Grad: func(grad, x []float64) {
			grad[0], grad[1], grad[2] = 0, 0, 0
			for _, p := range points {
				dx, dy := p.X-x[0], p.Y-x[1]
				dist := math.Hypot(dx, dy)
				res := dist - x[2]
				if dist > 0 {
					grad[0] -= 2 * res * dx / dist
					grad[1] -= 2 * res * dy / dist
				}
				grad[2] -= 2 * res
			}
		},
	}

	init := []float64{initial.Center.X, initial.Center.Y, initial.Radius}
	start := problem.Func(init)

	settings := &optimize.Settings{
		GradientThreshold: 1e-10,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		return initial, fmt.Errorf("refine circle: %w", err)
	}
	if err != nil {
		log.Printf("fit: circle refinement stopped early (%v), using best location", err)
	}
	if result.F > start || result.X[2] <= 0 {
		return initial, nil
	}

	return geometry.Circle{
		Center: geometry.Point2D{X: result.X[0], Y: result.X[1]},
		Radius: result.X[2],
	}, nil
}

// RadialRMS returns the root-mean-square deviation of the points from the
// circle boundary.
func RadialRMS(points []geometry.Point2D, c geometry.Circle) float64 {
	if len(points) == 0 {
		return 0
	}
	sq := make([]float64, len(points))
	for i, p := range points {
		d := p.Distance(c.Center) - c.Radius
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
