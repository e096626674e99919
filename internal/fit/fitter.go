package fit

import (
	"fmt"

	"tool-gauge/internal/shape"
)

// Options holds the point-count thresholds below which automatic fitting
// falls back to bounding-box extents.
type Options struct {
	MinCirclePoints int // outer and inner diameter
	MinRectPoints   int // height
	MaskMargin      int // blank border around the rasterized shape, in pixels
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		MinCirclePoints: 5,
		MinRectPoints:   2,
		MaskMargin:      2,
	}
}

// Fitter computes raw pixel dimensions of primitives.
type Fitter struct {
	opts Options
}

// New creates a Fitter with default options.
func New() *Fitter {
	return &Fitter{opts: DefaultOptions()}
}

// Fit returns the pixel value of kind for the primitive.
func (f *Fitter) Fit(p shape.Primitive, kind Kind, strategy Strategy, precision bool) (float64, error) {
	res, err := f.FitDetail(p, kind, strategy, precision)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// FitDetail is Fit with the method and fitted geometry attached.
//
// Manual strategy always uses the bounding box: max side for the outer
// diameter, min side for the inner diameter and the box height for height.
// Automatic strategy uses the same box values when the primitive is too
// sparse to fit, and an error only when it is empty.
func (f *Fitter) FitDetail(p shape.Primitive, kind Kind, strategy Strategy, precision bool) (Result, error) {
	if len(p) == 0 {
		return Result{}, fmt.Errorf("fit %s: %w", kind, ErrDegenerateShape)
	}

	box := p.Bounds()
	boxValue := func() float64 {
		switch kind {
		case OuterDiameter:
			return box.MaxSide()
		case InnerDiameter:
			return box.MinSide()
		default:
			return box.Height
		}
	}

	switch kind {
	case OuterDiameter, InnerDiameter, Height:
	default:
		return Result{}, fmt.Errorf("fit: unknown kind %d", int(kind))
	}

	if strategy == Manual {
		return Result{Value: boxValue(), Method: MethodBoxManual}, nil
	}

	switch kind {
	case OuterDiameter:
		if len(p) < f.opts.MinCirclePoints {
			return Result{Value: boxValue(), Method: MethodBoxFallback}, nil
		}
		return f.outerDiameter(p, precision)
	case InnerDiameter:
		if len(p) < f.opts.MinCirclePoints {
			return Result{Value: boxValue(), Method: MethodBoxFallback}, nil
		}
		return f.innerDiameter(p, precision)
	default:
		if len(p) < f.opts.MinRectPoints {
			return Result{Value: boxValue(), Method: MethodBoxFallback}, nil
		}
		return f.height(p, precision), nil
	}
}
