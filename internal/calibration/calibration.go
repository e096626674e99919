// Package calibration converts a reference object of known physical size
// into a pixels-per-unit scale factor.
package calibration

import (
	"errors"
	"fmt"
	"math"

	"tool-gauge/pkg/geometry"
)

// ErrInvalidReference is returned when the reference size or its pixel
// measurement is not a positive finite number.
var ErrInvalidReference = errors.New("invalid reference")

// Calibrate returns pixelsPerUnit = pixelMeasurement / physicalSize.
func Calibrate(physicalSize, pixelMeasurement float64) (float64, error) {
	if !positive(physicalSize) {
		return 0, fmt.Errorf("%w: physical size %g", ErrInvalidReference, physicalSize)
	}
	if !positive(pixelMeasurement) {
		return 0, fmt.Errorf("%w: pixel measurement %g", ErrInvalidReference, pixelMeasurement)
	}
	return pixelMeasurement / physicalSize, nil
}

// BoxExtent is the pixel measurement of a reference taken from its bounding
// box: the larger of width and height.
func BoxExtent(box geometry.Rect) float64 {
	return box.MaxSide()
}

// PairDistance is the pixel measurement of a reference taken from two
// manually clicked points.
func PairDistance(a, b geometry.Point2D) float64 {
	return a.Distance(b)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// State is the calibration of one measurement session. PixelsPerUnit is
// zero until a reference has been calibrated.
type State struct {
	ReferenceSize float64 `json:"reference_size"`
	PixelsPerUnit float64 `json:"pixels_per_unit,omitempty"`
}

// IsSet reports whether a scale factor is available.
func (s State) IsSet() bool {
	return s.PixelsPerUnit > 0
}

// Apply calibrates against a pixel measurement of the reference and stores
// the result. On error the previous scale is left untouched.
func (s *State) Apply(pixelMeasurement float64) error {
	ppu, err := Calibrate(s.ReferenceSize, pixelMeasurement)
	if err != nil {
		return err
	}
	s.PixelsPerUnit = ppu
	return nil
}

// Reset clears the scale factor, keeping the reference size.
func (s *State) Reset() {
	s.PixelsPerUnit = 0
}

// ToPhysical converts a pixel distance into physical units.
// The caller must check IsSet first.
func (s State) ToPhysical(pixels float64) float64 {
	return pixels / s.PixelsPerUnit
}
