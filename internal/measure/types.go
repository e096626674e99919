// Package measure runs calibrated measurement sessions: it owns the
// calibration state and the detected reference/tool pair, and turns fitted
// pixel values into physical measurement records.
package measure

import (
	"errors"
	"fmt"
	"strings"

	"tool-gauge/internal/fit"
)

var (
	// ErrNotCalibrated is returned when measuring before a scale is set.
	ErrNotCalibrated = errors.New("reference scale not set")
	// ErrNoToolDetected is returned when measuring without a tool object.
	ErrNoToolDetected = errors.New("no tool detected")
	// ErrNoReferenceDetected is returned when setting the scale without a
	// reference object.
	ErrNoReferenceDetected = errors.New("no reference detected")
	// ErrIncompletePointSet is returned when the manual protocol is asked
	// to finish before four points have been collected.
	ErrIncompletePointSet = errors.New("incomplete point set")
)

// DefaultAccuracy is the precision-mode uncertainty in millimeters (0.5 µm).
const DefaultAccuracy = 0.0005

// State is the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateReferenceCalibrated
	StateMeasured
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReferenceCalibrated:
		return "reference calibrated"
	case StateMeasured:
		return "measured"
	default:
		return "unknown"
	}
}

// View is the camera view a record belongs to.
type View int

const (
	ViewTop View = iota
	ViewSide
)

// Views lists every view in display order.
var Views = []View{ViewTop, ViewSide}

func (v View) String() string {
	switch v {
	case ViewTop:
		return "top_view"
	case ViewSide:
		return "side_view"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// MarshalText encodes the view by name so it can key JSON maps.
func (v View) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a view name.
func (v *View) UnmarshalText(text []byte) error {
	parsed, err := ParseView(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseView parses "top", "side", "top_view" or "side_view".
func ParseView(s string) (View, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_view") {
	case "top":
		return ViewTop, nil
	case "side":
		return ViewSide, nil
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// Record is one calibrated measurement. Uncertainty is set only when
// precision mode was on when the record was produced.
type Record struct {
	Kind        fit.Kind `json:"kind"`
	Value       float64  `json:"value"`
	Uncertainty *float64 `json:"uncertainty,omitempty"`
}

// HasUncertainty reports whether the record carries an uncertainty.
func (r Record) HasUncertainty() bool {
	return r.Uncertainty != nil
}

// clone returns a copy that shares no memory with r.
func (r Record) clone() Record {
	if r.Uncertainty != nil {
		u := *r.Uncertainty
		r.Uncertainty = &u
	}
	return r
}

func (r Record) String() string {
	if r.Uncertainty != nil {
		return fmt.Sprintf("%s: %.4f ±%.4f", r.Kind, r.Value, *r.Uncertainty)
	}
	return fmt.Sprintf("%s: %.4f", r.Kind, r.Value)
}

// Config holds the operator's session settings.
type Config struct {
	ReferenceSize float64      // physical size of the reference object
	Strategy      fit.Strategy // automatic or manual fitting
	Kind          fit.Kind     // kind produced by the manual point protocol
	Precision     bool         // attach Accuracy to new records
	Accuracy      float64      // fixed precision-mode uncertainty
}

// DefaultConfig returns a configuration for the default ₹5 coin reference.
func DefaultConfig() Config {
	return Config{
		ReferenceSize: 23.0,
		Strategy:      fit.Automatic,
		Kind:          fit.OuterDiameter,
		Accuracy:      DefaultAccuracy,
	}
}
