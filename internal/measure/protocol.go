package measure

import (
	"fmt"

	"tool-gauge/internal/calibration"
	"tool-gauge/internal/fit"
	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"
)

// Protocol is one way of driving a session from operator input. Both
// variants share the session's calibration and record table.
type Protocol interface {
	// Name identifies the protocol in logs and UIs.
	Name() string
	// Calibrate sets the session scale from the reference input.
	Calibrate() error
	// Measure produces a record of kind from the tool input.
	Measure(kind fit.Kind) (Record, error)
}

// Automatic returns the detection-driven protocol for this session.
func (s *Session) Automatic() *AutomaticProtocol {
	return &AutomaticProtocol{s: s}
}

// Manual returns the four-point protocol for this session.
func (s *Session) Manual() *ManualProtocol {
	return &ManualProtocol{s: s}
}

// AutomaticProtocol measures a tool primitive against a reference primitive
// chosen by boundary association.
type AutomaticProtocol struct {
	s *Session
}

var _ Protocol = (*AutomaticProtocol)(nil)

// Name implements Protocol.
func (a *AutomaticProtocol) Name() string { return "automatic" }

// SetObjects replaces the detected pair. Any manual accumulation in
// progress is abandoned; the scale factor is kept.
func (a *AutomaticProtocol) SetObjects(ref, tool shape.DetectedObject) {
	ref.Role = shape.RoleReference
	tool.Role = shape.RoleTool
	a.s.reference = &ref
	a.s.tool = &tool
	a.s.points = nil
}

// Select associates two clicks with primitives (first click reference,
// second click tool) and stores the pair.
func (a *AutomaticProtocol) Select(refClick, toolClick geometry.Point2D, primitives []shape.Primitive) error {
	ref, tool, err := shape.SelectPair(refClick, toolClick, primitives)
	if err != nil {
		return err
	}
	a.SetObjects(ref, tool)
	return nil
}

// Objects returns the current detected pair, if any.
func (a *AutomaticProtocol) Objects() (ref, tool *shape.DetectedObject) {
	return a.s.reference, a.s.tool
}

// Calibrate sets the scale from the larger bounding-box side of the
// reference object.
func (a *AutomaticProtocol) Calibrate() error {
	if a.s.reference == nil {
		return ErrNoReferenceDetected
	}
	return a.s.calibrate(calibration.BoxExtent(a.s.reference.Box))
}

// Measure fits the tool primitive with the session strategy and precision
// mode. The scale from the last calibration is reused.
func (a *AutomaticProtocol) Measure(kind fit.Kind) (Record, error) {
	rec, _, err := a.MeasureDetail(kind)
	return rec, err
}

// MeasureDetail is Measure with the fit details attached.
func (a *AutomaticProtocol) MeasureDetail(kind fit.Kind) (Record, fit.Result, error) {
	if !a.s.calib.IsSet() {
		return Record{}, fit.Result{}, ErrNotCalibrated
	}
	if a.s.tool == nil {
		return Record{}, fit.Result{}, ErrNoToolDetected
	}

	res, err := a.s.fitter.FitDetail(a.s.tool.Primitive, kind, a.s.cfg.Strategy, a.s.cfg.Precision)
	if err != nil {
		return Record{}, fit.Result{}, err
	}
	return a.s.record(kind, res.Value), res, nil
}

// ManualProtocol accumulates four clicked points: two across the reference
// and two across the tool.
type ManualProtocol struct {
	s *Session
}

var _ Protocol = (*ManualProtocol)(nil)

// Name implements Protocol.
func (m *ManualProtocol) Name() string { return "manual" }

// Points returns a copy of the accumulated points.
func (m *ManualProtocol) Points() []geometry.Point2D {
	out := make([]geometry.Point2D, len(m.s.points))
	copy(out, m.s.points)
	return out
}

// AddPoint appends a point. The second point calibrates the session from
// the reference pair; if that fails the point is discarded and the error
// returned. The fourth point completes the measurement of the configured
// kind, returns its record and empties the accumulator.
func (m *ManualProtocol) AddPoint(p geometry.Point2D) (*Record, error) {
	if len(m.s.points) >= 4 {
		m.s.points = nil
	}
	m.s.points = append(m.s.points, p)

	switch len(m.s.points) {
	case 2:
		if err := m.Calibrate(); err != nil {
			m.s.points = m.s.points[:1]
			return nil, err
		}
	case 4:
		rec, err := m.Measure(m.s.cfg.Kind)
		if err != nil {
			return nil, err
		}
		return &rec, nil
	}
	return nil, nil
}

// RemoveLastPoint drops the most recent point. It does nothing when the
// accumulator is empty and never changes the session state.
func (m *ManualProtocol) RemoveLastPoint() {
	if n := len(m.s.points); n > 0 {
		m.s.points = m.s.points[:n-1]
	}
}

// Calibrate sets the scale from the distance between the first two points.
// Manual sessions always recalibrate.
func (m *ManualProtocol) Calibrate() error {
	if len(m.s.points) < 2 {
		return fmt.Errorf("%w: reference needs 2 points, have %d", ErrIncompletePointSet, len(m.s.points))
	}
	return m.s.calibrate(calibration.PairDistance(m.s.points[0], m.s.points[1]))
}

// Measure consumes the four accumulated points and records the distance
// between the last two as kind.
func (m *ManualProtocol) Measure(kind fit.Kind) (Record, error) {
	if len(m.s.points) < 4 {
		return Record{}, fmt.Errorf("%w: need 4 points, have %d", ErrIncompletePointSet, len(m.s.points))
	}
	if !m.s.calib.IsSet() {
		if err := m.Calibrate(); err != nil {
			return Record{}, err
		}
	}

	pixels := m.s.points[2].Distance(m.s.points[3])
	m.s.points = nil
	return m.s.record(kind, pixels), nil
}

// Finish completes the measurement of the configured kind.
func (m *ManualProtocol) Finish() (Record, error) {
	return m.Measure(m.s.cfg.Kind)
}
