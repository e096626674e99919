package measure

import (
	"log"

	"tool-gauge/internal/calibration"
	"tool-gauge/internal/fit"
	"tool-gauge/internal/shape"
	"tool-gauge/pkg/geometry"
)

// Session owns the state of one measurement session: the calibration, the
// detected reference/tool pair, the manual point accumulator and one record
// per kind per view. A session is not safe for concurrent use.
type Session struct {
	cfg    Config
	fitter *fit.Fitter

	calib calibration.State
	state State
	view  View

	reference *shape.DetectedObject
	tool      *shape.DetectedObject

	points []geometry.Point2D

	records map[View]map[fit.Kind]Record

	listeners map[EventType][]EventListener
}

// NewSession creates an idle session.
func NewSession(cfg Config, fitter *fit.Fitter) *Session {
	if fitter == nil {
		fitter = fit.New()
	}
	if cfg.Accuracy <= 0 {
		cfg.Accuracy = DefaultAccuracy
	}
	s := &Session{
		cfg:     cfg,
		fitter:  fitter,
		calib:   calibration.State{ReferenceSize: cfg.ReferenceSize},
		records: make(map[View]map[fit.Kind]Record),
	}
	return s
}

// Config returns the current settings.
func (s *Session) Config() Config {
	return s.cfg
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Calibration returns a copy of the calibration state.
func (s *Session) Calibration() calibration.State {
	return s.calib
}

// View returns the active view.
func (s *Session) View() View {
	return s.view
}

// SetView selects the view that new records are stored under. The scale
// factor is shared by all views.
func (s *Session) SetView(v View) {
	if v == s.view {
		return
	}
	s.view = v
	s.emit(EventViewChanged, v)
}

// SetPrecision toggles precision mode for records produced from now on.
func (s *Session) SetPrecision(on bool) {
	s.cfg.Precision = on
}

// SetStrategy selects automatic or manual fitting.
func (s *Session) SetStrategy(st fit.Strategy) {
	s.cfg.Strategy = st
}

// SetKind selects the kind produced by the manual point protocol.
func (s *Session) SetKind(k fit.Kind) {
	s.cfg.Kind = k
}

// SetReferenceSize changes the reference object's physical size. The
// existing scale no longer matches the reference, so it is cleared.
func (s *Session) SetReferenceSize(size float64) {
	s.cfg.ReferenceSize = size
	s.calib.ReferenceSize = size
	s.ResetCalibration()
}

// ResetCalibration clears the scale factor and abandons any manual
// accumulation in progress.
func (s *Session) ResetCalibration() {
	s.calib.Reset()
	s.points = nil
	s.state = StateIdle
	s.emit(EventCalibrationReset, nil)
}

// Reset returns the session to idle, dropping detections, points and records.
func (s *Session) Reset() {
	s.ResetCalibration()
	s.reference = nil
	s.tool = nil
	s.records = make(map[View]map[fit.Kind]Record)
}

// Record returns the record for kind in the active view.
func (s *Session) Record(kind fit.Kind) (Record, bool) {
	return s.RecordIn(s.view, kind)
}

// RecordIn returns the record for kind in view v.
func (s *Session) RecordIn(v View, kind fit.Kind) (Record, bool) {
	r, ok := s.records[v][kind]
	return r.clone(), ok
}

// Records returns a copy of the records in view v.
func (s *Session) Records(v View) map[fit.Kind]Record {
	out := make(map[fit.Kind]Record, len(s.records[v]))
	for k, r := range s.records[v] {
		out[k] = r.clone()
	}
	return out
}

// HasRecords reports whether any view holds a record.
func (s *Session) HasRecords() bool {
	for _, recs := range s.records {
		if len(recs) > 0 {
			return true
		}
	}
	return false
}

// calibrate applies a reference pixel measurement to the session scale.
func (s *Session) calibrate(pixels float64) error {
	if err := s.calib.Apply(pixels); err != nil {
		return err
	}
	s.state = StateReferenceCalibrated
	log.Printf("measure: scale set to %.4f px/unit (reference %.3f = %.2f px)",
		s.calib.PixelsPerUnit, s.calib.ReferenceSize, pixels)
	s.emit(EventCalibrated, s.calib)
	return nil
}

// record converts a pixel value into a stored record for the active view.
func (s *Session) record(kind fit.Kind, pixels float64) Record {
	r := Record{Kind: kind, Value: s.calib.ToPhysical(pixels)}
	if s.cfg.Precision {
		u := s.cfg.Accuracy
		r.Uncertainty = &u
	}

	recs := s.records[s.view]
	if recs == nil {
		recs = make(map[fit.Kind]Record)
		s.records[s.view] = recs
	}
	if _, ok := recs[kind]; ok {
		log.Printf("measure: replacing %s record in %s", kind, s.view)
	}
	recs[kind] = r
	s.state = StateMeasured
	s.emit(EventMeasured, r.clone())
	return r.clone()
}
