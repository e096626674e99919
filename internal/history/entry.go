// Package history stores saved measurement sessions and exports them.
package history

import (
	"errors"
	"time"

	"tool-gauge/internal/fit"
	"tool-gauge/internal/measure"

	"github.com/google/uuid"
)

// ErrNothingToSave is returned when a session has no records in any view.
var ErrNothingToSave = errors.New("no measurements to save")

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// Measurement is a stored value with its optional uncertainty.
type Measurement struct {
	Value       float64  `json:"value"`
	Uncertainty *float64 `json:"uncertainty,omitempty"`
}

// Metadata is the operator-supplied context of a saved session.
type Metadata struct {
	ToolID   string `json:"tool_id"`
	Operator string `json:"operator"`
	Notes    string `json:"notes"`
}

// Entry is one saved session.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Metadata `json:"metadata"`

	Views map[measure.View]map[fit.Kind]Measurement `json:"views"`
}

// FromSession snapshots the records of every view in s.
func FromSession(s *measure.Session, meta Metadata, now time.Time) (*Entry, error) {
	if !s.HasRecords() {
		return nil, ErrNothingToSave
	}

	e := &Entry{
		ID:        uuid.New().String(),
		Timestamp: now,
		Metadata:  meta,
		Views:     make(map[measure.View]map[fit.Kind]Measurement),
	}
	for _, v := range measure.Views {
		recs := s.Records(v)
		if len(recs) == 0 {
			continue
		}
		m := make(map[fit.Kind]Measurement, len(recs))
		for kind, r := range recs {
			stored := Measurement{Value: r.Value}
			if r.Uncertainty != nil {
				u := *r.Uncertainty
				stored.Uncertainty = &u
			}
			m[kind] = stored
		}
		e.Views[v] = m
	}
	return e, nil
}

// Get returns the measurement of kind in view v.
func (e *Entry) Get(v measure.View, kind fit.Kind) (Measurement, bool) {
	m, ok := e.Views[v][kind]
	return m, ok
}
