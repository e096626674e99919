package measure

// EventType identifies session events.
type EventType int

const (
	// EventCalibrated fires when a scale is set. Data is calibration.State.
	EventCalibrated EventType = iota
	// EventMeasured fires when a record is stored. Data is Record.
	EventMeasured
	// EventCalibrationReset fires when the scale is cleared. Data is nil.
	EventCalibrationReset
	// EventViewChanged fires when the active view changes. Data is View.
	EventViewChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers a listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	if s.listeners == nil {
		s.listeners = make(map[EventType][]EventListener)
	}
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Session) emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}
