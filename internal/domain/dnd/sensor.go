package dnd

import "math"

// DefaultActivationDistance is how far the pointer must travel before a press becomes a drag
const DefaultActivationDistance = 8.0

// Point is a pointer position in screen units
type Point struct {
	X, Y float64
}

func (p Point) distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// SensorState is the pointer state
type SensorState int

const (
	StateIdle SensorState = iota
	StatePending
	StateDragging
)

func (s SensorState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Drop is a completed drag: what was dragged and what it was released over
type Drop struct {
	ActiveID string
	OverID   string
}

// Sensor turns raw pointer events into drops. Small movements after a press are
// treated as a click and never start a drag.
type Sensor struct {
	// Disabled, when set, refuses presses on draggables it reports true for
	Disabled func(activeID string) bool

	activation float64
	state      SensorState
	active     string
	origin     Point
}

// NewSensor creates a sensor; a non-positive distance uses DefaultActivationDistance
func NewSensor(activation float64) *Sensor {
	if activation <= 0 {
		activation = DefaultActivationDistance
	}
	return &Sensor{activation: activation}
}

// State returns the current pointer state
func (s *Sensor) State() SensorState {
	return s.state
}

// Active returns the id being pressed or dragged, empty when idle
func (s *Sensor) Active() string {
	return s.active
}

// Press arms the sensor on a draggable and reports whether it was armed
func (s *Sensor) Press(activeID string, at Point) bool {
	if s.Disabled != nil && s.Disabled(activeID) {
		s.Cancel()
		return false
	}
	s.state = StatePending
	s.active = activeID
	s.origin = at
	return true
}

// Move reports whether the pointer is dragging after this movement
func (s *Sensor) Move(to Point) bool {
	if s.state == StatePending && s.origin.distance(to) >= s.activation {
		s.state = StateDragging
	}
	return s.state == StateDragging
}

// Release ends the gesture. overID is the droppable under the pointer, empty for none.
func (s *Sensor) Release(overID string) (Drop, bool) {
	dragging := s.state == StateDragging
	active := s.active
	s.Cancel()
	if !dragging || overID == "" {
		return Drop{}, false
	}
	return Drop{ActiveID: active, OverID: overID}, true
}

// Cancel aborts the gesture without a drop
func (s *Sensor) Cancel() {
	s.state = StateIdle
	s.active = ""
	s.origin = Point{}
}
