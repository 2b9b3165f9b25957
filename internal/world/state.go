// Package world owns the shared simulation state: the body collection,
// the per-tick acceleration store, and playback state.
package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/body"
)

// State is the explicit state container handed into each component.
// Accessed only from the simulation goroutine: single writer per tick,
// no locks needed. Iteration order over bodies is insertion order, which
// keeps ticks deterministic for a fixed input sequence.
type State struct {
	order  []string
	bodies map[string]*body.Body

	// accelerations is a separate store consumed by debug/visualization,
	// refreshed from each step result.
	accelerations map[string]mgl64.Vec3

	// SimulationTime is monotonic accumulated sim seconds. Reset zeroes
	// it without touching Paused or TimeScale.
	SimulationTime float64
	Paused         bool
	TimeScale      float64
}

func NewState() *State {
	return &State{
		bodies:        make(map[string]*body.Body, 64),
		accelerations: make(map[string]mgl64.Vec3, 64),
		TimeScale:     1.0,
	}
}

// Add registers a body. Re-adding an existing ID replaces the body in
// place and keeps its original iteration position.
func (s *State) Add(b *body.Body) {
	if _, exists := s.bodies[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	s.bodies[b.ID] = b
}

func (s *State) Get(id string) *body.Body {
	return s.bodies[id]
}

func (s *State) Len() int { return len(s.bodies) }

// All visits every body in insertion order.
func (s *State) All(fn func(*body.Body)) {
	for _, id := range s.order {
		fn(s.bodies[id])
	}
}

// Bodies returns all bodies in insertion order.
func (s *State) Bodies() []*body.Body {
	out := make([]*body.Body, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bodies[id])
	}
	return out
}

// ActiveStars returns Active star bodies in insertion order.
func (s *State) ActiveStars() []*body.Body {
	var stars []*body.Body
	for _, id := range s.order {
		if b := s.bodies[id]; b.Active() && b.IsStar() {
			stars = append(stars, b)
		}
	}
	return stars
}

// SetAcceleration records a body's last computed acceleration (m/s²).
func (s *State) SetAcceleration(id string, a mgl64.Vec3) {
	s.accelerations[id] = a
}

// Acceleration returns the last recorded acceleration for a body.
func (s *State) Acceleration(id string) (mgl64.Vec3, bool) {
	a, ok := s.accelerations[id]
	return a, ok
}

// ClearAccelerations drops stale vectors at the start of a tick.
func (s *State) ClearAccelerations() {
	clear(s.accelerations)
}

// ResetTime zeroes simulation time. Playback state (Paused, TimeScale)
// is deliberately left untouched: reset is time-only.
func (s *State) ResetTime() {
	s.SimulationTime = 0
}
