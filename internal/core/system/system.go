package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain transport command queue
	PhasePreUpdate              // 1: dispatch last tick's events
	PhaseUpdate                 // 2: advance the simulation
	PhaseOutput                 // 3: build + send frames
	PhasePersist                // 4: periodic snapshot
)

// System is the interface every tick system implements. A non-nil error
// from Update fails the whole tick: the loop stops rather than continuing
// in a possibly-corrupt state. Systems with recoverable failure modes
// (e.g. a transient snapshot write error) log and return nil.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}
