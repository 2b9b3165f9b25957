package event

import "github.com/go-gl/mathgl/mgl64"

// TickCompleted is published after every successful simulation step.
// Observers (orbit-line redraw, frame broadcast) key off SimulationTime.
type TickCompleted struct {
	SimulationTime float64
}

// TimeReset is published when simulation time is zeroed. Playback state
// is unaffected.
type TimeReset struct{}

// BodyDestroyed carries one collision/merge destruction for rendering
// effects and hierarchy repair.
type BodyDestroyed struct {
	ID               string
	RadiusM          float64
	ImpactPosition   mgl64.Vec3
	RelativeVelocity mgl64.Vec3
	Annihilated      bool
}

// HierarchyCorrected summarizes a validator pass that changed parent
// assignments.
type HierarchyCorrected struct {
	RootID     string
	Reassigned int
}
