// Package sim contains the simulation stepper, the integrator contract,
// and the fixed-timestep loop that drives them.
package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/body"
)

// DestructionEvent reports one body destroyed by collision/merge during a
// step. Consumed by rendering clients for effects and by the hierarchy
// repair path.
type DestructionEvent struct {
	ID               string
	RadiusM          float64
	ImpactPosition   mgl64.Vec3
	RelativeVelocity mgl64.Vec3

	// Annihilated marks a body fully consumed with no residual debris.
	Annihilated bool
}

// StepResult is the integrator's output contract. States carries the
// post-step Cartesian state per surviving body (including merged mass),
// Accelerations the last computed acceleration per body for
// debug/visualization.
type StepResult struct {
	States        map[string]body.PhysicsState
	Accelerations map[string]mgl64.Vec3
	Destroyed     []DestructionEvent
}

// Integrator advances active physics states by one scaled timestep. The
// lookup maps let the implementation run collision checks without
// re-deriving body metadata per pair. Implementations must be
// deterministic for identical inputs.
type Integrator interface {
	Advance(
		states map[string]body.PhysicsState,
		dt float64,
		radiusByID map[string]float64,
		isStarByID map[string]bool,
		kindByID map[string]body.Kind,
	) StepResult
}
