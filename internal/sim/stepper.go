package sim

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/core/event"
	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
	"github.com/tanepiper/teskooano-sub012/internal/hierarchy"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

// DefaultMaxStepSeconds bounds the integrator step size regardless of
// wall-clock hitches. This is a stability guarantee, not a performance
// knob: uncapped steps push the integrator into regimes where orbits
// gain energy and blow up.
const DefaultMaxStepSeconds = 0.01

// Stepper advances the simulation by one tick and keeps shared state
// consistent. Phase 2 (Update); a tick error fail-stops the loop.
type Stepper struct {
	state   *world.State
	integ   Integrator
	bus     *event.Bus
	log     *zap.Logger
	maxStep float64
}

func NewStepper(state *world.State, integ Integrator, bus *event.Bus, log *zap.Logger, maxStep float64) *Stepper {
	if maxStep <= 0 {
		maxStep = DefaultMaxStepSeconds
	}
	return &Stepper{
		state:   state,
		integ:   integ,
		bus:     bus,
		log:     log,
		maxStep: maxStep,
	}
}

func (s *Stepper) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *Stepper) Update(dt time.Duration) error {
	return s.Tick(dt.Seconds())
}

// Tick runs one simulation step with a wall-clock delta in seconds.
func (s *Stepper) Tick(wallDt float64) error {
	if wallDt < 0 || math.IsNaN(wallDt) {
		return fmt.Errorf("invalid tick delta %v", wallDt)
	}
	if s.integ == nil {
		return fmt.Errorf("no integrator configured")
	}

	// Clamp before scaling so a stalled frame (tab background, GC pause)
	// can never produce a single huge integration step.
	dt := wallDt
	if dt > s.maxStep {
		dt = s.maxStep
	}

	// Paused skips integration; state stays readable.
	if s.state.Paused {
		return nil
	}

	scaled := dt * s.state.TimeScale
	s.state.SimulationTime += scaled

	states, radii, isStar, kinds := s.collectActive()

	result := s.integ.Advance(states, scaled, radii, isStar, kinds)

	s.applyDestructions(result.Destroyed)
	s.applyStates(result)
	s.updateRotations()

	event.Emit(s.bus, event.TickCompleted{SimulationTime: s.state.SimulationTime})
	return nil
}

// Reset zeroes simulation time only; paused/timeScale carry over.
func (s *Stepper) Reset() {
	s.state.ResetTime()
	event.Emit(s.bus, event.TimeReset{})
}

// collectActive filters to bodies participating in gravity and builds the
// parallel lookup maps the integrator needs for collision checks.
func (s *Stepper) collectActive() (map[string]body.PhysicsState, map[string]float64, map[string]bool, map[string]body.Kind) {
	states := make(map[string]body.PhysicsState, s.state.Len())
	radii := make(map[string]float64, s.state.Len())
	isStar := make(map[string]bool, s.state.Len())
	kinds := make(map[string]body.Kind, s.state.Len())

	s.state.All(func(b *body.Body) {
		if !b.Simulated() {
			return
		}
		ps := *b.Phys
		ps.MassKg = b.MassKg
		states[b.ID] = ps
		radii[b.ID] = b.RadiusM
		isStar[b.ID] = b.IsStar()
		kinds[b.ID] = b.Kind
	})
	return states, radii, isStar, kinds
}

// applyDestructions marks destroyed bodies (never deletes them), selects
// a replacement root when a parentless star died, and then runs one
// hierarchy validation pass for the structural event.
func (s *Stepper) applyDestructions(events []DestructionEvent) {
	if len(events) == 0 {
		return
	}

	rootDiedID := ""
	for _, ev := range events {
		b := s.state.Get(ev.ID)
		if b == nil {
			s.log.Warn("integrator destroyed unknown body", zap.String("id", ev.ID))
			continue
		}
		if hierarchy.WasRoot(b) {
			rootDiedID = b.ID
		}
		if ev.Annihilated {
			b.Status = body.StatusAnnihilated
		} else {
			b.Status = body.StatusDestroyed
		}
		s.log.Info("body destroyed",
			zap.String("id", ev.ID),
			zap.Bool("annihilated", ev.Annihilated))

		event.Emit(s.bus, event.BodyDestroyed{
			ID:               ev.ID,
			RadiusM:          ev.RadiusM,
			ImpactPosition:   ev.ImpactPosition,
			RelativeVelocity: ev.RelativeVelocity,
			Annihilated:      ev.Annihilated,
		})
	}

	if rootDiedID != "" {
		newRoot := hierarchy.SelectNewRoot(s.state, rootDiedID)
		if newRoot == nil {
			s.log.Error("root star destroyed with no surviving star")
		} else {
			s.log.Warn("root star destroyed",
				zap.String("new_root", newRoot.ID))
		}
	}

	reassigned := hierarchy.Validate(s.state, s.log)
	if reassigned > 0 {
		var rootIDStr string
		for _, star := range s.state.ActiveStars() {
			if star.Orphan() {
				rootIDStr = star.ID
				break
			}
		}
		event.Emit(s.bus, event.HierarchyCorrected{
			RootID:     rootIDStr,
			Reassigned: reassigned,
		})
	}
}

// applyStates publishes the step result back into the shared stores:
// physics states onto the bodies, accelerations into the debug store.
func (s *Stepper) applyStates(result StepResult) {
	for id, ps := range result.States {
		b := s.state.Get(id)
		if b == nil || !b.Active() || b.Phys == nil {
			continue
		}
		b.Phys.Position = ps.Position
		b.Phys.Velocity = ps.Velocity
		if ps.MassKg > 0 {
			b.MassKg = ps.MassKg
		}
	}

	s.state.ClearAccelerations()
	for id, a := range result.Accelerations {
		s.state.SetAcceleration(id, a)
	}
}

// updateRotations recomputes each body's rotation angle analytically from
// elapsed simulation time. Pure function of time, so it is exact and
// drift-free at any frame rate. Bodies without a rotation period are
// silently skipped.
func (s *Stepper) updateRotations() {
	simTime := s.state.SimulationTime
	s.state.All(func(b *body.Body) {
		if !b.Active() || b.SiderealRotationPeriodS <= 0 {
			return
		}
		frac := math.Mod(simTime/b.SiderealRotationPeriodS, 1)
		if frac < 0 {
			frac += 1
		}
		b.RotationAngleRad = frac * 2 * math.Pi
	})
}
