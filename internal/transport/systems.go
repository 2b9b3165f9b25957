package transport

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/core/event"
	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
	"github.com/tanepiper/teskooano-sub012/internal/orbit"
	"github.com/tanepiper/teskooano-sub012/internal/sim"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

// maxCommandsPerTick bounds input work per tick so a chatty client
// cannot starve the integrator.
const maxCommandsPerTick = 32

// orbitRenderScale converts meters to render units for orbit polylines
// (1 render unit = 1e9 m keeps solar-system paths in friendly ranges).
const orbitRenderScale = 1e-9

// CommandSystem drains client commands at tick start. Phase 0 (Input).
type CommandSystem struct {
	srv     *Server
	state   *world.State
	stepper *sim.Stepper
	log     *zap.Logger
}

func NewCommandSystem(srv *Server, state *world.State, stepper *sim.Stepper, log *zap.Logger) *CommandSystem {
	return &CommandSystem{srv: srv, state: state, stepper: stepper, log: log}
}

func (s *CommandSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *CommandSystem) Update(_ time.Duration) error {
	for i := 0; i < maxCommandsPerTick; i++ {
		select {
		case in := <-s.srv.Commands():
			s.apply(in)
		default:
			return nil
		}
	}
	return nil
}

func (s *CommandSystem) apply(in InboundCommand) {
	switch in.Cmd.Type {
	case "pause":
		s.state.Paused = true
	case "resume":
		s.state.Paused = false
	case "timescale":
		if in.Cmd.TimeScale > 0 {
			s.state.TimeScale = in.Cmd.TimeScale
		}
	case "reset":
		s.stepper.Reset()
	case "orbit":
		s.sendOrbit(in)
	default:
		s.log.Warn("unknown command", zap.String("type", in.Cmd.Type))
	}
}

func (s *CommandSystem) sendOrbit(in InboundCommand) {
	frame := OrbitFrame{Type: "orbit", BodyID: in.Cmd.BodyID}
	defer in.Client.Send(&frame)

	b := s.state.Get(in.Cmd.BodyID)
	if b == nil || b.Orbit == nil {
		return
	}
	segments := in.Cmd.Segments
	if segments <= 0 || segments > 4096 {
		segments = 128
	}
	for _, p := range orbit.SamplePath(*b.Orbit, segments, orbitRenderScale) {
		frame.Points = append(frame.Points, [3]float64{p.X(), p.Y(), p.Z()})
	}
}

// BroadcastSystem publishes tick frames every N ticks and relays
// destruction/reset events to all clients. Phase 3 (Output).
type BroadcastSystem struct {
	srv       *Server
	state     *world.State
	every     int
	tickCount int
}

func NewBroadcastSystem(srv *Server, state *world.State, bus *event.Bus, every int) *BroadcastSystem {
	if every <= 0 {
		every = 1
	}
	s := &BroadcastSystem{srv: srv, state: state, every: every}

	// Event handlers run on the simulation goroutine during dispatch;
	// Broadcast itself is safe to call from there.
	event.Subscribe(bus, func(ev event.BodyDestroyed) {
		s.srv.Broadcast(&DestroyedFrame{
			Type:             "destroyed",
			ID:               ev.ID,
			RadiusM:          ev.RadiusM,
			ImpactPosition:   vec(ev.ImpactPosition),
			RelativeVelocity: vec(ev.RelativeVelocity),
			Annihilated:      ev.Annihilated,
		})
	})
	event.Subscribe(bus, func(event.TimeReset) {
		s.srv.Broadcast(&ResetFrame{Type: "time_reset"})
	})
	return s
}

func (s *BroadcastSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *BroadcastSystem) Update(_ time.Duration) error {
	s.tickCount++
	if s.tickCount%s.every != 0 {
		return nil
	}

	frame := TickFrame{Type: "tick", SimTime: s.state.SimulationTime}
	s.state.All(func(b *body.Body) {
		bf := BodyFrame{
			ID:               b.ID,
			Kind:             string(b.Kind),
			Status:           string(b.Status),
			ParentID:         b.EffectiveParent(),
			MassKg:           b.MassKg,
			RadiusM:          b.RadiusM,
			RotationAngleRad: b.RotationAngleRad,
		}
		if b.Phys != nil {
			bf.Position = vec(b.Phys.Position)
			bf.Velocity = vec(b.Phys.Velocity)
		}
		if a, ok := s.state.Acceleration(b.ID); ok {
			bf.Acceleration = vec(a)
		}
		frame.Bodies = append(frame.Bodies, bf)
	})
	s.srv.Broadcast(&frame)
	return nil
}

func vec(v mgl64.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}
