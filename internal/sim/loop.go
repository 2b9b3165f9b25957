package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tanepiper/teskooano-sub012/internal/core/event"
	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
)

// Loop is the accumulator-based fixed-timestep scheduler: wall-clock time
// accumulates between wake-ups and the runner executes whole fixed steps,
// decoupling simulation correctness from the wake-up rate. Cancellation
// is cooperative and completes the current tick.
type Loop struct {
	runner   *coresys.Runner
	step     time.Duration
	wakeRate time.Duration
	log      *zap.Logger

	// maxCatchUp bounds how many fixed steps one wake-up may run, so a
	// long stall degrades to slow-motion instead of a catch-up spiral.
	maxCatchUp int
}

func NewLoop(runner *coresys.Runner, step, wakeRate time.Duration, log *zap.Logger) *Loop {
	if step <= 0 {
		step = 10 * time.Millisecond
	}
	if wakeRate <= 0 {
		wakeRate = step
	}
	return &Loop{
		runner:     runner,
		step:       step,
		wakeRate:   wakeRate,
		log:        log,
		maxCatchUp: 8,
	}
}

// Run drives the loop until the context is cancelled or a tick fails.
// A tick error stops the loop entirely (fail-stop) rather than risking
// silent state corruption across subsequent ticks.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.wakeRate)
	defer ticker.Stop()

	last := time.Now()
	var accumulator time.Duration

	for {
		select {
		case <-ctx.Done():
			l.log.Info("simulation loop stopped")
			return nil
		case now := <-ticker.C:
			accumulator += now.Sub(last)
			last = now

			steps := 0
			for accumulator >= l.step && steps < l.maxCatchUp {
				if err := l.runner.Tick(l.step); err != nil {
					l.log.Error("tick failed, stopping loop", zap.Error(err))
					return err
				}
				accumulator -= l.step
				steps++
			}
			if accumulator >= l.step {
				// Too far behind; drop the backlog.
				l.log.Warn("simulation running behind",
					zap.Duration("dropped", accumulator))
				accumulator = 0
			}
		}
	}
}

// DispatchSystem rotates the event bus at tick start and delivers last
// tick's events. Phase 1 (PreUpdate).
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DispatchSystem) Update(_ time.Duration) error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	return nil
}
