package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
)

type countingSystem struct {
	ticks int
	err   error
}

func (c *countingSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (c *countingSystem) Update(time.Duration) error {
	c.ticks++
	return c.err
}

func TestLoopRunsFixedSteps(t *testing.T) {
	sys := &countingSystem{}
	r := coresys.NewRunner()
	r.Register(sys)

	loop := NewLoop(r, time.Millisecond, time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx); err != nil {
		t.Fatalf("cancelled run returned %v", err)
	}
	if sys.ticks == 0 {
		t.Error("no ticks ran in 100ms at a 1ms step")
	}
}

func TestLoopFailStopsOnTickError(t *testing.T) {
	boom := errors.New("boom")
	r := coresys.NewRunner()
	r.Register(&countingSystem{err: boom})

	loop := NewLoop(r, time.Millisecond, time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := loop.Run(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the tick error", err)
	}
}
