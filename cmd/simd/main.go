// simd is the celestial simulation daemon: it loads a star system from
// YAML catalogs and Lua scenarios, advances it on a fixed timestep, and
// streams body states to rendering clients over WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tanepiper/teskooano-sub012/internal/body"
	"github.com/tanepiper/teskooano-sub012/internal/catalog"
	"github.com/tanepiper/teskooano-sub012/internal/config"
	"github.com/tanepiper/teskooano-sub012/internal/core/event"
	coresys "github.com/tanepiper/teskooano-sub012/internal/core/system"
	"github.com/tanepiper/teskooano-sub012/internal/hierarchy"
	"github.com/tanepiper/teskooano-sub012/internal/persist"
	"github.com/tanepiper/teskooano-sub012/internal/scripting"
	"github.com/tanepiper/teskooano-sub012/internal/sim"
	"github.com/tanepiper/teskooano-sub012/internal/transport"
	"github.com/tanepiper/teskooano-sub012/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/simd.toml"
	if p := os.Getenv("SIMD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional PostgreSQL snapshot store
	var snapshotRepo *persist.SnapshotRepo
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		snapshotRepo = persist.NewSnapshotRepo(db)
		log.Info("snapshot store ready")
	}

	// 4. Load the star system: YAML catalog first, then Lua scenarios
	sys, err := catalog.LoadSystem(cfg.Data.SystemFile)
	if err != nil {
		return fmt.Errorf("load system: %w", err)
	}
	log.Info("system loaded",
		zap.String("name", sys.Name),
		zap.Int("bodies", len(sys.Bodies)))

	placed := make(map[string]*body.Body, len(sys.Bodies))
	for _, b := range sys.Bodies {
		placed[b.ID] = b
	}

	lua := scripting.NewEngine(log)
	defer lua.Close()
	scripted := 0
	err = lua.RunScenarios(cfg.Data.ScriptsDir, func(e catalog.BodyEntry) error {
		b, err := catalog.Build(e, placed)
		if err != nil {
			return err
		}
		placed[b.ID] = b
		sys.Bodies = append(sys.Bodies, b)
		scripted++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scenario scripts: %w", err)
	}
	if scripted > 0 {
		log.Info("scenario bodies added", zap.Int("count", scripted))
	}

	// 5. World state
	state := world.NewState()
	for _, b := range sys.Bodies {
		state.Add(b)
	}
	state.TimeScale = cfg.Simulation.TimeScale
	state.Paused = cfg.Simulation.StartPaused

	// Establish the invariants before the first tick.
	hierarchy.Validate(state, log)

	// 6. Simulation pipeline
	bus := event.NewBus()
	gravity := sim.NewGravity()
	if cfg.Simulation.SofteningM > 0 {
		gravity.SofteningM = cfg.Simulation.SofteningM
	}
	stepper := sim.NewStepper(state, gravity, bus, log, cfg.Simulation.MaxStepSeconds)

	wsServer := transport.NewServer(cfg.Network.BindAddress, cfg.Network.SendQueueSize, log)
	wsServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		wsServer.Shutdown(shutdownCtx)
	}()

	runner := coresys.NewRunner()
	runner.Register(transport.NewCommandSystem(wsServer, state, stepper, log))
	runner.Register(sim.NewDispatchSystem(bus))
	runner.Register(stepper)
	runner.Register(transport.NewBroadcastSystem(wsServer, state, bus, cfg.Network.BroadcastEvery))
	if snapshotRepo != nil {
		runner.Register(persist.NewSnapshotSystem(snapshotRepo, state, cfg.Database.SnapshotEvery, log))
	}

	// 7. Run until signalled; a tick error fail-stops the loop.
	loop := sim.NewLoop(runner, cfg.Simulation.Step, cfg.Simulation.WakeRate, log)
	log.Info("simulation loop starting",
		zap.Duration("step", cfg.Simulation.Step),
		zap.Float64("time_scale", state.TimeScale))

	runErr := loop.Run(ctx)

	// Final snapshot on the way out, whatever stopped the loop.
	if snapshotRepo != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := snapshotRepo.Save(saveCtx, state.SimulationTime, state.Bodies()); err != nil {
			log.Warn("final snapshot failed", zap.Error(err))
		}
		cancel()
	}
	return runErr
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
