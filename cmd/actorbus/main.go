package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/actorbus/engine/internal/config"
	coresys "github.com/actorbus/engine/internal/core/system"
	"github.com/actorbus/engine/internal/data"
	"github.com/actorbus/engine/internal/debugview"
	"github.com/actorbus/engine/internal/persist"
	"github.com/actorbus/engine/internal/scripting"
	"github.com/actorbus/engine/internal/sim"
	"github.com/actorbus/engine/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              actorbus  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        scoped message bus · actors        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/actorbus.toml"
	if p := os.Getenv("ACTORBUS_CONFIG"); p != "" {
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

	printBanner()

	// 3. Load data
	printSection("Data")
	templates, err := data.LoadTemplateTable(cfg.Sim.Templates)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	printStat("Actor templates", templates.Count())

	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	printStat("Lua behaviors", scripts.Count())

	// 4. Build the world
	world := sim.NewWorld(sim.Deps{Templates: templates, Scripts: scripts, Log: log})
	if err := world.CheckTemplates(); err != nil {
		return err
	}
	printStat("Component types", world.Components().Count())
	fmt.Println()

	runner := coresys.NewRunner()
	runner.Register(system.NewActorSystem(world, log))

	// 5. Optional PostgreSQL snapshots
	var persistSys *system.PersistSystem
	restored := false
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("Migrations applied (version %d)", version))

		repo := persist.NewSnapshotRepo(db, 32)
		stored, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		printStat("Snapshots stored", stored)

		if cfg.Database.RestoreOnStart {
			restored, err = restoreLatest(ctx, repo, world)
			if err != nil {
				return err
			}
		}
		fmt.Println()

		persistSys = system.NewPersistSystem(world.Actors(), repo, runner.Ticks,
			cfg.Database.SnapshotEveryTicks, cfg.Database.SnapshotTimeout, log)
		runner.Register(persistSys)
	}

	// 6. Level, unless a snapshot already populated the world
	printSection("World")
	if cfg.Sim.Level != "" && !restored {
		lvl, err := data.LoadLevel(cfg.Sim.Level)
		if err != nil {
			return fmt.Errorf("level: %w", err)
		}
		if err := world.LoadLevel(lvl); err != nil {
			return err
		}
	}
	printStat("Actors placed", world.Actors().Size())
	if cfg.Sim.DebugDisplay {
		world.SetDebugDisplay(true)
	}
	fmt.Println()

	// 7. Optional debug view
	var debugSrv *debugview.Server
	if cfg.DebugView.Enabled {
		hub := debugview.NewHub(world.Root(), cfg.DebugView.FrameBuffer, log)
		debugSrv, err = debugview.NewServer(cfg.DebugView.BindAddress, hub, log)
		if err != nil {
			return fmt.Errorf("debug view: %w", err)
		}
		go debugSrv.Serve()
		runner.Register(system.NewDebugInputSystem(hub, world, log))
		runner.Register(system.NewDebugViewSystem(hub, runner.Ticks))
	}

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	if debugSrv != nil {
		printReady(fmt.Sprintf("Debug view on http://%s/ws", debugSrv.Addr()))
	}
	printReady(fmt.Sprintf("Game loop running (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Sim.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return shutdown(world, persistSys, debugSrv, log)
		}
	}
}

// restoreLatest rebuilds the world from the newest stored snapshot and
// reports whether there was one.
func restoreLatest(ctx context.Context, repo *persist.SnapshotRepo, world *sim.World) (bool, error) {
	snap, err := repo.Latest(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore: %w", err)
	}
	n, err := world.Restore(snap)
	if err != nil {
		return false, err
	}
	printOK(fmt.Sprintf("Restored %d actors from tick %d", n, snap.Tick))
	return true, nil
}

// shutdown saves a final snapshot, stops the debug view and lets every actor
// release what it holds.
func shutdown(world *sim.World, persistSys *system.PersistSystem, debugSrv *debugview.Server, log *zap.Logger) error {
	var errs []error
	if persistSys != nil {
		if err := persistSys.SaveNow(); err != nil {
			errs = append(errs, fmt.Errorf("final snapshot: %w", err))
		}
	}
	if debugSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := debugSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("debug view: %w", err))
		}
	}
	world.Shutdown()
	log.Info("stopped")
	return errors.Join(errs...)
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
