package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blockbots/server/internal/audio"
	"github.com/blockbots/server/internal/config"
	"github.com/blockbots/server/internal/core/ecs"
	"github.com/blockbots/server/internal/core/event"
	coresys "github.com/blockbots/server/internal/core/system"
	"github.com/blockbots/server/internal/data"
	"github.com/blockbots/server/internal/persist"
	"github.com/blockbots/server/internal/scene"
	"github.com/blockbots/server/internal/scripting"
	"github.com/blockbots/server/internal/spawn"
	"github.com/blockbots/server/internal/system"
	"github.com/blockbots/server/internal/trace"
	"github.com/blockbots/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(sceneName string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             blockbots  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      headless robot delivery simulator    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscene:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", sceneName, seed)
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

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path("config/server.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBanner(cfg.Scene.Name, seed)

	// 3. Scene descriptors
	printSection("Data")
	scenes, err := data.LoadScenes(cfg.Scene.File)
	if err != nil {
		return fmt.Errorf("scenes: %w", err)
	}
	printStat("scenes", scenes.Count())
	sc, ok := scenes.Get(cfg.Scene.Name)
	if !ok {
		return fmt.Errorf("scene %q not found in %s (have %s)",
			cfg.Scene.Name, cfg.Scene.File, strings.Join(scenes.Names(), ", "))
	}

	// 4. Lua hooks
	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	for _, hook := range []string{"boot_delay", "robot_spawn"} {
		if scripts.HasHook(hook) {
			printOK("lua hook " + hook)
		}
	}
	fmt.Println()

	// 5. World
	ecsWorld := ecs.NewWorld()
	worldState := world.NewState(ecsWorld)
	bus := event.NewBus()
	rnd := rand.New(rand.NewSource(seed))
	player := audio.NewLogPlayer(log)
	spawner := spawn.NewDeferred(ecsWorld, 1)

	mgr := scene.NewManager(scene.Deps{
		World:   worldState,
		Spawner: spawner,
		Bus:     bus,
		Audio:   player,
		Scripts: scripts,
		Rand:    rnd,
		Log:     log,
	})
	if err := mgr.Configure(sc); err != nil {
		return fmt.Errorf("scene %s: %w", sc.Name, err)
	}

	deps := &system.Deps{
		World:   worldState,
		Bus:     bus,
		Audio:   player,
		Rand:    rnd,
		Log:     log,
		Scripts: scripts,
	}
	runner := coresys.NewRunner()
	runner.Register(system.NewSpawnSystem(spawner))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewRobotSystem(deps))
	runner.Register(system.NewContainerSystem(deps))
	runner.Register(system.NewCleanupSystem(ecsWorld, log))

	// 6. Ledger
	var ledgerSys *system.LedgerSystem
	if cfg.Ledger.Enabled {
		printSection("Ledger")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		ledger, err := persist.Open(ctx, cfg.Ledger, log)
		cancel()
		if err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		defer ledger.Close()
		ledgerSys = system.NewLedgerSystem(bus, ledger, mgr, runner.Ticks, log, cfg.Ledger.FlushInterval)
		runner.Register(ledgerSys)
		printOK(fmt.Sprintf("%s ledger ready", cfg.Ledger.Driver))
		fmt.Println()
	}

	// 7. Trace
	var recorder *trace.Recorder
	var traceWriter *trace.Writer
	if cfg.Trace.Enabled {
		traceWriter = trace.NewWriter(cfg.Trace.Dir)
		defer traceWriter.Close()
		recorder = trace.NewRecorder(bus, traceWriter, runner.Ticks, log)
	}
	beginTrace := func() {
		if recorder == nil {
			return
		}
		segment := fmt.Sprintf("%s-%d-g%d", mgr.Name(), cfg.Simulation.StartTime, mgr.Generation())
		if err := recorder.Begin(segment); err != nil {
			log.Error("trace segment", zap.String("segment", segment), zap.Error(err))
		}
	}

	if err := mgr.Start(); err != nil {
		return fmt.Errorf("start scene: %w", err)
	}
	beginTrace()

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	resetCh := make(chan os.Signal, 1)
	signal.Notify(resetCh, syscall.SIGHUP)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("Running")
	printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Simulation.TickRate))
	printReady("SIGHUP resets the scene")
	fmt.Println()

	statsEvery := uint64(1)
	if cfg.Simulation.StatsInterval > 0 {
		statsEvery = uint64(cfg.Simulation.StatsInterval / cfg.Simulation.TickRate)
		if statsEvery == 0 {
			statsEvery = 1
		}
	}

	shutdown := func(reason string) error {
		log.Info("shutting down", zap.String("reason", reason), zap.Uint64("ticks", runner.Ticks()))
		if ledgerSys != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			ledgerSys.Flush(ctx)
			cancel()
		}
		logStats(log, mgr, worldState, runner.Ticks())
		log.Info("server stopped")
		return nil
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)
			ticks := runner.Ticks()
			if cfg.Simulation.StatsInterval > 0 && ticks%statsEvery == 0 {
				logStats(log, mgr, worldState, ticks)
			}
			if cfg.Simulation.MaxTicks > 0 && ticks >= cfg.Simulation.MaxTicks {
				return shutdown("max_ticks reached")
			}
		case <-resetCh:
			if err := mgr.Reset(); err != nil {
				log.Error("scene reset failed", zap.Error(err))
				continue
			}
			beginTrace()
		case sig := <-shutdownCh:
			return shutdown(sig.String())
		}
	}
}

func logStats(log *zap.Logger, mgr *scene.Manager, ws *world.State, ticks uint64) {
	queued, processed := 0, 0
	ws.Containers.Each(func(_ ecs.EntityID, c *world.Container) {
		queued += len(c.Queue)
		processed += c.Processed
	})
	log.Info("stats",
		zap.String("scene", mgr.Name()),
		zap.Int("generation", mgr.Generation()),
		zap.Uint64("tick", ticks),
		zap.Int("score", mgr.Score()),
		zap.Int("queued", queued),
		zap.Int("processed", processed),
		zap.String("digest", ws.Digest()[:16]))
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
