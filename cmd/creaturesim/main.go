// Command creaturesim runs the predator and prey simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/goap-creatures/internal/api"
	"github.com/talgya/goap-creatures/internal/config"
	"github.com/talgya/goap-creatures/internal/creature"
	"github.com/talgya/goap-creatures/internal/engine"
	"github.com/talgya/goap-creatures/internal/persistence"
	"github.com/talgya/goap-creatures/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("creaturesim starting", "seed", cfg.Seed, "predators", cfg.Population.Predators, "prey", cfg.Population.Prey)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Terrain ───────────────────────────────────────────────────────
	terrain := world.Generate(cfg.GenConfig())
	slog.Info("terrain generated",
		"size", terrain.Size,
		"interest_points", len(terrain.InterestPoints),
		"shelters", len(terrain.Shelters),
	)

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Step = cfg.Engine.Step
	eng.Interval = cfg.Engine.Interval
	eng.DaySeconds = cfg.Engine.DaySeconds
	eng.SetSpeed(cfg.Engine.Speed)

	// The clock resumes; creatures and plans start fresh.
	if frameStr, err := db.GetMeta("last_frame"); err == nil {
		if f, err := strconv.ParseUint(frameStr, 10, 64); err == nil {
			eng.SetFrame(f)
		}
		if prev, err := db.LoadCreatures(); err == nil {
			slog.Info("previous run found", "frame", eng.Frame(), "creatures", len(prev), "sim_time", eng.SimTime())
		}
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(terrain, eng, logger)
	spawner := creature.NewSpawner(cfg.Seed, terrain, cfg.Predator, cfg.Prey, creature.Deps{
		Env:     sim,
		Clock:   eng,
		Logger:  logger,
		OnEvent: sim.AgentEvent,
	})
	population, err := spawner.Population(cfg.Population.Predators, cfg.Population.Prey)
	if err != nil {
		slog.Error("failed to spawn population", "error", err)
		os.Exit(1)
	}
	sim.Add(population...)
	sim.Spawner = spawner
	sim.PreyTarget = cfg.Population.Prey

	// Wire schedule callbacks; the journal is flushed every SaveEvery sim seconds.
	eng.OnTick = sim.TickFrame
	eng.OnSecond = func(second uint64) {
		sim.TickSecond(second)
		if cfg.SaveEvery > 0 && second%cfg.SaveEvery == 0 {
			if err := db.SaveWorldState(sim, eng); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}
	eng.OnDay = sim.TickDay

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n%d predators and %d prey roam a %.0f-unit world.\n",
		cfg.Population.Predators, cfg.Population.Prey, terrain.Size)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim, eng); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Journal saved.")
}
