// Package config loads the simulation settings: built-in defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/goap-creatures/internal/creature"
	"github.com/talgya/goap-creatures/internal/engine"
	"github.com/talgya/goap-creatures/internal/world"
)

// Environment overrides.
const (
	EnvAdminKey = "GOAPSIM_ADMIN_KEY"
	EnvDB       = "GOAPSIM_DB"
	EnvPort     = "GOAPSIM_PORT"
)

// Config is the full set of simulation settings.
type Config struct {
	Seed      int64  `yaml:"seed"`
	DBPath    string `yaml:"db_path"`
	APIPort   int    `yaml:"api_port"`
	AdminKey  string `yaml:"admin_key"`
	LogLevel  string `yaml:"log_level"`
	SaveEvery uint64 `yaml:"save_every"` // Sim seconds between journal flushes

	Engine     EngineConfig            `yaml:"engine"`
	World      WorldConfig             `yaml:"world"`
	Population PopulationConfig        `yaml:"population"`
	Predator   creature.PredatorConfig `yaml:"predator"`
	Prey       creature.PreyConfig     `yaml:"prey"`
}

// EngineConfig controls the frame loop.
type EngineConfig struct {
	Step       time.Duration `yaml:"step"`     // Sim time per frame
	Interval   time.Duration `yaml:"interval"` // Wall time per frame at speed 1
	Speed      float64       `yaml:"speed"`
	DaySeconds uint64        `yaml:"day_seconds"`
}

// WorldConfig controls terrain generation.
type WorldConfig struct {
	Size           float64 `yaml:"size"`
	InterestPoints int     `yaml:"interest_points"`
	Shelters       int     `yaml:"shelters"`
	NoiseScale     float64 `yaml:"noise_scale"`
	MaxElevation   float64 `yaml:"max_elevation"`
}

// PopulationConfig sets the starting head counts. Prey are topped back up to
// the starting count at each day boundary.
type PopulationConfig struct {
	Predators int `yaml:"predators"`
	Prey      int `yaml:"prey"`
}

// Default returns the built-in settings.
func Default() Config {
	gen := world.DefaultGenConfig()
	return Config{
		Seed:      42,
		DBPath:    "data/creatures.db",
		APIPort:   8080,
		LogLevel:  "info",
		SaveEvery: 60,
		Engine: EngineConfig{
			Step:       engine.DefaultStep,
			Interval:   engine.DefaultStep,
			Speed:      1,
			DaySeconds: engine.DefaultDaySeconds,
		},
		World: WorldConfig{
			Size:           gen.Size,
			InterestPoints: gen.InterestPoints,
			Shelters:       gen.Shelters,
			NoiseScale:     gen.NoiseScale,
			MaxElevation:   gen.MaxElevation,
		},
		Population: PopulationConfig{Predators: 3, Prey: 12},
		Predator:   creature.DefaultPredatorConfig(),
		Prey:       creature.DefaultPreyConfig(),
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv(EnvAdminKey); v != "" {
		cfg.AdminKey = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.APIPort = port
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every setting that cannot work.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.APIPort >= 0 && c.APIPort <= 65535, "api_port %d out of range", c.APIPort)
	check(c.DBPath != "", "db_path is empty")
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	check(c.Engine.Step > 0, "engine.step must be positive")
	check(c.Engine.Interval >= 0, "engine.interval must not be negative")
	check(c.Engine.Speed >= 0, "engine.speed must not be negative")
	check(c.Engine.DaySeconds > 0, "engine.day_seconds must be positive")

	check(c.World.Size > 0, "world.size must be positive")
	check(c.World.InterestPoints > 0, "world.interest_points must be positive")
	check(c.World.Shelters >= 0, "world.shelters must not be negative")
	check(c.World.NoiseScale > 0, "world.noise_scale must be positive")

	check(c.Population.Predators >= 0, "population.predators must not be negative")
	check(c.Population.Prey >= 0, "population.prey must not be negative")

	check(c.Predator.Speed > 0, "predator.speed must be positive")
	check(c.Predator.KillRange > 0, "predator.kill_range must be positive")
	check(c.Predator.DayLength > 0, "predator.day_length must be positive")
	check(c.Predator.RecentWindow > 0, "predator.recent_window must be positive")
	check(c.Prey.Speed > 0, "prey.speed must be positive")

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// GenConfig returns the terrain generation parameters.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Size:           c.World.Size,
		Seed:           c.Seed,
		InterestPoints: c.World.InterestPoints,
		Shelters:       c.World.Shelters,
		NoiseScale:     c.World.NoiseScale,
		MaxElevation:   c.World.MaxElevation,
	}
}
