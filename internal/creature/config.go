package creature

import (
	"time"

	"github.com/talgya/goap-creatures/internal/memory"
)

// PredatorConfig tunes predators.
type PredatorConfig struct {
	Speed           float64       `yaml:"speed"`
	SightRange      float64       `yaml:"sight_range"`
	KillRange       float64       `yaml:"kill_range"`
	ShelterRange    float64       `yaml:"shelter_range"`
	HungerStart     float64       `yaml:"hunger_start"`
	HungerDecay     float64       `yaml:"hunger_decay"` // Per simulated second
	HungerGain      float64       `yaml:"hunger_gain"`  // Per meal
	DayLength       float64       `yaml:"day_length"`   // Seconds from waking to dark
	EatDuration     time.Duration `yaml:"eat_duration"`
	KillDuration    time.Duration `yaml:"kill_duration"`
	IdleDuration    time.Duration `yaml:"idle_duration"`
	MemoryRetention time.Duration `yaml:"memory_retention"`
	RecentWindow    time.Duration `yaml:"recent_window"`
}

// DefaultPredatorConfig returns the stock predator.
func DefaultPredatorConfig() PredatorConfig {
	return PredatorConfig{
		Speed:           6,
		SightRange:      30,
		KillRange:       2,
		ShelterRange:    2,
		HungerStart:     70,
		HungerDecay:     1,
		HungerGain:      20,
		DayLength:       200,
		EatDuration:     5 * time.Second,
		KillDuration:    time.Second,
		IdleDuration:    5 * time.Second,
		MemoryRetention: memory.DefaultRetention,
		RecentWindow:    memory.RecentlySeenWindow,
	}
}

// PreyConfig tunes prey.
type PreyConfig struct {
	Speed           float64       `yaml:"speed"`
	SightRange      float64       `yaml:"sight_range"`
	FleeRange       float64       `yaml:"flee_range"`  // Predators closer than this are fled from
	WanderStep      float64       `yaml:"wander_step"` // Distance of each meander leg
	MemoryRetention time.Duration `yaml:"memory_retention"`
}

// DefaultPreyConfig returns the stock prey.
func DefaultPreyConfig() PreyConfig {
	return PreyConfig{
		Speed:           4,
		SightRange:      20,
		FleeRange:       12,
		WanderStep:      10,
		MemoryRetention: 60 * time.Second,
	}
}
