// Creature spawning: places the initial population on the terrain and
// replaces prey as they are eaten.
package creature

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/goap-creatures/internal/world"
)

// Spawner creates creatures for the simulation.
type Spawner struct {
	rng      *rand.Rand
	terrain  *world.Terrain
	predator PredatorConfig
	prey     PreyConfig
	deps     Deps
	spawned  int
}

// NewSpawner creates a creature spawner with the given seed. deps.Rng is
// ignored; every predator gets its own source derived from the seed.
func NewSpawner(seed int64, terrain *world.Terrain, predator PredatorConfig, prey PreyConfig, deps Deps) *Spawner {
	return &Spawner{
		rng:      rand.New(rand.NewSource(seed + 300)),
		terrain:  terrain,
		predator: predator,
		prey:     prey,
		deps:     deps,
	}
}

// Predator spawns one predator at a random spot.
func (s *Spawner) Predator() (*Creature, error) {
	id := s.nextID()
	deps := s.deps
	deps.Rng = rand.New(rand.NewSource(s.rng.Int63()))
	c, err := NewPredator(id, s.name(predatorNames), s.randomPosition(), s.predator, deps)
	if err != nil {
		return nil, fmt.Errorf("spawn predator: %w", err)
	}
	return c, nil
}

// Prey spawns one prey animal at a random spot.
func (s *Spawner) Prey() *Creature {
	return NewPrey(s.nextID(), s.name(preyNames), s.randomPosition(), s.prey, s.terrain, s.deps.Clock)
}

// Population spawns the initial predators and prey.
func (s *Spawner) Population(predators, prey int) ([]*Creature, error) {
	out := make([]*Creature, 0, predators+prey)
	for i := 0; i < predators; i++ {
		c, err := s.Predator()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	for i := 0; i < prey; i++ {
		out = append(out, s.Prey())
	}
	return out, nil
}

// nextID draws IDs from the seeded source so runs are reproducible.
func (s *Spawner) nextID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		// *rand.Rand never fails a read.
		return uuid.New()
	}
	return id
}

func (s *Spawner) randomPosition() world.Vec3 {
	if s.terrain == nil {
		return world.Zero
	}
	p := world.V(s.rng.Float64()*s.terrain.Size, s.rng.Float64()*s.terrain.Size, 0)
	return s.terrain.Clamp(p)
}

func (s *Spawner) name(pool []string) string {
	s.spawned++
	return fmt.Sprintf("%s-%d", pool[s.rng.Intn(len(pool))], s.spawned)
}

var predatorNames = []string{
	"Fang", "Shadow", "Ember", "Talon", "Ash", "Rook", "Sable", "Brand",
	"Cinder", "Grim", "Vex", "Scar", "Onyx", "Thorn", "Rust", "Flint",
}

var preyNames = []string{
	"Clover", "Thistle", "Pip", "Fern", "Bramble", "Hazel", "Moss", "Willow",
	"Sorrel", "Daisy", "Burdock", "Nettle", "Poppy", "Tansy", "Yarrow", "Sage",
}
