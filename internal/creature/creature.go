// Package creature provides the simulated animals: predators that think with
// a GOAP agent and prey that steer with a small behavior tree. It also holds
// their needs, senses and spawning.
package creature

import (
	"math"
	"time"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/talgya/goap-creatures/internal/goap"
	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// nowhere is the location of a thing a creature does not know about.
var nowhere = world.V(math.Inf(1), math.Inf(1), math.Inf(1))

// Clock supplies simulation time and the length of the current frame.
type Clock interface {
	Now() time.Duration
	Delta() time.Duration
}

// Environment is what a creature may ask of the world it lives in.
type Environment interface {
	InterestPoints() []world.Vec3
	Lookup(id uuid.UUID) (*Creature, bool)
	// Kill marks a living creature dead. Returns false if it was not alive.
	Kill(id uuid.UUID) bool
	// Consume removes a creature from the world.
	Consume(id uuid.UUID) bool
}

// Creature is one animal in the simulation.
type Creature struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name"`
	Kind   memory.Kind    `json:"kind"`
	Body   *world.Body    `json:"-"`
	Memory *memory.Memory `json:"-"`
	Agent  *goap.Agent    `json:"-"` // Predators only

	// Needs
	Hunger      float64 `json:"hunger"`
	HungerDecay float64 `json:"-"`
	DayTimer    float64 `json:"day_timer"` // Seconds until dark
	DayLength   float64 `json:"-"`
	Sleeping    bool    `json:"sleeping"`

	SightRange float64       `json:"sight_range"`
	Alive      bool          `json:"alive"`
	Grabbed    bool          `json:"grabbed"` // Carrying a kill
	Meals      int           `json:"meals"`
	Kills      int           `json:"kills"`
	BornAt     time.Duration `json:"born_at"`

	clock Clock
	tree  bt.Node
}

// Position returns where the creature is.
func (c *Creature) Position() world.Vec3 {
	return c.Body.Position
}

// FallAsleep puts the creature to sleep and stops it moving.
func (c *Creature) FallAsleep() {
	c.Sleeping = true
	c.Body.ClearDestination()
}

// Asleep reports whether the creature is sleeping.
func (c *Creature) Asleep() bool {
	return c.Sleeping
}

// Wake ends sleep and starts a new day.
func (c *Creature) Wake() {
	c.Sleeping = false
	c.DayTimer = c.DayLength
}

// SecondElapsed decays needs by one simulated second. A sleeper whose day has
// run out wakes up; the return value reports that.
func (c *Creature) SecondElapsed() (woke bool) {
	c.Hunger = math.Max(0, c.Hunger-c.HungerDecay)
	c.DayTimer = math.Max(0, c.DayTimer-1)
	if c.DayTimer == 0 && c.Sleeping {
		c.Wake()
		return true
	}
	return false
}

// Tick runs the creature's behavior tree for one frame.
func (c *Creature) Tick() (bt.Status, error) {
	if c.tree == nil {
		return bt.Failure, nil
	}
	return c.tree.Tick()
}

// Step moves the body for one frame and keeps it on the terrain.
func (c *Creature) Step(dt time.Duration, terrain *world.Terrain) {
	if !c.Alive || c.Sleeping {
		return
	}
	c.Body.Step(dt)
	if terrain != nil {
		c.Body.Position = terrain.Clamp(c.Body.Position)
	}
}

// Snapshot is a point-in-time view of a creature for diagnostics and the journal.
type Snapshot struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Kind       string       `json:"kind" db:"kind"`
	Position   world.Vec3   `json:"position" db:"-"`
	Hunger     float64      `json:"hunger" db:"hunger"`
	DayTimer   float64      `json:"day_timer" db:"day_timer"`
	Sleeping   bool         `json:"sleeping" db:"sleeping"`
	Alive      bool         `json:"alive" db:"alive"`
	Grabbed    bool         `json:"grabbed" db:"grabbed"`
	Meals      int          `json:"meals" db:"meals"`
	Kills      int          `json:"kills" db:"kills"`
	Remembered int          `json:"remembered" db:"remembered"`
	Agent      *goap.Status `json:"agent,omitempty" db:"-"`
}

// Snapshot captures the creature's current state.
func (c *Creature) Snapshot() Snapshot {
	s := Snapshot{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     c.Kind.String(),
		Position: c.Position(),
		Hunger:   c.Hunger,
		DayTimer: c.DayTimer,
		Sleeping: c.Sleeping,
		Alive:    c.Alive,
		Grabbed:  c.Grabbed,
		Meals:    c.Meals,
		Kills:    c.Kills,
	}
	if c.Memory != nil {
		s.Remembered = c.Memory.Count()
	}
	if c.Agent != nil {
		st := c.Agent.Status()
		s.Agent = &st
	}
	return s
}

// newCreature fills the fields every kind shares.
func newCreature(id uuid.UUID, name string, kind memory.Kind, pos world.Vec3, speed, sight float64, clock Clock) *Creature {
	return &Creature{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Body:       world.NewBody(pos, speed),
		Memory:     memory.New(kind),
		SightRange: sight,
		Alive:      true,
		BornAt:     clock.Now(),
		clock:      clock,
	}
}
