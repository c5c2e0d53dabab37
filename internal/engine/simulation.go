// Simulation ties the terrain and its creatures together and runs them each frame.
package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/goap-creatures/internal/creature"
	"github.com/talgya/goap-creatures/internal/goap"
	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// maxEvents caps the in-memory event log.
const maxEvents = 1000

// Event is a notable occurrence in the world. Controller events keep their
// goap kind as category; the simulation adds "death", "birth", "consumed"
// and "day".
type Event struct {
	Time        time.Duration `json:"time" db:"sim_time"`
	Creature    string        `json:"creature,omitempty" db:"creature"`
	Category    string        `json:"category" db:"category"`
	Description string        `json:"description" db:"description"`
	Goal        string        `json:"goal,omitempty" db:"goal"`
	Action      string        `json:"action,omitempty" db:"action"`
	PlanID      string        `json:"plan_id,omitempty" db:"plan_id"`
	Cost        float64       `json:"cost,omitempty" db:"cost"`
	Actions     []string      `json:"actions,omitempty" db:"-"` // Adopted plan, plan_adopted only
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Predators      int    `json:"predators"`
	Prey           int    `json:"prey"`
	Carcasses      int    `json:"carcasses"`
	Sleeping       int    `json:"sleeping"`
	Kills          int    `json:"kills"`
	Meals          int    `json:"meals"`
	Births         int    `json:"births"`
	PlansAdopted   int    `json:"plans_adopted"`
	PlansCompleted int    `json:"plans_completed"`
	Abandoned      int    `json:"abandoned"`
	Frame          uint64 `json:"frame"`
}

// Simulation holds the complete world state. The engine's callbacks mutate it
// under the write lock; readers such as the API take the read lock through
// the accessor methods.
type Simulation struct {
	mu sync.RWMutex

	Terrain   *world.Terrain
	Creatures []*creature.Creature
	Landmarks []creature.Landmark
	Events    []Event // Recent events, capped at maxEvents
	Stats     SimStats

	// Spawner replaces eaten prey at each day boundary.
	Spawner *creature.Spawner
	// PreyTarget is the prey head count the daily respawn restores.
	PreyTarget int

	index    map[uuid.UUID]*creature.Creature
	consumed []uuid.UUID
	journal  []Event // Not yet persisted
	clock    creature.Clock
	logger   *slog.Logger
}

var _ creature.Environment = (*Simulation)(nil)

// NewSimulation creates a Simulation on terrain. Shelters become landmarks
// with IDs derived from the terrain seed.
func NewSimulation(terrain *world.Terrain, clock creature.Clock, logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulation{
		Terrain: terrain,
		index:   make(map[uuid.UUID]*creature.Creature),
		clock:   clock,
		logger:  logger,
	}
	for i, p := range terrain.Shelters {
		s.Landmarks = append(s.Landmarks, creature.Landmark{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "shelter/%d/%d", terrain.Seed, i)),
			Kind:     memory.KindShelter,
			Position: p,
		})
	}
	return s
}

// Add places creatures in the world.
func (s *Simulation) Add(cs ...*creature.Creature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(cs...)
}

func (s *Simulation) add(cs ...*creature.Creature) {
	for _, c := range cs {
		s.Creatures = append(s.Creatures, c)
		s.index[c.ID] = c
	}
	s.updateStats()
}

// AgentEvent records a controller event. It is the goap event hook and runs
// inside TickFrame, so it must not take the lock.
func (s *Simulation) AgentEvent(e goap.Event) {
	ev := Event{
		Time:     s.clock.Now(),
		Creature: e.Agent,
		Category: string(e.Kind),
		Goal:     string(e.Goal),
		Action:   string(e.Action),
		Cost:     e.Cost,
	}
	if e.PlanID != uuid.Nil {
		ev.PlanID = e.PlanID.String()
	}
	switch e.Kind {
	case goap.EventPlanAdopted:
		for _, a := range e.Actions {
			ev.Actions = append(ev.Actions, string(a))
		}
		ev.Description = fmt.Sprintf("%s plans %v for %s", e.Agent, e.Actions, e.Goal)
		s.Stats.PlansAdopted++
	case goap.EventPlanCompleted:
		ev.Description = fmt.Sprintf("%s achieved %s", e.Agent, e.Goal)
		s.Stats.PlansCompleted++
	case goap.EventGoalAbandoned:
		ev.Description = fmt.Sprintf("%s gave up on %s", e.Agent, e.Goal)
		s.Stats.Abandoned++
	case goap.EventPreconditionsViolated:
		ev.Description = fmt.Sprintf("%s cannot %s: %s unmet", e.Agent, e.Action, e.Detail)
	case goap.EventEffectsUnverified:
		ev.Description = fmt.Sprintf("%s finished %s but %s do not hold", e.Agent, e.Action, e.Detail)
	default:
		ev.Description = fmt.Sprintf("%s %s %s", e.Agent, e.Kind, e.Action)
	}
	s.record(ev)
}

func (s *Simulation) record(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > 2*maxEvents {
		s.Events = slices.Clone(s.Events[len(s.Events)-maxEvents:])
	}
	s.journal = append(s.journal, e)
}

// TickFrame runs every frame: senses, decisions, then movement.
func (s *Simulation) TickFrame(frame uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := s.clock.Delta()
	for _, c := range s.Creatures {
		c.Sense(s.Creatures, s.Landmarks)
	}
	for _, c := range s.Creatures {
		if _, err := c.Tick(); err != nil {
			s.logger.Error("creature tick failed", "creature", c.Name, "error", err)
		}
	}
	for _, c := range s.Creatures {
		c.Step(dt, s.Terrain)
	}
	s.removeConsumed()
	s.Stats.Frame = frame
}

// TickSecond runs every sim second: needs decay and memory upkeep.
func (s *Simulation) TickSecond(second uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for _, c := range s.Creatures {
		if !c.Alive {
			continue
		}
		if c.SecondElapsed() {
			s.logger.Debug("creature woke", "creature", c.Name, "second", second)
		}
		c.Memory.Flush(now)
	}
}

// TickDay runs every engine day: respawn, statistics, daily report.
func (s *Simulation) TickDay(day uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.respawnPrey()
	s.updateStats()

	counts := make(map[string]int)
	for _, e := range s.Events {
		counts[e.Category]++
	}

	s.logger.Info("daily report",
		"day", humanize.Ordinal(int(day)),
		"frame", humanize.Comma(int64(s.Stats.Frame)),
		"predators", s.Stats.Predators,
		"prey", s.Stats.Prey,
		"carcasses", s.Stats.Carcasses,
		"kills", s.Stats.Kills,
		"meals", s.Stats.Meals,
		"births", s.Stats.Births,
		"plans_completed", s.Stats.PlansCompleted,
		"abandoned", s.Stats.Abandoned,
		"events_unverified", counts[string(goap.EventEffectsUnverified)],
	)
	s.record(Event{
		Time:        s.clock.Now(),
		Category:    "day",
		Description: fmt.Sprintf("the %s day ends", humanize.Ordinal(int(day))),
	})

	// Trim old events to prevent unbounded growth.
	if len(s.Events) > maxEvents {
		s.Events = slices.Clone(s.Events[len(s.Events)-maxEvents:])
	}
}

// InterestPoints implements creature.Environment.
func (s *Simulation) InterestPoints() []world.Vec3 {
	return s.Terrain.InterestPoints
}

// Lookup implements creature.Environment. Callers outside a frame must hold
// the lock; use Creature for API access.
func (s *Simulation) Lookup(id uuid.UUID) (*creature.Creature, bool) {
	c, ok := s.index[id]
	return c, ok
}

// Kill implements creature.Environment.
func (s *Simulation) Kill(id uuid.UUID) bool {
	c, ok := s.index[id]
	if !ok || !c.Alive {
		return false
	}
	c.Alive = false
	c.Body.ClearDestination()
	s.Stats.Kills++
	s.record(Event{
		Time:        s.clock.Now(),
		Creature:    c.Name,
		Category:    "death",
		Description: fmt.Sprintf("%s was killed", c.Name),
	})
	return true
}

// Consume implements creature.Environment. The creature leaves the world at
// the end of the frame and every memory of it is dropped.
func (s *Simulation) Consume(id uuid.UUID) bool {
	c, ok := s.index[id]
	if !ok || slices.Contains(s.consumed, id) {
		return false
	}
	s.consumed = append(s.consumed, id)
	s.Stats.Meals++
	s.record(Event{
		Time:        s.clock.Now(),
		Creature:    c.Name,
		Category:    "consumed",
		Description: fmt.Sprintf("%s was eaten", c.Name),
	})
	return true
}

func (s *Simulation) removeConsumed() {
	if len(s.consumed) == 0 {
		return
	}
	for _, id := range s.consumed {
		delete(s.index, id)
		for _, c := range s.Creatures {
			c.Memory.Forget(id)
		}
	}
	s.Creatures = slices.DeleteFunc(s.Creatures, func(c *creature.Creature) bool {
		return slices.Contains(s.consumed, c.ID)
	})
	s.consumed = s.consumed[:0]
	s.updateStats()
}

func (s *Simulation) respawnPrey() {
	if s.Spawner == nil {
		return
	}
	alive := 0
	for _, c := range s.Creatures {
		if c.Kind == memory.KindPrey && c.Alive {
			alive++
		}
	}
	for ; alive < s.PreyTarget; alive++ {
		c := s.Spawner.Prey()
		s.add(c)
		s.Stats.Births++
		s.record(Event{
			Time:        s.clock.Now(),
			Creature:    c.Name,
			Category:    "birth",
			Description: fmt.Sprintf("%s wandered in", c.Name),
		})
	}
}

func (s *Simulation) updateStats() {
	s.Stats.Predators, s.Stats.Prey, s.Stats.Carcasses, s.Stats.Sleeping = 0, 0, 0, 0
	for _, c := range s.Creatures {
		switch {
		case !c.Alive:
			s.Stats.Carcasses++
		case c.Kind == memory.KindPredator:
			s.Stats.Predators++
		case c.Kind == memory.KindPrey:
			s.Stats.Prey++
		}
		if c.Sleeping {
			s.Stats.Sleeping++
		}
	}
}

// Snapshot returns every creature's current state.
func (s *Simulation) Snapshot() []creature.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]creature.Snapshot, 0, len(s.Creatures))
	for _, c := range s.Creatures {
		out = append(out, c.Snapshot())
	}
	return out
}

// Creature returns one creature's state.
func (s *Simulation) Creature(id uuid.UUID) (creature.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.index[id]
	if !ok {
		return creature.Snapshot{}, false
	}
	return c.Snapshot(), true
}

// ResetCreature drops a predator's goal and plan so it replans next frame.
func (s *Simulation) ResetCreature(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.index[id]
	if !ok || c.Agent == nil {
		return false
	}
	c.Agent.ResetGoal()
	c.Body.ClearDestination()
	return true
}

// RecentEvents returns up to limit of the newest events, oldest first.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := max(0, len(s.Events)-limit)
	return slices.Clone(s.Events[start:])
}

// CurrentStats returns a copy of the statistics.
func (s *Simulation) CurrentStats() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// TakeJournal returns and clears the events not yet persisted.
func (s *Simulation) TakeJournal() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.journal
	s.journal = nil
	return out
}
