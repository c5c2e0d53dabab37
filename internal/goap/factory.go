package goap

import (
	"fmt"
	"time"

	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// Positioner is anything with a current world position.
type Positioner interface {
	Position() world.Vec3
}

// Clock supplies simulation time.
type Clock interface {
	Now() time.Duration
}

// SensorMemory is the part of a perception store sensor beliefs read.
type SensorMemory interface {
	LatestTimestamp(category memory.Category) (time.Duration, bool)
}

// BeliefRegistry maps belief names to beliefs for one agent.
// Iteration follows registration order.
type BeliefRegistry struct {
	byName map[BeliefName]*Belief
	order  []BeliefName
}

// NewBeliefRegistry creates an empty registry.
func NewBeliefRegistry() *BeliefRegistry {
	return &BeliefRegistry{byName: make(map[BeliefName]*Belief)}
}

// Add registers b. Names must be unique.
func (r *BeliefRegistry) Add(b *Belief) error {
	if _, ok := r.byName[b.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBelief, b.name)
	}
	r.byName[b.name] = b
	r.order = append(r.order, b.name)
	return nil
}

// Get returns the belief registered under name.
func (r *BeliefRegistry) Get(name BeliefName) (*Belief, error) {
	b, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingBelief, name)
	}
	return b, nil
}

// Lookup resolves several names into a set, failing on the first unknown name.
func (r *BeliefRegistry) Lookup(names ...BeliefName) (BeliefSet, error) {
	var s BeliefSet
	for _, name := range names {
		b, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		s = s.With(b)
	}
	return s, nil
}

// All returns every belief in registration order.
func (r *BeliefRegistry) All() []*Belief {
	out := make([]*Belief, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}

// Len returns the number of registered beliefs.
func (r *BeliefRegistry) Len() int {
	return len(r.order)
}

// BeliefFactory builds beliefs bound to an agent's collaborators and
// registers them.
type BeliefFactory struct {
	self    Positioner
	clock   Clock
	beliefs *BeliefRegistry
}

// NewBeliefFactory creates a factory registering into beliefs. self and clock
// back location and sensor beliefs respectively and may be nil if those forms
// are not used.
func NewBeliefFactory(self Positioner, clock Clock, beliefs *BeliefRegistry) *BeliefFactory {
	return &BeliefFactory{self: self, clock: clock, beliefs: beliefs}
}

// AddBelief registers a plain predicate belief.
func (f *BeliefFactory) AddBelief(name BeliefName, condition Condition) error {
	return f.beliefs.Add(NewBelief(name, condition))
}

// AddSensorBelief registers a belief that holds while the latest record of
// category in sensor is younger than window.
func (f *BeliefFactory) AddSensorBelief(name BeliefName, sensor SensorMemory, category memory.Category, window time.Duration) error {
	return f.beliefs.Add(NewBelief(name, func() bool {
		seen, ok := sensor.LatestTimestamp(category)
		if !ok {
			return false
		}
		return f.now()-seen < window
	}))
}

// AddLocationBelief registers a belief that holds while the agent is closer
// than distance to the point loc yields. The belief carries loc so strategies
// can use it as a destination.
func (f *BeliefFactory) AddLocationBelief(name BeliefName, distance float64, loc LocationFunc) error {
	return f.beliefs.Add(NewBelief(name, func() bool {
		return f.inRange(loc(), distance)
	}).WithLocation(loc))
}

// AddTransformBelief is AddLocationBelief for an external object's position.
// A nil target resolves to the origin.
func (f *BeliefFactory) AddTransformBelief(name BeliefName, distance float64, target Positioner) error {
	return f.AddLocationBelief(name, distance, func() world.Vec3 {
		if target == nil {
			return world.Zero
		}
		return target.Position()
	})
}

func (f *BeliefFactory) now() time.Duration {
	if f.clock == nil {
		return 0
	}
	return f.clock.Now()
}

func (f *BeliefFactory) inRange(pos world.Vec3, distance float64) bool {
	if f.self == nil {
		return false
	}
	return f.self.Position().Distance(pos) < distance
}
