// Package goap implements goal-oriented action planning: beliefs about the
// world, costed actions that change them, prioritized goals, a regressive
// planner that chains actions backward from a goal, and the per-agent
// controller that executes the resulting plan one action at a time.
package goap

import (
	"slices"

	"github.com/talgya/goap-creatures/internal/world"
)

// BeliefName identifies a belief within one agent.
type BeliefName string

// Evaluator is anything that can say whether it holds right now.
type Evaluator interface {
	Evaluate() bool
}

// Condition is a read-only query over collaborator state.
type Condition func() bool

// LocationFunc yields the position a belief is about.
type LocationFunc func() world.Vec3

// Belief is a named boolean predicate, optionally tied to a location.
// Beliefs are compared by identity; actions and goals hold pointers.
type Belief struct {
	name      BeliefName
	condition Condition
	location  LocationFunc
}

var _ Evaluator = (*Belief)(nil)

// NewBelief creates a belief. A nil condition always evaluates false.
func NewBelief(name BeliefName, condition Condition) *Belief {
	return &Belief{name: name, condition: condition}
}

// WithLocation binds the belief's location function and returns the belief.
func (b *Belief) WithLocation(fn LocationFunc) *Belief {
	b.location = fn
	return b
}

// Name returns the belief's name.
func (b *Belief) Name() BeliefName {
	return b.name
}

// Evaluate reports whether the belief currently holds.
func (b *Belief) Evaluate() bool {
	if b.condition == nil {
		return false
	}
	return b.condition()
}

// Marker reports whether the belief has no condition. Markers never hold
// and are only ever used as goal targets that no action can verify.
func (b *Belief) Marker() bool {
	return b.condition == nil
}

// Location returns where the thing this belief concerns is. Zero if unbound.
func (b *Belief) Location() world.Vec3 {
	if b.location == nil {
		return world.Zero
	}
	return b.location()
}

// UpdateLocation rebinds the location to a fixed point.
func (b *Belief) UpdateLocation(loc world.Vec3) {
	b.location = func() world.Vec3 { return loc }
}

// BindLocation rebinds the location to fn.
func (b *Belief) BindLocation(fn LocationFunc) {
	b.location = fn
}

func (b *Belief) String() string {
	return string(b.name)
}

// BeliefSet is an insertion-ordered set of beliefs, unique by identity.
// Operations return new sets and never modify the receiver.
type BeliefSet []*Belief

// NewBeliefSet builds a set from beliefs, dropping duplicates and nils.
func NewBeliefSet(beliefs ...*Belief) BeliefSet {
	var s BeliefSet
	for _, b := range beliefs {
		s = s.With(b)
	}
	return s
}

// Contains reports whether b is in the set.
func (s BeliefSet) Contains(b *Belief) bool {
	return slices.Contains(s, b)
}

// With returns the set plus b.
func (s BeliefSet) With(b *Belief) BeliefSet {
	if b == nil || s.Contains(b) {
		return s
	}
	return append(slices.Clip(s), b)
}

// Union returns the beliefs in s or o.
func (s BeliefSet) Union(o BeliefSet) BeliefSet {
	out := slices.Clone(s)
	for _, b := range o {
		out = out.With(b)
	}
	return out
}

// Without returns the beliefs in s that are not in o.
func (s BeliefSet) Without(o BeliefSet) BeliefSet {
	out := make(BeliefSet, 0, len(s))
	for _, b := range s {
		if !o.Contains(b) {
			out = append(out, b)
		}
	}
	return out
}

// Intersects reports whether s and o share any belief.
func (s BeliefSet) Intersects(o BeliefSet) bool {
	return slices.ContainsFunc(s, o.Contains)
}

// Unsatisfied returns the beliefs that currently evaluate false.
func (s BeliefSet) Unsatisfied() BeliefSet {
	out := make(BeliefSet, 0, len(s))
	for _, b := range s {
		if !b.Evaluate() {
			out = append(out, b)
		}
	}
	return out
}

// AllTrue reports whether every belief holds. True for an empty set.
func (s BeliefSet) AllTrue() bool {
	for _, b := range s {
		if !b.Evaluate() {
			return false
		}
	}
	return true
}

// AnyFalse reports whether at least one belief does not hold.
func (s BeliefSet) AnyFalse() bool {
	return !s.AllTrue()
}

// Names returns the belief names in set order.
func (s BeliefSet) Names() []BeliefName {
	names := make([]BeliefName, len(s))
	for i, b := range s {
		names[i] = b.name
	}
	return names
}
