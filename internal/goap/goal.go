package goap

import (
	"errors"
	"fmt"
)

// GoalName identifies a goal within one agent.
type GoalName string

// Goal is a prioritized set of desired beliefs.
type Goal struct {
	name           GoalName
	priority       float64
	preconditions  BeliefSet
	desiredEffects BeliefSet
	abandonWhen    BeliefSet
}

// Name returns the goal's name.
func (g *Goal) Name() GoalName { return g.name }

// Priority returns the goal's priority; higher is more urgent.
func (g *Goal) Priority() float64 { return g.priority }

// Preconditions returns the beliefs gating the goal's relevance.
func (g *Goal) Preconditions() BeliefSet { return g.preconditions }

// DesiredEffects returns the beliefs that define success.
func (g *Goal) DesiredEffects() BeliefSet { return g.desiredEffects }

// AbandonWhen returns the beliefs that abort the goal while it is pursued.
func (g *Goal) AbandonWhen() BeliefSet { return g.abandonWhen }

// Relevant reports whether the goal is worth planning for: some desired
// effect is unmet and every precondition holds.
func (g *Goal) Relevant() bool {
	return g.desiredEffects.AnyFalse() && g.preconditions.AllTrue()
}

// Satisfied reports whether every desired effect holds.
func (g *Goal) Satisfied() bool {
	return g.desiredEffects.AllTrue()
}

// ShouldAbandon reports whether any abandon belief holds.
func (g *Goal) ShouldAbandon() bool {
	for _, b := range g.abandonWhen {
		if b.Evaluate() {
			return true
		}
	}
	return false
}

func (g *Goal) String() string {
	return string(g.name)
}

// GoalBuilder assembles a Goal and validates it on Build.
type GoalBuilder struct {
	goal     Goal
	registry *BeliefRegistry
	errs     []error
}

// NewGoalBuilder starts a goal with priority 0.
func NewGoalBuilder(name GoalName) *GoalBuilder {
	return &GoalBuilder{goal: Goal{name: name}}
}

// WithPriority sets the priority.
func (b *GoalBuilder) WithPriority(priority float64) *GoalBuilder {
	b.goal.priority = priority
	return b
}

// WithDesiredEffect adds a success belief.
func (b *GoalBuilder) WithDesiredEffect(belief *Belief) *GoalBuilder {
	if belief == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil desired effect", ErrMissingBelief))
		return b
	}
	b.goal.desiredEffects = b.goal.desiredEffects.With(belief)
	return b
}

// WithPrecondition adds a relevance belief.
func (b *GoalBuilder) WithPrecondition(belief *Belief) *GoalBuilder {
	if belief == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil precondition", ErrMissingBelief))
		return b
	}
	b.goal.preconditions = b.goal.preconditions.With(belief)
	return b
}

// WithAbandonCondition adds a belief that aborts the goal while it is pursued.
func (b *GoalBuilder) WithAbandonCondition(belief *Belief) *GoalBuilder {
	if belief == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil abandon condition", ErrMissingBelief))
		return b
	}
	b.goal.abandonWhen = b.goal.abandonWhen.With(belief)
	return b
}

// Desires adds desired effects by name.
func (b *GoalBuilder) Desires(names ...BeliefName) *GoalBuilder {
	for _, name := range names {
		b.WithDesiredEffect(b.lookup(name))
	}
	return b
}

// Requires adds preconditions by name.
func (b *GoalBuilder) Requires(names ...BeliefName) *GoalBuilder {
	for _, name := range names {
		b.WithPrecondition(b.lookup(name))
	}
	return b
}

// AbandonWhen adds abandon conditions by name.
func (b *GoalBuilder) AbandonWhen(names ...BeliefName) *GoalBuilder {
	for _, name := range names {
		b.WithAbandonCondition(b.lookup(name))
	}
	return b
}

func (b *GoalBuilder) lookup(name BeliefName) *Belief {
	if b.registry == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: %s (no registry)", ErrMissingBelief, name))
		return nil
	}
	belief, err := b.registry.Get(name)
	if err != nil {
		b.errs = append(b.errs, err)
		return nil
	}
	return belief
}

// Build validates and returns the goal.
func (b *GoalBuilder) Build() (*Goal, error) {
	errs := b.errs
	if len(b.goal.desiredEffects) == 0 {
		errs = append(errs, ErrNoDesiredEffects)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("goal %s: %w", b.goal.name, err)
	}
	g := b.goal
	return &g, nil
}
