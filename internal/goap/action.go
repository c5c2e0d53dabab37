package goap

import (
	"errors"
	"fmt"
	"time"
)

// ActionName identifies an action within one agent.
type ActionName string

// Strategy performs an action. It is the action's own small state machine and
// the only place action logic touches collaborators.
//
// Lifecycle callbacks are optional: a strategy that also implements Starter,
// Updater, Stopper or EarlyStopper gets those calls; otherwise they are no-ops.
type Strategy interface {
	// CanPerform reports whether Update may run this frame.
	CanPerform() bool
	// Complete reports normal completion.
	Complete() bool
	// EndEarly reports that the action should be abandoned.
	EndEarly() bool
}

// Starter is called when an action begins.
type Starter interface {
	Start()
}

// Updater is called once per frame while the strategy can perform.
type Updater interface {
	Update(dt time.Duration)
}

// Stopper is called when an action completes normally.
type Stopper interface {
	Stop()
}

// EarlyStopper is called when an action ends early.
type EarlyStopper interface {
	StopEarly()
}

// Action is a costed operation with precondition and effect beliefs.
// Actions are immutable once built.
type Action struct {
	name          ActionName
	cost          float64
	preconditions BeliefSet
	effects       BeliefSet
	strategy      Strategy
}

// Name returns the action's name.
func (a *Action) Name() ActionName { return a.name }

// Cost returns the action's planning cost.
func (a *Action) Cost() float64 { return a.cost }

// Preconditions returns the beliefs that must hold before the action starts.
func (a *Action) Preconditions() BeliefSet { return a.preconditions }

// Effects returns the beliefs the action makes true.
func (a *Action) Effects() BeliefSet { return a.effects }

// Strategy returns the action's strategy.
func (a *Action) Strategy() Strategy { return a.strategy }

// Complete reports whether the strategy finished normally.
func (a *Action) Complete() bool { return a.strategy.Complete() }

// EndEarly reports whether the strategy wants to abort.
func (a *Action) EndEarly() bool { return a.strategy.EndEarly() }

// Start begins the action.
func (a *Action) Start() {
	if s, ok := a.strategy.(Starter); ok {
		s.Start()
	}
}

// Update advances the strategy if it can perform this frame.
func (a *Action) Update(dt time.Duration) {
	if !a.strategy.CanPerform() {
		return
	}
	if s, ok := a.strategy.(Updater); ok {
		s.Update(dt)
	}
}

// Stop ends the action after normal completion.
func (a *Action) Stop() {
	if s, ok := a.strategy.(Stopper); ok {
		s.Stop()
	}
}

// StopEarly ends the action after EndEarly.
func (a *Action) StopEarly() {
	if s, ok := a.strategy.(EarlyStopper); ok {
		s.StopEarly()
	}
}

// UnverifiedEffects returns the effects that do not hold, markers excluded.
// Called after normal completion; a non-empty result means the strategy did
// not actually produce what the action promised.
func (a *Action) UnverifiedEffects() BeliefSet {
	out := make(BeliefSet, 0, len(a.effects))
	for _, b := range a.effects.Unsatisfied() {
		if !b.Marker() {
			out = append(out, b)
		}
	}
	return out
}

func (a *Action) String() string {
	return string(a.name)
}

// ActionBuilder assembles an Action and validates it on Build.
type ActionBuilder struct {
	action   Action
	registry *BeliefRegistry
	errs     []error
}

// NewActionBuilder starts an action with the default cost of 1.
func NewActionBuilder(name ActionName) *ActionBuilder {
	return &ActionBuilder{action: Action{name: name, cost: 1}}
}

// WithCost sets the planning cost.
func (b *ActionBuilder) WithCost(cost float64) *ActionBuilder {
	b.action.cost = cost
	return b
}

// WithStrategy sets the strategy.
func (b *ActionBuilder) WithStrategy(s Strategy) *ActionBuilder {
	b.action.strategy = s
	return b
}

// AddPrecondition adds a precondition belief.
func (b *ActionBuilder) AddPrecondition(belief *Belief) *ActionBuilder {
	if belief == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil precondition", ErrMissingBelief))
		return b
	}
	b.action.preconditions = b.action.preconditions.With(belief)
	return b
}

// AddEffect adds an effect belief.
func (b *ActionBuilder) AddEffect(belief *Belief) *ActionBuilder {
	if belief == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: nil effect", ErrMissingBelief))
		return b
	}
	b.action.effects = b.action.effects.With(belief)
	return b
}

// Requires adds preconditions by name. Needs a builder bound to a registry.
func (b *ActionBuilder) Requires(names ...BeliefName) *ActionBuilder {
	for _, name := range names {
		b.AddPrecondition(b.lookup(name))
	}
	return b
}

// Produces adds effects by name. Needs a builder bound to a registry.
func (b *ActionBuilder) Produces(names ...BeliefName) *ActionBuilder {
	for _, name := range names {
		b.AddEffect(b.lookup(name))
	}
	return b
}

func (b *ActionBuilder) lookup(name BeliefName) *Belief {
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

// Build validates and returns the action.
func (b *ActionBuilder) Build() (*Action, error) {
	errs := b.errs
	if b.action.strategy == nil {
		errs = append(errs, ErrMissingStrategy)
	}
	if len(b.action.effects) == 0 {
		errs = append(errs, ErrNoEffects)
	}
	if b.action.cost < 0 {
		errs = append(errs, ErrNegativeCost)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("action %s: %w", b.action.name, err)
	}
	a := b.action
	return &a, nil
}
