package goap

import (
	"slices"

	"github.com/google/uuid"
)

// Plan is an ordered, costed action sequence for one goal. Actions are held
// as a stack: the first action to execute is on top.
type Plan struct {
	ID        uuid.UUID
	Goal      *Goal
	TotalCost float64

	stack []*Action // top is the last element
}

// NewPlan wraps a stack whose last element executes first.
func NewPlan(goal *Goal, stack []*Action, totalCost float64) *Plan {
	return &Plan{
		ID:        uuid.New(),
		Goal:      goal,
		TotalCost: totalCost,
		stack:     stack,
	}
}

// Len returns the number of actions left.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.stack)
}

// Empty reports whether no actions are left.
func (p *Plan) Empty() bool {
	return p.Len() == 0
}

// Peek returns the next action without removing it.
func (p *Plan) Peek() *Action {
	if p.Empty() {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// Pop removes and returns the next action.
func (p *Plan) Pop() *Action {
	if p.Empty() {
		return nil
	}
	a := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return a
}

// Actions returns the remaining actions in execution order.
func (p *Plan) Actions() []*Action {
	if p == nil {
		return nil
	}
	out := slices.Clone(p.stack)
	slices.Reverse(out)
	return out
}

// Names returns the remaining action names in execution order.
func (p *Plan) Names() []ActionName {
	actions := p.Actions()
	names := make([]ActionName, len(actions))
	for i, a := range actions {
		names[i] = a.name
	}
	return names
}
