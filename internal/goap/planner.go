package goap

import (
	"cmp"
	"log/slog"
	"slices"
)

// Planner turns goals into plans.
type Planner interface {
	// Plan returns a plan for the most urgent achievable goal, or nil.
	// mostRecentGoal is the goal the agent last completed, if any.
	Plan(actions []*Action, goals []*Goal, mostRecentGoal *Goal) *Plan
}

// RegressivePlanner searches backward from a goal's desired effects through
// actions whose effects resolve them. Each action is used at most once per
// branch, so the search tree is finite.
type RegressivePlanner struct {
	Logger *slog.Logger
}

var _ Planner = (*RegressivePlanner)(nil)

// NewRegressivePlanner creates a planner logging to logger (slog.Default if nil).
func NewRegressivePlanner(logger *slog.Logger) *RegressivePlanner {
	return &RegressivePlanner{Logger: logger}
}

// node is one step of the backward search.
type node struct {
	parent   *node   // back-reference only
	action   *Action // nil at the root
	required BeliefSet
	cost     float64
	leaves   []*node
}

// dead reports a root that resolved nothing.
func (n *node) dead() bool {
	return len(n.leaves) == 0 && n.action == nil
}

// Plan implements Planner. Relevant goals are tried in descending priority;
// equal priorities keep input order except that mostRecentGoal goes last
// among its peers. The first goal that yields a plan wins. A nil result is
// an ordinary outcome, not an error.
func (p *RegressivePlanner) Plan(actions []*Action, goals []*Goal, mostRecentGoal *Goal) *Plan {
	ordered := make([]*Goal, 0, len(goals))
	for _, g := range goals {
		if g.Relevant() {
			ordered = append(ordered, g)
		}
	}
	slices.SortStableFunc(ordered, func(a, b *Goal) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		switch {
		case a == mostRecentGoal && b != mostRecentGoal:
			return 1
		case b == mostRecentGoal && a != mostRecentGoal:
			return -1
		}
		return 0
	})

	for _, g := range ordered {
		if plan := p.EvaluateActions(actions, g); plan != nil {
			return plan
		}
	}

	p.logger().Debug("no plan found", "goals", len(goals), "relevant", len(ordered))
	return nil
}

// EvaluateActions plans for a single goal. Returns nil if the goal cannot be
// reached with actions.
func (p *RegressivePlanner) EvaluateActions(actions []*Action, goal *Goal) *Plan {
	root := &node{required: slices.Clone(goal.desiredEffects)}

	if !p.findPath(root, byCost(actions)) || root.dead() {
		return nil
	}

	// Descend through the cheapest leaf at each level. The walk visits the
	// goal-side action first, so the first action to execute is pushed last.
	var stack []*Action
	n := root
	for len(n.leaves) > 0 {
		cheapest := n.leaves[0]
		for _, leaf := range n.leaves[1:] {
			if leaf.cost < cheapest.cost {
				cheapest = leaf
			}
		}
		n = cheapest
		stack = append(stack, n.action)
	}

	plan := NewPlan(goal, stack, n.cost)
	p.logger().Debug("plan found",
		"goal", goal.name,
		"actions", plan.Names(),
		"cost", plan.TotalCost,
	)
	return plan
}

// findPath expands parent with every action that resolves one of its
// required beliefs. actions must already be in ascending cost order.
func (p *RegressivePlanner) findPath(parent *node, actions []*Action) bool {
	// Beliefs that already hold need no action.
	parent.required = parent.required.Unsatisfied()
	if len(parent.required) == 0 {
		return true
	}

	for _, action := range actions {
		if !action.effects.Intersects(parent.required) {
			continue
		}

		// What remains after this action, plus what it needs first.
		residual := parent.required.Without(action.effects).Union(action.preconditions)

		child := &node{
			parent:   parent,
			action:   action,
			required: slices.Clone(residual),
			cost:     parent.cost + action.cost,
		}

		if p.findPath(child, without(actions, action)) {
			parent.leaves = append(parent.leaves, child)
			residual = residual.Without(action.preconditions)
		}

		if len(residual) == 0 {
			return true
		}
	}
	return false
}

func (p *RegressivePlanner) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// byCost returns actions sorted by ascending cost, ties in input order.
func byCost(actions []*Action) []*Action {
	sorted := slices.Clone(actions)
	slices.SortStableFunc(sorted, func(a, b *Action) int {
		return cmp.Compare(a.cost, b.cost)
	})
	return sorted
}

// without returns actions minus a, preserving order.
func without(actions []*Action, a *Action) []*Action {
	out := make([]*Action, 0, len(actions)-1)
	for _, other := range actions {
		if other != a {
			out = append(out, other)
		}
	}
	return out
}
