package goap

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStrategy completes after steps updates, running effect on the last one.
type stubStrategy struct {
	steps    int
	endEarly bool
	blocked  bool
	effect   func()

	updates      int
	started      int
	stopped      int
	stoppedEarly int
}

func (s *stubStrategy) CanPerform() bool { return !s.blocked }
func (s *stubStrategy) Complete() bool { return s.updates >= s.steps }
func (s *stubStrategy) EndEarly() bool { return s.endEarly }
func (s *stubStrategy) Start() { s.started++ }
func (s *stubStrategy) Stop() { s.stopped++ }
func (s *stubStrategy) StopEarly() { s.stoppedEarly++ }

func (s *stubStrategy) Update(time.Duration) {
	s.updates++
	if s.updates == s.steps && s.effect != nil {
		s.effect()
	}
}

func mustAction(t *testing.T, name ActionName, cost float64, pre, eff BeliefSet) *Action {
	t.Helper()
	b := NewActionBuilder(name).WithCost(cost).WithStrategy(&stubStrategy{steps: 1})
	for _, p := range pre {
		b.AddPrecondition(p)
	}
	for _, e := range eff {
		b.AddEffect(e)
	}
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func mustGoal(t *testing.T, name GoalName, priority float64, pre, desired BeliefSet) *Goal {
	t.Helper()
	b := NewGoalBuilder(name).WithPriority(priority)
	for _, p := range pre {
		b.WithPrecondition(p)
	}
	for _, d := range desired {
		b.WithDesiredEffect(d)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestPlanner_SingleActionWhenPreconditionHolds(t *testing.T) {
	t.Parallel()

	w := facts{"HasPrey": true}
	hasFood, hasPrey := w.belief("HasFood"), w.belief("HasPrey")
	eat := mustAction(t, "Eat", 1, NewBeliefSet(hasPrey), NewBeliefSet(hasFood))
	feed := mustGoal(t, "Feed", 1, nil, NewBeliefSet(hasFood))

	plan := NewRegressivePlanner(quietLogger()).Plan([]*Action{eat}, []*Goal{feed}, nil)

	require.NotNil(t, plan)
	assert.Equal(t, []ActionName{"Eat"}, plan.Names())
	assert.Equal(t, 1.0, plan.TotalCost)
	assert.Same(t, feed, plan.Goal)
}

func TestPlanner_ChainsUnmetPrecondition(t *testing.T) {
	t.Parallel()

	w := facts{}
	hasFood, hasPrey := w.belief("HasFood"), w.belief("HasPrey")
	eat := mustAction(t, "Eat", 1, NewBeliefSet(hasPrey), NewBeliefSet(hasFood))
	catch := mustAction(t, "Catch", 2, nil, NewBeliefSet(hasPrey))
	feed := mustGoal(t, "Feed", 1, nil, NewBeliefSet(hasFood))

	plan := NewRegressivePlanner(quietLogger()).Plan([]*Action{catch, eat}, []*Goal{feed}, nil)

	require.NotNil(t, plan)
	assert.Equal(t, []ActionName{"Catch", "Eat"}, plan.Names())
	assert.Equal(t, 3.0, plan.TotalCost)

	var sum float64
	for _, a := range plan.Actions() {
		sum += a.Cost()
	}
	assert.Equal(t, plan.TotalCost, sum)

	assert.Same(t, catch, plan.Pop(), "first action to execute is on top")
	assert.Same(t, eat, plan.Peek())
}

func TestPlanner_HigherPriorityGoalWins(t *testing.T) {
	t.Parallel()

	w := facts{}
	fed, rested := w.belief("Fed"), w.belief("Rested")
	actions := []*Action{
		mustAction(t, "Eat", 1, nil, NewBeliefSet(fed)),
		mustAction(t, "Nap", 1, nil, NewBeliefSet(rested)),
	}
	low := mustGoal(t, "Rest", 1, nil, NewBeliefSet(rested))
	high := mustGoal(t, "Feed", 5, nil, NewBeliefSet(fed))

	plan := NewRegressivePlanner(quietLogger()).Plan(actions, []*Goal{low, high}, nil)

	require.NotNil(t, plan)
	assert.Same(t, high, plan.Goal)
	assert.Equal(t, []ActionName{"Eat"}, plan.Names())
}

func TestPlanner_NoResolvingActionYieldsNil(t *testing.T) {
	t.Parallel()

	w := facts{}
	fed, rested := w.belief("Fed"), w.belief("Rested")
	nap := mustAction(t, "Nap", 1, nil, NewBeliefSet(rested))
	feed := mustGoal(t, "Feed", 1, nil, NewBeliefSet(fed))

	p := NewRegressivePlanner(quietLogger())
	assert.Nil(t, p.Plan([]*Action{nap}, []*Goal{feed}, nil))
	assert.Nil(t, p.Plan(nil, nil, nil))
}

func TestPlanner_CyclicPreconditionsTerminate(t *testing.T) {
	t.Parallel()

	w := facts{}
	x, y := w.belief("X"), w.belief("Y")
	a := mustAction(t, "MakeX", 1, NewBeliefSet(y), NewBeliefSet(x))
	b := mustAction(t, "MakeY", 1, NewBeliefSet(x), NewBeliefSet(y))
	goal := mustGoal(t, "WantX", 1, nil, NewBeliefSet(x))

	assert.Nil(t, NewRegressivePlanner(quietLogger()).Plan([]*Action{a, b}, []*Goal{goal}, nil))
}

func TestPlanner_PrefersCheaperAction(t *testing.T) {
	t.Parallel()

	w := facts{}
	fed := w.belief("Fed")
	feast := mustAction(t, "Feast", 5, nil, NewBeliefSet(fed))
	snack := mustAction(t, "Snack", 2, nil, NewBeliefSet(fed))
	goal := mustGoal(t, "Feed", 1, nil, NewBeliefSet(fed))

	plan := NewRegressivePlanner(quietLogger()).Plan([]*Action{feast, snack}, []*Goal{goal}, nil)

	require.NotNil(t, plan)
	assert.Equal(t, []ActionName{"Snack"}, plan.Names())
	assert.Equal(t, 2.0, plan.TotalCost)
}

func TestPlanner_NoActionRepeats(t *testing.T) {
	t.Parallel()

	w := facts{}
	a, b, c := w.belief("A"), w.belief("B"), w.belief("C")
	actions := []*Action{
		mustAction(t, "Both", 1, NewBeliefSet(c), NewBeliefSet(a, b)),
		mustAction(t, "GetC", 1, nil, NewBeliefSet(c)),
	}
	goal := mustGoal(t, "AB", 1, nil, NewBeliefSet(a, b))

	plan := NewRegressivePlanner(quietLogger()).Plan(actions, []*Goal{goal}, nil)

	require.NotNil(t, plan)
	assert.Equal(t, []ActionName{"GetC", "Both"}, plan.Names())
	seen := map[ActionName]bool{}
	for _, name := range plan.Names() {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestPlanner_SkipsIrrelevantGoals(t *testing.T) {
	t.Parallel()

	w := facts{"Rested": true}
	fed, rested, hungry := w.belief("Fed"), w.belief("Rested"), w.belief("Hungry")
	actions := []*Action{
		mustAction(t, "Eat", 1, nil, NewBeliefSet(fed)),
		mustAction(t, "Nap", 1, nil, NewBeliefSet(rested)),
	}
	gated := mustGoal(t, "Feed", 9, NewBeliefSet(hungry), NewBeliefSet(fed))
	satisfied := mustGoal(t, "Rest", 5, nil, NewBeliefSet(rested))

	p := NewRegressivePlanner(quietLogger())
	assert.Nil(t, p.Plan(actions, []*Goal{gated, satisfied}, nil))

	w["Hungry"] = true
	plan := p.Plan(actions, []*Goal{gated, satisfied}, nil)
	require.NotNil(t, plan)
	assert.Same(t, gated, plan.Goal)
}

func TestPlanner_MostRecentGoalYieldsToPeers(t *testing.T) {
	t.Parallel()

	w := facts{}
	fed, rested := w.belief("Fed"), w.belief("Rested")
	actions := []*Action{
		mustAction(t, "Eat", 1, nil, NewBeliefSet(fed)),
		mustAction(t, "Nap", 1, nil, NewBeliefSet(rested)),
	}
	feed := mustGoal(t, "Feed", 2, nil, NewBeliefSet(fed))
	rest := mustGoal(t, "Rest", 2, nil, NewBeliefSet(rested))
	goals := []*Goal{feed, rest}

	p := NewRegressivePlanner(quietLogger())
	assert.Same(t, feed, p.Plan(actions, goals, nil).Goal, "input order breaks ties")
	assert.Same(t, rest, p.Plan(actions, goals, feed).Goal)
	assert.Same(t, feed, p.Plan(actions, goals, rest).Goal)
}

func TestPlanner_FallsBackToAchievableGoal(t *testing.T) {
	t.Parallel()

	w := facts{}
	fed, rested := w.belief("Fed"), w.belief("Rested")
	nap := mustAction(t, "Nap", 1, nil, NewBeliefSet(rested))
	feed := mustGoal(t, "Feed", 5, nil, NewBeliefSet(fed))
	rest := mustGoal(t, "Rest", 1, nil, NewBeliefSet(rested))

	plan := NewRegressivePlanner(quietLogger()).Plan([]*Action{nap}, []*Goal{feed, rest}, nil)
	require.NotNil(t, plan)
	assert.Same(t, rest, plan.Goal)
}

func TestPlanner_Deterministic(t *testing.T) {
	t.Parallel()

	w := facts{}
	hasFood, hasPrey, near := w.belief("HasFood"), w.belief("HasPrey"), w.belief("NearPrey")
	actions := []*Action{
		mustAction(t, "Eat", 1, NewBeliefSet(hasPrey), NewBeliefSet(hasFood)),
		mustAction(t, "Catch", 2, NewBeliefSet(near), NewBeliefSet(hasPrey)),
		mustAction(t, "Ambush", 2, nil, NewBeliefSet(hasPrey)),
		mustAction(t, "Stalk", 1, nil, NewBeliefSet(near)),
	}
	feed := mustGoal(t, "Feed", 1, nil, NewBeliefSet(hasFood))

	p := NewRegressivePlanner(quietLogger())
	first := p.Plan(actions, []*Goal{feed}, nil)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		again := p.Plan(actions, []*Goal{feed}, nil)
		assert.Equal(t, first.Names(), again.Names())
		assert.Equal(t, first.TotalCost, again.TotalCost)
	}
}

func TestPlanner_ReplayedPlanReachesGoal(t *testing.T) {
	t.Parallel()

	w := facts{}
	hasFood, hasPrey, near := w.belief("HasFood"), w.belief("HasPrey"), w.belief("NearPrey")
	actions := []*Action{
		mustAction(t, "Eat", 1, NewBeliefSet(hasPrey), NewBeliefSet(hasFood)),
		mustAction(t, "Catch", 2, NewBeliefSet(near), NewBeliefSet(hasPrey)),
		mustAction(t, "Stalk", 1, nil, NewBeliefSet(near)),
	}
	feed := mustGoal(t, "Feed", 1, nil, NewBeliefSet(hasFood))

	plan := NewRegressivePlanner(quietLogger()).Plan(actions, []*Goal{feed}, nil)
	require.NotNil(t, plan)
	assert.Equal(t, []ActionName{"Stalk", "Catch", "Eat"}, plan.Names())

	for !plan.Empty() {
		a := plan.Pop()
		require.True(t, a.Preconditions().AllTrue(), "%s preconditions", a.Name())
		for _, e := range a.Effects() {
			w[e.Name()] = true
		}
	}
	assert.True(t, feed.Satisfied())
}

func TestPlan_NilSafe(t *testing.T) {
	t.Parallel()

	var p *Plan
	assert.True(t, p.Empty())
	assert.Nil(t, p.Pop())
	assert.Nil(t, p.Peek())
	assert.Empty(t, p.Names())
}
