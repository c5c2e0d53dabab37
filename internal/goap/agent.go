package goap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventKind classifies controller events.
type EventKind string

const (
	EventPlanAdopted           EventKind = "plan_adopted"
	EventActionStarted         EventKind = "action_started"
	EventActionCompleted       EventKind = "action_completed"
	EventActionEndedEarly      EventKind = "action_ended_early"
	EventEffectsUnverified     EventKind = "effects_unverified"
	EventPlanCompleted         EventKind = "plan_completed"
	EventPreconditionsViolated EventKind = "preconditions_violated"
	EventGoalAbandoned         EventKind = "goal_abandoned"
)

// Event reports a controller state transition.
type Event struct {
	Kind    EventKind
	Agent   string
	Goal    GoalName
	Action  ActionName
	PlanID  uuid.UUID
	Actions []ActionName // remaining plan, set on plan_adopted
	Cost    float64
	Detail  string
}

// Agent owns one creature's beliefs, actions and goals, picks a goal, asks the
// planner for a plan and executes it one action at a time. It is driven by
// one Tick per simulation frame and is not safe for concurrent use.
type Agent struct {
	name    string
	beliefs *BeliefRegistry
	actions []*Action
	goals   []*Goal

	planner Planner
	self    Positioner
	clock   Clock
	logger  *slog.Logger
	onEvent func(Event)

	currentGoal   *Goal
	lastGoal      *Goal
	currentAction *Action
	plan          *Plan
	adoptedPlan   uuid.UUID
	completions   uint64
}

// Option configures an Agent.
type Option func(*Agent)

// WithPlanner replaces the default RegressivePlanner.
func WithPlanner(p Planner) Option {
	return func(a *Agent) { a.planner = p }
}

// WithLogger sets the logger; the agent name is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithPositioner sets the agent's own position source for location beliefs.
func WithPositioner(p Positioner) Option {
	return func(a *Agent) { a.self = p }
}

// WithClock sets the time source for sensor beliefs.
func WithClock(c Clock) Option {
	return func(a *Agent) { a.clock = c }
}

// WithEventHandler registers a callback for controller events.
func WithEventHandler(fn func(Event)) Option {
	return func(a *Agent) { a.onEvent = fn }
}

// NewAgent creates an agent with empty registries.
func NewAgent(name string, opts ...Option) *Agent {
	a := &Agent{
		name:    name,
		beliefs: NewBeliefRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("agent", name)
	if a.planner == nil {
		a.planner = NewRegressivePlanner(a.logger)
	}
	return a
}

// ActionFactory registers actions into an agent during setup.
type ActionFactory struct {
	agent *Agent
}

// Belief returns a registered belief.
func (f *ActionFactory) Belief(name BeliefName) (*Belief, error) {
	return f.agent.beliefs.Get(name)
}

// Action starts a builder whose Requires/Produces resolve against the agent's beliefs.
func (f *ActionFactory) Action(name ActionName) *ActionBuilder {
	b := NewActionBuilder(name)
	b.registry = f.agent.beliefs
	return b
}

// Add builds b and registers the result.
func (f *ActionFactory) Add(b *ActionBuilder) error {
	action, err := b.Build()
	if err != nil {
		return err
	}
	return f.agent.AddAction(action)
}

// GoalFactory registers goals into an agent during setup.
type GoalFactory struct {
	agent *Agent
}

// Goal starts a builder whose name lookups resolve against the agent's beliefs.
func (f *GoalFactory) Goal(name GoalName) *GoalBuilder {
	b := NewGoalBuilder(name)
	b.registry = f.agent.beliefs
	return b
}

// Add builds b and registers the result.
func (f *GoalFactory) Add(b *GoalBuilder) error {
	goal, err := b.Build()
	if err != nil {
		return err
	}
	return f.agent.AddGoal(goal)
}

// SetupBeliefs registers beliefs through fn.
func (a *Agent) SetupBeliefs(fn func(f *BeliefFactory) error) error {
	if err := fn(NewBeliefFactory(a.self, a.clock, a.beliefs)); err != nil {
		return fmt.Errorf("setup beliefs for %s: %w", a.name, err)
	}
	return nil
}

// SetupActions registers actions through fn.
func (a *Agent) SetupActions(fn func(f *ActionFactory) error) error {
	if err := fn(&ActionFactory{agent: a}); err != nil {
		return fmt.Errorf("setup actions for %s: %w", a.name, err)
	}
	return nil
}

// SetupGoals registers goals through fn.
func (a *Agent) SetupGoals(fn func(f *GoalFactory) error) error {
	if err := fn(&GoalFactory{agent: a}); err != nil {
		return fmt.Errorf("setup goals for %s: %w", a.name, err)
	}
	return nil
}

// AddAction registers a built action. Names must be unique.
func (a *Agent) AddAction(action *Action) error {
	for _, existing := range a.actions {
		if existing.name == action.name {
			return fmt.Errorf("%w: %s", ErrDuplicateAction, action.name)
		}
	}
	a.actions = append(a.actions, action)
	return nil
}

// AddGoal registers a built goal. Names must be unique.
func (a *Agent) AddGoal(goal *Goal) error {
	for _, existing := range a.goals {
		if existing.name == goal.name {
			return fmt.Errorf("%w: %s", ErrDuplicateGoal, goal.name)
		}
	}
	a.goals = append(a.goals, goal)
	return nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Beliefs returns the belief registry.
func (a *Agent) Beliefs() *BeliefRegistry { return a.beliefs }

// Belief returns the named belief, or nil.
func (a *Agent) Belief(name BeliefName) *Belief {
	b, _ := a.beliefs.Get(name)
	return b
}

// Actions returns the action catalog in registration order.
func (a *Agent) Actions() []*Action { return a.actions }

// Goals returns the goals in registration order.
func (a *Agent) Goals() []*Goal { return a.goals }

// CurrentGoal returns the goal being pursued, or nil.
func (a *Agent) CurrentGoal() *Goal { return a.currentGoal }

// LastGoal returns the most recently completed goal, or nil.
func (a *Agent) LastGoal() *Goal { return a.lastGoal }

// CurrentAction returns the executing action, or nil.
func (a *Agent) CurrentAction() *Action { return a.currentAction }

// Plan returns the stored plan, or nil.
func (a *Agent) Plan() *Plan { return a.plan }

// Completions returns how many plans have run to completion.
func (a *Agent) Completions() uint64 { return a.completions }

// CalculatePlan asks the planner for a plan. While a goal is active only
// strictly more urgent goals are considered. A found plan replaces the
// stored one; the current goal and action are left alone.
func (a *Agent) CalculatePlan() {
	goals := a.goals
	if a.currentGoal != nil {
		a.logger.Debug("goal active, considering only higher priority goals", "goal", a.currentGoal.name)
		goals = make([]*Goal, 0, len(a.goals))
		for _, g := range a.goals {
			if g.priority > a.currentGoal.priority {
				goals = append(goals, g)
			}
		}
	}

	if plan := a.planner.Plan(a.actions, goals, a.lastGoal); plan != nil {
		a.plan = plan
	}
}

// UpdatePlan recalculates, adopts the stored plan's goal and starts its next
// action. If that action's preconditions no longer hold the goal is reset
// instead of starting it.
func (a *Agent) UpdatePlan() {
	a.CalculatePlan()

	if a.plan.Empty() {
		return
	}

	a.currentGoal = a.plan.Goal
	if a.plan.ID != a.adoptedPlan {
		a.adoptedPlan = a.plan.ID
		a.logger.Info("plan adopted",
			"goal", a.currentGoal.name,
			"actions", a.plan.Names(),
			"cost", a.plan.TotalCost,
		)
		a.emit(Event{Kind: EventPlanAdopted, Actions: a.plan.Names(), Cost: a.plan.TotalCost})
	}

	a.currentAction = a.plan.Pop()
	if !a.currentAction.preconditions.AllTrue() {
		unmet := a.currentAction.preconditions.Unsatisfied().Names()
		a.logger.Info("preconditions not met, resetting goal",
			"goal", a.currentGoal.name,
			"action", a.currentAction.name,
			"unmet", unmet,
		)
		a.emit(Event{Kind: EventPreconditionsViolated, Detail: fmt.Sprint(unmet)})
		a.ResetGoal()
		return
	}

	a.logger.Debug("action started", "goal", a.currentGoal.name, "action", a.currentAction.name)
	a.emit(Event{Kind: EventActionStarted})
	a.currentAction.Start()
}

// ExecutePlan advances the current action by dt and, once it completes or
// ends early, stops it. When the plan runs out the goal is recorded as the
// last goal and cleared.
func (a *Agent) ExecutePlan(dt time.Duration) {
	action := a.currentAction
	if action == nil {
		return
	}

	action.Update(dt)

	endEarly := action.EndEarly()
	if !endEarly && !action.Complete() {
		return
	}

	if endEarly {
		a.logger.Info("action ended early", "action", action.name)
		a.emit(Event{Kind: EventActionEndedEarly})
		action.StopEarly()
	} else {
		if unverified := action.UnverifiedEffects(); len(unverified) > 0 {
			a.logger.Warn("action complete but effects do not hold",
				"action", action.name,
				"effects", unverified.Names(),
			)
			a.emit(Event{Kind: EventEffectsUnverified, Detail: fmt.Sprint(unverified.Names())})
		}
		a.logger.Debug("action complete", "action", action.name)
		a.emit(Event{Kind: EventActionCompleted})
		action.Stop()
	}

	a.currentAction = nil

	if a.plan.Empty() {
		a.logger.Info("plan complete", "goal", goalName(a.currentGoal))
		a.emit(Event{Kind: EventPlanCompleted})
		a.completions++
		a.lastGoal = a.currentGoal
		a.currentGoal = nil
	}
}

// Tick runs one frame: plan when idle, execute when busy, then drop the goal
// if one of its abandon conditions holds.
func (a *Agent) Tick(dt time.Duration) {
	if a.currentAction == nil {
		a.UpdatePlan()
	}
	if a.plan != nil && a.currentAction != nil {
		a.ExecutePlan(dt)
	}
	if a.currentGoal != nil && a.currentGoal.ShouldAbandon() {
		a.logger.Info("goal abandoned", "goal", a.currentGoal.name)
		a.emit(Event{Kind: EventGoalAbandoned})
		a.ResetGoal()
	}
}

// ResetGoal abandons the current goal, action and plan so the next frame
// replans from scratch.
func (a *Agent) ResetGoal() {
	a.currentGoal = nil
	a.currentAction = nil
	a.plan = nil
}

// Status is a diagnostics snapshot of the controller.
type Status struct {
	Agent     string       `json:"agent"`
	Goal      GoalName     `json:"goal,omitempty"`
	LastGoal  GoalName     `json:"last_goal,omitempty"`
	Action    ActionName   `json:"action,omitempty"`
	PlanID    string       `json:"plan_id,omitempty"`
	Remaining []ActionName `json:"remaining,omitempty"`
	PlanCost  float64      `json:"plan_cost,omitempty"`
}

// Status returns the controller's current state.
func (a *Agent) Status() Status {
	s := Status{
		Agent:    a.name,
		Goal:     goalName(a.currentGoal),
		LastGoal: goalName(a.lastGoal),
	}
	if a.currentAction != nil {
		s.Action = a.currentAction.name
	}
	if a.plan != nil {
		s.PlanID = a.plan.ID.String()
		s.Remaining = a.plan.Names()
		s.PlanCost = a.plan.TotalCost
	}
	return s
}

func (a *Agent) emit(e Event) {
	if a.onEvent == nil {
		return
	}
	e.Agent = a.name
	if e.Goal == "" {
		e.Goal = goalName(a.currentGoal)
	}
	if e.Action == "" && a.currentAction != nil {
		e.Action = a.currentAction.name
	}
	if a.plan != nil {
		e.PlanID = a.plan.ID
	}
	a.onEvent(e)
}

func goalName(g *Goal) GoalName {
	if g == nil {
		return ""
	}
	return g.name
}
