package creature

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/talgya/goap-creatures/internal/goap"
	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/strategy"
	"github.com/talgya/goap-creatures/internal/world"
)

// Predator beliefs.
const (
	BeliefNothing        goap.BeliefName = "Nothing"
	BeliefIdle           goap.BeliefName = "AgentIdle"
	BeliefMoving         goap.BeliefName = "AgentMoving"
	BeliefHungerStarving goap.BeliefName = "AgentHungerStarving"
	BeliefHungerLow      goap.BeliefName = "AgentHungerLow"
	BeliefHungerFull     goap.BeliefName = "AgentHungerFull"
	BeliefPreySensed     goap.BeliefName = "PreySensed"
	BeliefPreyInKill     goap.BeliefName = "PreyInKillRange"
	BeliefPreyAlive      goap.BeliefName = "PreyAlive"
	BeliefPreyDead       goap.BeliefName = "PreyDead"
	BeliefPreyGrabbed    goap.BeliefName = "PreyGrabbed"
	BeliefSafeToEat      goap.BeliefName = "SafeToEat"
	BeliefAtShelter      goap.BeliefName = "AgentAtShelter"
	BeliefShelterKnown   goap.BeliefName = "ShelterKnown"
	BeliefSleeping       goap.BeliefName = "AgentSleeping"
	BeliefDayAlmostOver  goap.BeliefName = "DayAlmostOver"
)

// Predator actions.
const (
	ActionLocateFood    goap.ActionName = "LocateFood"
	ActionChasePrey     goap.ActionName = "ChasePrey"
	ActionKillPrey      goap.ActionName = "KillPrey"
	ActionGrabPrey      goap.ActionName = "GrabPrey"
	ActionMoveToEat     goap.ActionName = "MoveToEat"
	ActionEatPrey       goap.ActionName = "EatPrey"
	ActionLocateShelter goap.ActionName = "LocateShelter"
	ActionMoveToShelter goap.ActionName = "MoveToShelter"
	ActionSleep         goap.ActionName = "Sleep"
	ActionRelax         goap.ActionName = "Relax"
)

// Predator goals.
const (
	GoalKeepHungerUp      goap.GoalName = "KeepHungerUp"
	GoalPreventStarvation goap.GoalName = "PreventStarvation"
	GoalSeekShelter       goap.GoalName = "SeekShelter"
	GoalChillOut          goap.GoalName = "ChillOut"
)

// Hunger and daylight thresholds.
const (
	hungerStarving = 10
	hungerLow      = 30
	hungerFull     = 50
	dayAlmostOver  = 30
)

// Deps are the collaborators a predator is wired to.
type Deps struct {
	Env     Environment
	Clock   Clock
	Rng     *rand.Rand
	Logger  *slog.Logger
	OnEvent func(goap.Event)
}

// predator holds the wiring behind a predator's beliefs and strategies.
type predator struct {
	*Creature
	cfg PredatorConfig
	env Environment
}

// NewPredator creates a predator with its full belief, action and goal
// catalog. Any setup error means the catalog is inconsistent and is returned
// as is.
func NewPredator(id uuid.UUID, name string, pos world.Vec3, cfg PredatorConfig, deps Deps) (*Creature, error) {
	c := newCreature(id, name, memory.KindPredator, pos, cfg.Speed, cfg.SightRange, deps.Clock)
	c.Hunger = cfg.HungerStart
	c.HungerDecay = cfg.HungerDecay
	c.DayLength = cfg.DayLength
	c.DayTimer = cfg.DayLength
	c.Memory.Retention = cfg.MemoryRetention

	p := &predator{Creature: c, cfg: cfg, env: deps.Env}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []goap.Option{
		goap.WithLogger(logger),
		goap.WithPositioner(c),
		goap.WithClock(deps.Clock),
	}
	if deps.OnEvent != nil {
		opts = append(opts, goap.WithEventHandler(deps.OnEvent))
	}
	c.Agent = goap.NewAgent(name, opts...)

	rng := deps.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(id.ID())))
	}

	if err := c.Agent.SetupBeliefs(p.beliefs); err != nil {
		return nil, err
	}
	if err := c.Agent.SetupActions(func(f *goap.ActionFactory) error { return p.actions(f, rng) }); err != nil {
		return nil, err
	}
	if err := c.Agent.SetupGoals(p.goals); err != nil {
		return nil, err
	}

	c.tree = bt.New(bt.Selector,
		bt.New(func([]bt.Node) (bt.Status, error) {
			if !c.Alive || c.Sleeping {
				return bt.Success, nil
			}
			return bt.Failure, nil
		}),
		c.Agent.Node(deps.Clock.Delta),
	)
	return c, nil
}

func (p *predator) beliefs(f *goap.BeliefFactory) error {
	return errors.Join(
		f.AddBelief(BeliefNothing, nil),
		f.AddBelief(BeliefIdle, p.Body.Idle),
		f.AddBelief(BeliefMoving, func() bool { return !p.Body.Idle() }),

		f.AddBelief(BeliefHungerStarving, func() bool { return p.Hunger <= hungerStarving }),
		f.AddBelief(BeliefHungerLow, func() bool { return p.Hunger > hungerStarving && p.Hunger <= hungerLow }),
		f.AddBelief(BeliefHungerFull, func() bool { return p.Hunger >= hungerFull }),

		f.AddBelief(BeliefPreySensed, p.preySensed),
		f.AddLocationBelief(BeliefPreyInKill, p.cfg.KillRange, p.targetLocation),
		f.AddBelief(BeliefPreyAlive, func() bool { return !p.preyDead() }),
		f.AddBelief(BeliefPreyDead, p.preyDead),
		f.AddBelief(BeliefPreyGrabbed, func() bool { return p.Grabbed }),
		f.AddBelief(BeliefSafeToEat, func() bool { return true }),

		f.AddLocationBelief(BeliefAtShelter, p.cfg.ShelterRange, p.shelterLocation),
		f.AddBelief(BeliefShelterKnown, p.Memory.ShelterValid),
		f.AddBelief(BeliefSleeping, p.Asleep),
		f.AddBelief(BeliefDayAlmostOver, func() bool { return p.DayTimer < dayAlmostOver }),
	)
}

func (p *predator) actions(f *goap.ActionFactory, rng *rand.Rand) error {
	points := p.env.InterestPoints()

	kill := strategy.NewAttack(p.cfg.KillDuration, p.preyInReach, p.killTarget).
		Pursue(p.Body, p.freshTarget)

	builders := []*goap.ActionBuilder{
		f.Action(ActionLocateFood).
			WithStrategy(strategy.NewLocate(p.Body, p.Memory, points, memory.CategoryFood, rng)).
			Produces(BeliefPreySensed),

		f.Action(ActionChasePrey).
			WithStrategy(strategy.NewMove(p.Body, p.freshTarget)).
			Requires(BeliefPreySensed, BeliefPreyAlive).
			Produces(BeliefPreyInKill),

		f.Action(ActionKillPrey).
			WithStrategy(kill).
			Requires(BeliefPreySensed, BeliefPreyAlive).
			Produces(BeliefPreyDead),

		f.Action(ActionGrabPrey).
			WithStrategy(strategy.NewGrab(p.Body, p.knownTarget, func() bool { return !p.preyDead() }, p.grab)).
			Requires(BeliefPreySensed, BeliefPreyDead).
			Produces(BeliefPreyGrabbed),

		f.Action(ActionMoveToEat).
			WithStrategy(strategy.Void{}).
			Produces(BeliefSafeToEat),

		f.Action(ActionEatPrey).
			WithStrategy(strategy.NewEat(p.cfg.EatDuration, p.digest, p.consumeTarget)).
			Requires(BeliefPreyGrabbed).
			Produces(BeliefHungerLow),

		f.Action(ActionLocateShelter).
			WithStrategy(strategy.NewLocate(p.Body, p.Memory, points, memory.CategoryShelter, rng)).
			Produces(BeliefShelterKnown),

		f.Action(ActionMoveToShelter).
			WithStrategy(strategy.NewMove(p.Body, p.savedShelter)).
			Requires(BeliefShelterKnown).
			Produces(BeliefAtShelter),

		f.Action(ActionSleep).
			WithStrategy(strategy.NewSleep(p)).
			Requires(BeliefAtShelter).
			Produces(BeliefSleeping),

		f.Action(ActionRelax).
			WithStrategy(strategy.NewIdle(p.cfg.IdleDuration)).
			Produces(BeliefNothing),
	}

	for _, b := range builders {
		if err := f.Add(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *predator) goals(f *goap.GoalFactory) error {
	builders := []*goap.GoalBuilder{
		f.Goal(GoalKeepHungerUp).
			WithPriority(3).
			Desires(BeliefHungerLow).
			AbandonWhen(BeliefDayAlmostOver),

		f.Goal(GoalPreventStarvation).
			WithPriority(5).
			Requires(BeliefHungerStarving).
			Desires(BeliefHungerLow),

		f.Goal(GoalSeekShelter).
			WithPriority(4).
			Requires(BeliefDayAlmostOver).
			Desires(BeliefSleeping).
			AbandonWhen(BeliefHungerStarving),

		f.Goal(GoalChillOut).
			WithPriority(1).
			Desires(BeliefNothing),
	}

	for _, b := range builders {
		if err := f.Add(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *predator) preySensed() bool {
	return p.Memory.TargetValid() && p.clock.Now()-p.Memory.Target.Seen < p.cfg.RecentWindow
}

func (p *predator) preyDead() bool {
	if !p.Memory.TargetValid() {
		return false
	}
	prey, ok := p.env.Lookup(p.Memory.Target.ID)
	return ok && !prey.Alive
}

// preyInReach checks the real prey, not its remembered position.
func (p *predator) preyInReach() bool {
	if !p.Memory.TargetValid() {
		return false
	}
	prey, ok := p.env.Lookup(p.Memory.Target.ID)
	return ok && prey.Alive && p.Position().Distance(prey.Position()) < p.cfg.KillRange
}

func (p *predator) targetLocation() world.Vec3 {
	if !p.Memory.TargetValid() {
		return nowhere
	}
	return p.Memory.Target.Position
}

func (p *predator) shelterLocation() world.Vec3 {
	if !p.Memory.ShelterValid() {
		return nowhere
	}
	return p.Memory.SavedShelter.Position
}

// knownTarget is the remembered target position, however old.
func (p *predator) knownTarget() (world.Vec3, bool) {
	if !p.Memory.TargetValid() {
		return world.Zero, false
	}
	return p.Memory.Target.Position, true
}

// freshTarget is the target position while it is still being seen.
func (p *predator) freshTarget() (world.Vec3, bool) {
	if !p.preySensed() {
		return world.Zero, false
	}
	return p.Memory.Target.Position, true
}

func (p *predator) savedShelter() (world.Vec3, bool) {
	if !p.Memory.ShelterValid() {
		return world.Zero, false
	}
	return p.Memory.SavedShelter.Position, true
}

func (p *predator) killTarget() {
	if !p.Memory.TargetValid() {
		return
	}
	if p.env.Kill(p.Memory.Target.ID) {
		p.Kills++
	}
}

func (p *predator) grab() {
	p.Grabbed = true
}

func (p *predator) digest() {
	p.Hunger += p.cfg.HungerGain
	p.Meals++
}

func (p *predator) consumeTarget() {
	if p.Memory.TargetValid() {
		id := p.Memory.Target.ID
		p.env.Consume(id)
		p.Memory.Forget(id)
	}
	p.Memory.ClearTarget()
	p.Grabbed = false
}
