package strategy

import (
	"math/rand"
	"time"

	"github.com/talgya/goap-creatures/internal/goap"
	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// Locomotion moves a creature toward a destination.
type Locomotion interface {
	SetDestination(dest world.Vec3)
	ClearDestination()
	Reached() bool
}

// Searcher is the part of a creature's memory that runs a search.
type Searcher interface {
	SetSearch(category memory.Category)
	TargetValid() bool
}

// Sleeper is a creature that can fall asleep. Waking is up to the day cycle.
type Sleeper interface {
	FallAsleep()
	Asleep() bool
}

// Destination yields where to go, or false if there is nowhere to go.
type Destination func() (world.Vec3, bool)

var (
	_ goap.Strategy = (*Idle)(nil)
	_ goap.Strategy = (*Locate)(nil)
	_ goap.Strategy = (*Move)(nil)
	_ goap.Strategy = (*Eat)(nil)
	_ goap.Strategy = (*Sleep)(nil)
	_ goap.Strategy = (*Grab)(nil)
	_ goap.Strategy = (*Attack)(nil)
	_ goap.Strategy = Void{}
)

// Idle waits out a timer.
type Idle struct {
	timer    *CountdownTimer
	complete bool
}

// NewIdle creates an idle strategy lasting d.
func NewIdle(d time.Duration) *Idle {
	s := &Idle{timer: NewCountdownTimer(d)}
	s.timer.OnStart = func() { s.complete = false }
	s.timer.OnStop = func() { s.complete = true }
	return s
}

func (s *Idle) CanPerform() bool { return true }
func (s *Idle) Complete() bool { return s.complete }
func (s *Idle) EndEarly() bool { return false }
func (s *Idle) Start() { s.timer.Start() }
func (s *Idle) Update(dt time.Duration) { s.timer.Tick(dt) }
func (s *Idle) Timer() *CountdownTimer { return s.timer }

// Locate wanders between random interest points until the searcher finds a
// target of the wanted category.
type Locate struct {
	body     Locomotion
	searcher Searcher
	points   []world.Vec3
	category memory.Category
	rng      *rand.Rand

	complete bool
}

// NewLocate creates a search over points. rng picks the next point.
func NewLocate(body Locomotion, searcher Searcher, points []world.Vec3, category memory.Category, rng *rand.Rand) *Locate {
	return &Locate{body: body, searcher: searcher, points: points, category: category, rng: rng}
}

func (s *Locate) CanPerform() bool { return !s.complete }
func (s *Locate) Complete() bool { return s.complete }
func (s *Locate) EndEarly() bool { return false }

func (s *Locate) Start() {
	s.complete = false
	s.searcher.SetSearch(s.category)
	s.wander()
}

func (s *Locate) Update(time.Duration) {
	if s.body.Reached() {
		s.wander()
	}
	if s.searcher.TargetValid() {
		s.complete = true
	}
}

func (s *Locate) Stop() { s.body.ClearDestination() }

func (s *Locate) wander() {
	if len(s.points) == 0 {
		return
	}
	s.body.SetDestination(s.points[s.rng.Intn(len(s.points))])
}

// Move walks to a destination resolved at Start. It ends early if there is
// no destination.
type Move struct {
	body        Locomotion
	destination Destination
	lost        bool
}

// NewMove creates a move toward whatever destination yields at Start.
func NewMove(body Locomotion, destination Destination) *Move {
	return &Move{body: body, destination: destination}
}

func (s *Move) CanPerform() bool { return !s.Complete() }
func (s *Move) Complete() bool { return !s.lost && s.body.Reached() }
func (s *Move) EndEarly() bool { return s.lost }

func (s *Move) Start() {
	dest, ok := s.destination()
	s.lost = !ok
	if ok {
		s.body.SetDestination(dest)
	}
}

func (s *Move) Stop() { s.body.ClearDestination() }
func (s *Move) StopEarly() { s.body.ClearDestination() }

// Eat runs a timer. onEaten fires when the meal is finished and onStop when
// the action stops.
type Eat struct {
	timer    *CountdownTimer
	onStop   func()
	complete bool
}

// NewEat creates an eat strategy lasting d.
func NewEat(d time.Duration, onEaten, onStop func()) *Eat {
	s := &Eat{timer: NewCountdownTimer(d), onStop: onStop}
	s.timer.OnStart = func() { s.complete = false }
	s.timer.OnStop = func() {
		s.complete = true
		if onEaten != nil {
			onEaten()
		}
	}
	return s
}

func (s *Eat) CanPerform() bool { return true }
func (s *Eat) Complete() bool { return s.complete }
func (s *Eat) EndEarly() bool { return false }
func (s *Eat) Start() { s.timer.Start() }
func (s *Eat) Update(dt time.Duration) { s.timer.Tick(dt) }

func (s *Eat) Stop() {
	if s.onStop != nil {
		s.onStop()
	}
}

// Sleep puts the creature to sleep and completes once it is asleep. Waking
// is left to the day cycle.
type Sleep struct {
	sleeper Sleeper
	slept   bool
}

// NewSleep creates a sleep strategy.
func NewSleep(sleeper Sleeper) *Sleep {
	return &Sleep{sleeper: sleeper}
}

func (s *Sleep) CanPerform() bool { return true }
func (s *Sleep) Complete() bool { return s.slept && s.sleeper.Asleep() }
func (s *Sleep) EndEarly() bool { return false }

func (s *Sleep) Start() {
	s.sleeper.FallAsleep()
	s.slept = true
}

// Grab walks to a kill and takes it. It ends early while the prey is still
// alive.
type Grab struct {
	body        Locomotion
	destination Destination
	preyAlive   func() bool
	onGrab      func()

	complete bool
	endEarly bool
}

// NewGrab creates a grab strategy.
func NewGrab(body Locomotion, destination Destination, preyAlive func() bool, onGrab func()) *Grab {
	return &Grab{body: body, destination: destination, preyAlive: preyAlive, onGrab: onGrab}
}

func (s *Grab) CanPerform() bool { return !s.complete }
func (s *Grab) Complete() bool { return s.complete }
func (s *Grab) EndEarly() bool { return s.endEarly }

func (s *Grab) Start() {
	s.complete = false
	s.endEarly = false
	dest, ok := s.destination()
	if !ok {
		s.endEarly = true
		return
	}
	s.body.SetDestination(dest)
}

func (s *Grab) Update(time.Duration) {
	if s.preyAlive() {
		s.endEarly = true
		return
	}
	if s.body.Reached() {
		if s.onGrab != nil {
			s.onGrab()
		}
		s.complete = true
	}
}

func (s *Grab) Stop() { s.body.ClearDestination() }
func (s *Grab) StopEarly() { s.Stop() }

// Attack strikes at prey in range for a timer's worth of time, then calls
// onKill. Without pursuit it ends early as soon as the prey is out of range;
// with pursuit it closes the distance first and ends early only when the
// target is lost.
type Attack struct {
	timer   *CountdownTimer
	inRange func() bool
	onKill  func()

	body   Locomotion
	target Destination

	complete bool
	escaped  bool
}

// NewAttack creates an attack lasting d.
func NewAttack(d time.Duration, inRange func() bool, onKill func()) *Attack {
	s := &Attack{timer: NewCountdownTimer(d), inRange: inRange, onKill: onKill}
	s.timer.OnStop = s.strike
	return s
}

// Pursue makes the attack chase target with body while out of range.
func (s *Attack) Pursue(body Locomotion, target Destination) *Attack {
	s.body, s.target = body, target
	return s
}

func (s *Attack) CanPerform() bool { return !s.complete }
func (s *Attack) Complete() bool { return s.complete }
func (s *Attack) EndEarly() bool { return s.escaped }

func (s *Attack) Start() {
	s.complete = false
	s.escaped = false
	s.timer.Start()
}

func (s *Attack) Update(dt time.Duration) {
	if s.inRange() {
		s.timer.Tick(dt)
		return
	}
	if s.body == nil {
		s.escaped = true
		return
	}
	dest, ok := s.target()
	if !ok {
		s.escaped = true
		return
	}
	s.body.SetDestination(dest)
}

func (s *Attack) Stop() {
	if s.body != nil {
		s.body.ClearDestination()
	}
}

// StopEarly abandons the strike without a kill.
func (s *Attack) StopEarly() {
	s.timer.Stop()
	s.Stop()
}

func (s *Attack) strike() {
	if s.escaped {
		return
	}
	s.complete = true
	if s.onKill != nil {
		s.onKill()
	}
}

// Void does nothing and is always complete.
type Void struct{}

func (Void) CanPerform() bool { return true }
func (Void) Complete() bool { return true }
func (Void) EndEarly() bool { return false }
