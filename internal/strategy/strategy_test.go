package strategy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

const second = time.Second

func TestCountdownTimer(t *testing.T) {
	t.Parallel()

	var started, stopped int
	timer := NewCountdownTimer(2 * second)
	timer.OnStart = func() { started++ }
	timer.OnStop = func() { stopped++ }

	timer.Tick(second)
	assert.False(t, timer.IsRunning(), "ticks before Start are ignored")
	assert.Equal(t, 1.0, timer.Progress())

	timer.Start()
	assert.True(t, timer.IsRunning())
	assert.Equal(t, 1, started)

	timer.Tick(500 * time.Millisecond)
	assert.InDelta(t, 0.75, timer.Progress(), 1e-9)
	assert.False(t, timer.IsFinished())

	timer.Tick(2 * second)
	assert.False(t, timer.IsRunning())
	assert.True(t, timer.IsFinished())
	assert.Equal(t, 1, stopped)
	assert.Zero(t, timer.Remaining())

	timer.Stop()
	assert.Equal(t, 1, stopped, "stopping a stopped timer is a no-op")

	timer.Start()
	assert.Equal(t, 2*second, timer.Remaining())
	timer.Reset()
	assert.True(t, timer.IsRunning())
}

func TestIdle(t *testing.T) {
	t.Parallel()

	s := NewIdle(second)
	s.Start()
	assert.False(t, s.Complete())
	s.Update(600 * time.Millisecond)
	assert.False(t, s.Complete())
	s.Update(600 * time.Millisecond)
	assert.True(t, s.Complete())

	s.Start()
	assert.False(t, s.Complete(), "restart clears completion")
}

type searcher struct {
	category memory.Category
	found    bool
}

func (s *searcher) SetSearch(c memory.Category) { s.category = c }
func (s *searcher) TargetValid() bool { return s.found }

func TestLocate(t *testing.T) {
	t.Parallel()

	body := world.NewBody(world.Zero, 10)
	mem := &searcher{}
	points := []world.Vec3{world.V(1, 0, 0), world.V(2, 0, 0)}
	s := NewLocate(body, mem, points, memory.CategoryFood, rand.New(rand.NewSource(1)))

	s.Start()
	assert.Equal(t, memory.CategoryFood, mem.category)
	dest, ok := body.Destination()
	require.True(t, ok)
	assert.Contains(t, points, dest)

	body.Step(second)
	require.True(t, body.Reached())
	s.Update(second)
	assert.False(t, s.Complete())
	assert.False(t, body.Reached(), "a reached point is replaced by a new one")

	mem.found = true
	s.Update(second)
	assert.True(t, s.Complete())
	assert.False(t, s.CanPerform())

	s.Stop()
	_, ok = body.Destination()
	assert.False(t, ok)
}

func TestMove(t *testing.T) {
	t.Parallel()

	body := world.NewBody(world.Zero, 1)
	s := NewMove(body, func() (world.Vec3, bool) { return world.V(2, 0, 0), true })

	s.Start()
	assert.False(t, s.Complete())
	body.Step(second)
	assert.False(t, s.Complete())
	body.Step(second)
	assert.True(t, s.Complete())
	s.Stop()
	_, ok := body.Destination()
	assert.False(t, ok)

	lost := NewMove(body, func() (world.Vec3, bool) { return world.Zero, false })
	lost.Start()
	assert.True(t, lost.EndEarly())
	assert.False(t, lost.Complete())
}

func TestEat(t *testing.T) {
	t.Parallel()

	var eaten, stopped bool
	s := NewEat(second, func() { eaten = true }, func() { stopped = true })

	s.Start()
	s.Update(500 * time.Millisecond)
	assert.False(t, eaten)
	s.Update(500 * time.Millisecond)
	assert.True(t, eaten)
	assert.True(t, s.Complete())
	assert.False(t, stopped)

	s.Stop()
	assert.True(t, stopped)
}

type sleeper struct{ asleep bool }

func (s *sleeper) FallAsleep() { s.asleep = true }
func (s *sleeper) Asleep() bool { return s.asleep }

func TestSleep(t *testing.T) {
	t.Parallel()

	z := &sleeper{}
	s := NewSleep(z)
	assert.False(t, s.Complete(), "not started")

	s.Start()
	assert.True(t, z.asleep)
	assert.True(t, s.Complete())
}

func TestGrab(t *testing.T) {
	t.Parallel()

	t.Run("grabs dead prey on arrival", func(t *testing.T) {
		body := world.NewBody(world.Zero, 1)
		grabbed := false
		s := NewGrab(body,
			func() (world.Vec3, bool) { return world.V(1, 0, 0), true },
			func() bool { return false },
			func() { grabbed = true },
		)
		s.Start()
		s.Update(second)
		assert.False(t, s.Complete())

		body.Step(second)
		s.Update(second)
		assert.True(t, grabbed)
		assert.True(t, s.Complete())
		assert.False(t, s.EndEarly())
	})

	t.Run("ends early while prey lives", func(t *testing.T) {
		body := world.NewBody(world.Zero, 1)
		s := NewGrab(body,
			func() (world.Vec3, bool) { return world.V(5, 0, 0), true },
			func() bool { return true },
			nil,
		)
		s.Start()
		s.Update(second)
		assert.True(t, s.EndEarly())
		s.StopEarly()
		_, ok := body.Destination()
		assert.False(t, ok)
	})

	t.Run("does not grab live prey on arrival", func(t *testing.T) {
		body := world.NewBody(world.Zero, 1)
		grabbed := false
		s := NewGrab(body,
			func() (world.Vec3, bool) { return world.Zero, true },
			func() bool { return true },
			func() { grabbed = true },
		)
		s.Start()
		body.Step(second)
		s.Update(second)
		assert.True(t, s.EndEarly())
		assert.False(t, s.Complete())
		assert.False(t, grabbed)
	})

	t.Run("ends early without a target", func(t *testing.T) {
		s := NewGrab(world.NewBody(world.Zero, 1),
			func() (world.Vec3, bool) { return world.Zero, false },
			func() bool { return false },
			nil,
		)
		s.Start()
		assert.True(t, s.EndEarly())
	})
}

func TestAttack(t *testing.T) {
	t.Parallel()

	t.Run("kills after the strike time", func(t *testing.T) {
		kills := 0
		s := NewAttack(second, func() bool { return true }, func() { kills++ })
		s.Start()
		s.Update(600 * time.Millisecond)
		assert.False(t, s.Complete())
		s.Update(600 * time.Millisecond)
		assert.True(t, s.Complete())
		assert.Equal(t, 1, kills)
	})

	t.Run("prey escaping ends early without a kill", func(t *testing.T) {
		kills := 0
		inRange := true
		s := NewAttack(second, func() bool { return inRange }, func() { kills++ })
		s.Start()
		s.Update(500 * time.Millisecond)
		inRange = false
		s.Update(500 * time.Millisecond)
		assert.True(t, s.EndEarly())
		s.StopEarly()
		assert.Zero(t, kills)
		assert.False(t, s.Complete())
	})
}

func TestVoid(t *testing.T) {
	t.Parallel()

	var v Void
	assert.True(t, v.Complete())
	assert.True(t, v.CanPerform())
	assert.False(t, v.EndEarly())
}
