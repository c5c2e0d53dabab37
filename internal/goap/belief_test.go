package goap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// facts is a tiny mutable world for tests.
type facts map[BeliefName]bool

func (f facts) belief(name BeliefName) *Belief {
	return NewBelief(name, func() bool { return f[name] })
}

func (f facts) is(name BeliefName) Condition {
	return func() bool { return f[name] }
}

type fixedPos world.Vec3

func (p *fixedPos) Position() world.Vec3 { return world.Vec3(*p) }

type fixedClock time.Duration

func (c *fixedClock) Now() time.Duration { return time.Duration(*c) }

type fakeSensor map[memory.Category]time.Duration

func (s fakeSensor) LatestTimestamp(c memory.Category) (time.Duration, bool) {
	t, ok := s[c]
	return t, ok
}

func TestBelief_Evaluate(t *testing.T) {
	t.Parallel()

	w := facts{}
	b := w.belief("Hungry")
	assert.False(t, b.Evaluate())
	w["Hungry"] = true
	assert.True(t, b.Evaluate())

	assert.False(t, NewBelief("Nothing", nil).Evaluate(), "nil condition is false")
}

func TestBelief_Location(t *testing.T) {
	t.Parallel()

	b := NewBelief("Den", nil)
	assert.Equal(t, world.Zero, b.Location())

	b.UpdateLocation(world.V(1, 2, 3))
	assert.Equal(t, world.V(1, 2, 3), b.Location())

	target := world.V(4, 0, 0)
	b.BindLocation(func() world.Vec3 { return target })
	target = world.V(5, 0, 0)
	assert.Equal(t, world.V(5, 0, 0), b.Location(), "bound location follows its source")
}

func TestBeliefSet_Operations(t *testing.T) {
	t.Parallel()

	w := facts{"A": true}
	a, b, c := w.belief("A"), w.belief("B"), w.belief("C")

	s := NewBeliefSet(a, b, a, nil)
	assert.Equal(t, []BeliefName{"A", "B"}, s.Names())
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(c))

	u := s.Union(NewBeliefSet(c, b))
	assert.Equal(t, []BeliefName{"A", "B", "C"}, u.Names())
	assert.Equal(t, []BeliefName{"A", "B"}, s.Names(), "union leaves receiver alone")

	assert.Equal(t, []BeliefName{"A", "C"}, u.Without(NewBeliefSet(b)).Names())
	assert.True(t, s.Intersects(NewBeliefSet(c, b)))
	assert.False(t, s.Intersects(NewBeliefSet(c)))

	assert.Equal(t, []BeliefName{"B"}, s.Unsatisfied().Names())
	assert.False(t, s.AllTrue())
	assert.True(t, s.AnyFalse())
	assert.True(t, BeliefSet(nil).AllTrue())
}

func TestBeliefSet_WithDoesNotAlias(t *testing.T) {
	t.Parallel()

	w := facts{}
	base := make(BeliefSet, 0, 4)
	base = base.With(w.belief("A"))

	x := base.With(w.belief("X"))
	y := base.With(w.belief("Y"))
	assert.Equal(t, []BeliefName{"A", "X"}, x.Names())
	assert.Equal(t, []BeliefName{"A", "Y"}, y.Names())
}

func TestBeliefRegistry(t *testing.T) {
	t.Parallel()

	r := NewBeliefRegistry()
	require.NoError(t, r.Add(NewBelief("A", nil)))
	require.NoError(t, r.Add(NewBelief("B", nil)))

	err := r.Add(NewBelief("A", nil))
	assert.True(t, errors.Is(err, ErrDuplicateBelief))

	_, err = r.Get("Z")
	assert.True(t, errors.Is(err, ErrMissingBelief))

	s, err := r.Lookup("B", "A")
	require.NoError(t, err)
	assert.Equal(t, []BeliefName{"B", "A"}, s.Names())

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, BeliefName("A"), r.All()[0].Name())
}

func TestBeliefFactory_LocationBelief(t *testing.T) {
	t.Parallel()

	self := fixedPos(world.V(0, 0, 0))
	r := NewBeliefRegistry()
	f := NewBeliefFactory(&self, nil, r)

	den := world.V(3, 0, 0)
	require.NoError(t, f.AddLocationBelief("AtDen", 3, func() world.Vec3 { return den }))
	b, err := r.Get("AtDen")
	require.NoError(t, err)

	assert.False(t, b.Evaluate(), "range test is strict")
	self = fixedPos(world.V(0.5, 0, 0))
	assert.True(t, b.Evaluate())
	assert.Equal(t, den, b.Location())
}

func TestBeliefFactory_TransformBelief(t *testing.T) {
	t.Parallel()

	self := fixedPos(world.V(0, 0, 0))
	target := fixedPos(world.V(10, 0, 0))
	r := NewBeliefRegistry()
	f := NewBeliefFactory(&self, nil, r)

	require.NoError(t, f.AddTransformBelief("NearPrey", 2, &target))
	require.NoError(t, f.AddTransformBelief("NearNothing", 2, nil))
	near, _ := r.Get("NearPrey")
	nothing, _ := r.Get("NearNothing")

	assert.False(t, near.Evaluate())
	target = fixedPos(world.V(1, 0, 0))
	assert.True(t, near.Evaluate())
	assert.Equal(t, world.V(1, 0, 0), near.Location())

	assert.True(t, nothing.Evaluate(), "nil target resolves to the origin")
}

func TestBeliefFactory_SensorBelief(t *testing.T) {
	t.Parallel()

	now := fixedClock(10 * time.Second)
	sensor := fakeSensor{}
	r := NewBeliefRegistry()
	f := NewBeliefFactory(nil, &now, r)

	require.NoError(t, f.AddSensorBelief("FoodSensed", sensor, memory.CategoryFood, 3*time.Second))
	b, _ := r.Get("FoodSensed")

	assert.False(t, b.Evaluate(), "never seen")
	sensor[memory.CategoryFood] = 8 * time.Second
	assert.True(t, b.Evaluate())
	now = fixedClock(11 * time.Second)
	assert.False(t, b.Evaluate(), "window is exclusive")
}

func TestBeliefFactory_Duplicate(t *testing.T) {
	t.Parallel()

	f := NewBeliefFactory(nil, nil, NewBeliefRegistry())
	require.NoError(t, f.AddBelief("A", nil))
	assert.ErrorIs(t, f.AddBelief("A", nil), ErrDuplicateBelief)
}

func TestBelief_Marker(t *testing.T) {
	t.Parallel()

	assert.True(t, NewBelief("Nothing", nil).Marker())
	assert.False(t, NewBelief("Never", func() bool { return false }).Marker())
}
