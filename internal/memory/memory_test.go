package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/goap-creatures/internal/world"
)

func TestMemory_ClassifyByObserver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		observer Kind
		observed Kind
		want     Category
	}{
		{"predator sees prey as food", KindPredator, KindPrey, CategoryFood},
		{"predator sees predator as creature", KindPredator, KindPredator, CategoryDynamicCreature},
		{"prey sees predator as predator", KindPrey, KindPredator, CategoryPredator},
		{"everyone sees shelters", KindPrey, KindShelter, CategoryShelter},
		{"unknown kind", KindPredator, KindNone, CategoryNothing},
		{"observer without template", KindApple, KindPrey, CategoryNothing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.observer).Classify(tt.observed))
		})
	}
}

func TestMemory_ObserveAndLatest(t *testing.T) {
	t.Parallel()

	m := New(KindPredator)
	_, ok := m.LatestTimestamp(CategoryFood)
	assert.False(t, ok)

	a, b := uuid.New(), uuid.New()
	m.Observe(a, KindPrey, world.V(1, 0, 0), 1*time.Second)
	m.Observe(b, KindPrey, world.V(2, 0, 0), 2*time.Second)

	latest := m.Latest(CategoryFood)
	require.NotNil(t, latest)
	assert.Equal(t, b, latest.ID)

	// Refreshing a updates in place and makes it the latest.
	m.Observe(a, KindPrey, world.V(5, 0, 0), 3*time.Second)
	latest = m.Latest(CategoryFood)
	require.NotNil(t, latest)
	assert.Equal(t, a, latest.ID)
	assert.Equal(t, world.V(5, 0, 0), latest.Position)

	seen, ok := m.LatestTimestamp(CategoryFood)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, seen)
	assert.Len(t, m.All(CategoryFood), 2)
	assert.Equal(t, 2, m.Count())
}

func TestMemory_SearchAdoptsTarget(t *testing.T) {
	t.Parallel()

	m := New(KindPredator)
	shelter, prey := uuid.New(), uuid.New()

	m.Observe(prey, KindPrey, world.Zero, 0)
	assert.False(t, m.TargetValid(), "no search active yet")

	m.SetSearch(CategoryFood)
	cat, searching := m.Searching()
	assert.True(t, searching)
	assert.Equal(t, CategoryFood, cat)

	m.Observe(shelter, KindShelter, world.Zero, time.Second)
	assert.False(t, m.TargetValid(), "shelter does not satisfy a food search")

	m.Observe(prey, KindPrey, world.V(3, 3, 0), 2*time.Second)
	require.True(t, m.TargetValid())
	assert.Equal(t, prey, m.Target.ID)
	_, searching = m.Searching()
	assert.False(t, searching)

	m.ClearTarget()
	assert.False(t, m.TargetValid())
}

func TestMemory_FlushAndForget(t *testing.T) {
	t.Parallel()

	m := New(KindPredator)
	m.Retention = 10 * time.Second

	old, fresh, shelter := uuid.New(), uuid.New(), uuid.New()
	m.Observe(old, KindPrey, world.Zero, 0)
	m.Observe(fresh, KindPrey, world.Zero, 8*time.Second)
	m.Observe(shelter, KindShelter, world.Zero, 8*time.Second)
	require.True(t, m.ShelterValid(), "first shelter sighting is saved")

	assert.Equal(t, 1, m.Flush(12*time.Second))
	assert.Len(t, m.All(CategoryFood), 1)
	assert.True(t, m.ShelterValid())

	m.SetSearch(CategoryFood)
	m.Observe(fresh, KindPrey, world.Zero, 9*time.Second)
	require.True(t, m.TargetValid())

	m.Forget(fresh)
	assert.False(t, m.TargetValid())
	assert.Empty(t, m.All(CategoryFood))

	m.Forget(shelter)
	assert.False(t, m.ShelterValid())
}

func TestMemory_SavedShelterSticks(t *testing.T) {
	t.Parallel()

	m := New(KindPredator)
	first, second := uuid.New(), uuid.New()
	m.Observe(first, KindShelter, world.Zero, 0)
	m.Observe(second, KindShelter, world.V(5, 0, 0), time.Second)

	require.True(t, m.ShelterValid())
	assert.Equal(t, first, m.SavedShelter.ID)
	assert.True(t, m.ShelterValid())
	assert.Equal(t, first, m.SavedShelter.ID, "checking does not change the saved shelter")
}

func TestMemory_FlushClearsTargetAndShelter(t *testing.T) {
	t.Parallel()

	m := New(KindPredator)
	m.Retention = 10 * time.Second

	prey, shelter := uuid.New(), uuid.New()
	m.Observe(shelter, KindShelter, world.Zero, 0)
	m.SetSearch(CategoryFood)
	m.Observe(prey, KindPrey, world.Zero, 0)
	require.True(t, m.TargetValid())
	require.True(t, m.ShelterValid())

	assert.Equal(t, 2, m.Flush(11*time.Second))
	assert.False(t, m.TargetValid())
	assert.Nil(t, m.Target)
	assert.False(t, m.ShelterValid())
	assert.Nil(t, m.SavedShelter)

	next := uuid.New()
	m.Observe(next, KindShelter, world.V(1, 0, 0), 12*time.Second)
	require.True(t, m.ShelterValid())
	assert.Equal(t, next, m.SavedShelter.ID)
}

func TestRecentlySeen(t *testing.T) {
	t.Parallel()

	rec := &Record{Seen: 10 * time.Second}
	assert.True(t, RecentlySeen(rec, 12*time.Second))
	assert.False(t, RecentlySeen(rec, 13*time.Second))
	assert.False(t, RecentlySeen(nil, 0))
}
