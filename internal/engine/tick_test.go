package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AdvanceFiresSchedule(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.DaySeconds = 2

	var ticks, days []uint64
	var seconds []uint64
	e.OnTick = func(f uint64) { ticks = append(ticks, f) }
	e.OnSecond = func(s uint64) { seconds = append(seconds, s) }
	e.OnDay = func(d uint64) { days = append(days, d) }

	e.Advance(50)

	assert.Len(t, ticks, 50)
	assert.Equal(t, uint64(1), ticks[0])
	assert.Equal(t, uint64(50), ticks[49])
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seconds)
	assert.Equal(t, []uint64{1, 2}, days)
	assert.Equal(t, 5*time.Second, e.Now())
	assert.Equal(t, DefaultStep, e.Delta())
}

func TestEngine_LongStepCatchesUpSeconds(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.Step = 1500 * time.Millisecond

	var seconds []uint64
	e.OnSecond = func(s uint64) { seconds = append(seconds, s) }

	e.Advance(2)
	assert.Equal(t, []uint64{1, 2, 3}, seconds)
	assert.Equal(t, 3*time.Second, e.Now())
}

func TestEngine_NilCallbacks(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	assert.NotPanics(t, func() { e.Advance(3000) })
	assert.Equal(t, uint64(3000), e.Frame())
}

func TestEngine_SpeedAndSimTime(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	assert.Equal(t, 1.0, e.Speed())
	e.SetSpeed(2.5)
	assert.Equal(t, 2.5, e.Speed())

	e.Step = time.Second
	e.SetFrame(241)
	assert.Equal(t, "Day 2, 1s", e.SimTime())

	e.DaySeconds = 0
	assert.Equal(t, "241s", e.SimTime())
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.OnTick = func(f uint64) {
		if f == 3 {
			cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	require.False(t, e.Running())
	assert.Equal(t, uint64(3), e.Frame())
}
