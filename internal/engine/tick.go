// Package engine provides the fixed-step simulation loop and the Simulation
// it drives.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Schedule defaults.
const (
	DefaultStep       = 100 * time.Millisecond // Sim time per frame
	DefaultDaySeconds = 240                    // Sim seconds per engine day
)

// Engine drives the simulation forward one fixed frame at a time. It is also
// the simulation clock: Now is frame × Step and Delta is Step.
type Engine struct {
	Step       time.Duration // Sim time advanced per frame
	Interval   time.Duration // Wall time per frame at speed 1
	DaySeconds uint64        // Sim seconds per OnDay

	frame   atomic.Uint64
	speed   atomic.Uint64 // math.Float64bits
	running atomic.Bool

	// Callbacks for each schedule layer, populated during setup.
	OnTick   func(frame uint64)  // Every frame
	OnSecond func(second uint64) // Every sim second
	OnDay    func(day uint64)    // Every DaySeconds sim seconds
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	e := &Engine{
		Step:       DefaultStep,
		Interval:   DefaultStep,
		DaySeconds: DefaultDaySeconds,
	}
	e.SetSpeed(1)
	return e
}

// Now returns elapsed simulation time.
func (e *Engine) Now() time.Duration {
	return time.Duration(e.frame.Load()) * e.Step
}

// Delta returns the simulation time covered by one frame.
func (e *Engine) Delta() time.Duration {
	return e.Step
}

// Frame returns the number of frames run so far.
func (e *Engine) Frame() uint64 {
	return e.frame.Load()
}

// SetFrame positions the clock, used when resuming.
func (e *Engine) SetFrame(frame uint64) {
	e.frame.Store(frame)
}

// Speed returns the wall-clock multiplier: 1 is real time, 0 is paused.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the wall-clock multiplier.
func (e *Engine) SetSpeed(speed float64) {
	e.speed.Store(math.Float64bits(speed))
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until Stop is called or ctx ends.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	slog.Info("simulation engine started", "frame", e.Frame(), "speed", e.Speed())

	for e.running.Load() && ctx.Err() == nil {
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Advance(1)

		// Sleep for the remainder of the frame interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.running.Store(false)
	slog.Info("simulation engine stopped", "frame", e.Frame(), "sim_time", e.SimTime())
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Advance runs n frames immediately, firing callbacks as boundaries pass.
func (e *Engine) Advance(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the simulation by one frame.
func (e *Engine) step() {
	before := uint64(e.Now() / time.Second)
	frame := e.frame.Add(1)

	if e.OnTick != nil {
		e.OnTick(frame)
	}

	after := uint64(e.Now() / time.Second)
	for sec := before + 1; sec <= after; sec++ {
		if e.OnSecond != nil {
			e.OnSecond(sec)
		}
		if e.DaySeconds > 0 && sec%e.DaySeconds == 0 && e.OnDay != nil {
			e.OnDay(sec / e.DaySeconds)
		}
	}
}

// SimTime formats the current simulation time as engine day and seconds into it.
func (e *Engine) SimTime() string {
	sec := uint64(e.Now() / time.Second)
	if e.DaySeconds == 0 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("Day %d, %ds", sec/e.DaySeconds+1, sec%e.DaySeconds)
}
