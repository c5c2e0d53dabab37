package world

import "time"

// DefaultArriveRadius is how close a body must get to its destination to
// count as arrived.
const DefaultArriveRadius = 0.5

// Body is the locomotion collaborator: a point mass that walks toward a
// destination at a fixed speed. Strategies set destinations; the simulation
// steps bodies once per frame.
type Body struct {
	Position     Vec3
	Speed        float64 // units per second
	ArriveRadius float64

	destination *Vec3
	reached     bool
}

// NewBody creates a body at pos moving at speed.
func NewBody(pos Vec3, speed float64) *Body {
	return &Body{Position: pos, Speed: speed, ArriveRadius: DefaultArriveRadius}
}

// SetDestination points the body at dest and clears the reached flag.
func (b *Body) SetDestination(dest Vec3) {
	d := dest
	b.destination = &d
	b.reached = false
}

// ClearDestination stops the body and forgets any destination.
func (b *Body) ClearDestination() {
	b.destination = nil
	b.reached = false
}

// Destination returns the current destination, if any.
func (b *Body) Destination() (Vec3, bool) {
	if b.destination == nil {
		return Zero, false
	}
	return *b.destination, true
}

// Reached reports whether the body has arrived at its current destination.
func (b *Body) Reached() bool {
	return b.reached
}

// Idle reports whether the body has nowhere to go.
func (b *Body) Idle() bool {
	return b.destination == nil || b.reached
}

// Step advances the body toward its destination by dt worth of travel.
func (b *Body) Step(dt time.Duration) {
	if b.destination == nil || b.reached {
		return
	}
	radius := b.ArriveRadius
	if radius <= 0 {
		radius = DefaultArriveRadius
	}
	b.Position = b.Position.MoveTowards(*b.destination, b.Speed*dt.Seconds())
	if b.Position.Distance(*b.destination) <= radius {
		b.reached = true
	}
}
