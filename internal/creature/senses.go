package creature

import (
	"github.com/google/uuid"

	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// Landmark is a fixed, observable feature of the world such as a shelter.
type Landmark struct {
	ID       uuid.UUID   `json:"id"`
	Kind     memory.Kind `json:"kind"`
	Position world.Vec3  `json:"position"`
}

// Sense records every creature and landmark within sight range into memory.
// Dead creatures are still seen; sleeping creatures see nothing. Returns the
// number of sightings.
func (c *Creature) Sense(others []*Creature, landmarks []Landmark) int {
	if !c.Alive || c.Sleeping {
		return 0
	}
	now := c.clock.Now()
	pos := c.Position()
	seen := 0
	for _, o := range others {
		if o == c || o.ID == c.ID {
			continue
		}
		if pos.Distance(o.Position()) <= c.SightRange {
			c.Memory.Observe(o.ID, o.Kind, o.Position(), now)
			seen++
		}
	}
	for _, l := range landmarks {
		if pos.Distance(l.Position) <= c.SightRange {
			c.Memory.Observe(l.ID, l.Kind, l.Position, now)
			seen++
		}
	}
	return seen
}
