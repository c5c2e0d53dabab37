package creature

import (
	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/talgya/goap-creatures/internal/memory"
	"github.com/talgya/goap-creatures/internal/world"
)

// NewPrey creates a prey animal. Prey do not plan: each frame they flee the
// nearest fresh threat or otherwise meander along the terrain's flow field.
func NewPrey(id uuid.UUID, name string, pos world.Vec3, cfg PreyConfig, terrain *world.Terrain, clock Clock) *Creature {
	c := newCreature(id, name, memory.KindPrey, pos, cfg.Speed, cfg.SightRange, clock)
	c.Memory.Retention = cfg.MemoryRetention

	dead := bt.New(func([]bt.Node) (bt.Status, error) {
		if !c.Alive {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})

	flee := bt.New(func([]bt.Node) (bt.Status, error) {
		threat := c.Memory.Latest(memory.CategoryPredator)
		if !memory.RecentlySeen(threat, clock.Now()) {
			return bt.Failure, nil
		}
		away := c.Position().Sub(threat.Position)
		if away.Len() >= cfg.FleeRange {
			return bt.Failure, nil
		}
		dest := c.Position().Add(away.Normalize().Scale(cfg.FleeRange))
		if terrain != nil {
			dest = terrain.Clamp(dest)
		}
		c.Body.SetDestination(dest)
		return bt.Running, nil
	})

	wander := bt.New(func([]bt.Node) (bt.Status, error) {
		if !c.Body.Idle() {
			return bt.Running, nil
		}
		if terrain == nil {
			return bt.Failure, nil
		}
		dir := terrain.Flow(c.Position(), clock.Now().Seconds())
		c.Body.SetDestination(terrain.Clamp(c.Position().Add(dir.Scale(cfg.WanderStep))))
		return bt.Running, nil
	})

	c.tree = bt.New(bt.Selector, dead, flee, wander)
	return c
}
