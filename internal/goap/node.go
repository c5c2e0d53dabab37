package goap

import (
	"time"

	bt "github.com/joeycumines/go-behaviortree"
)

// Node wraps the agent as a behavior tree leaf. Each tick runs Tick with the
// frame delta from dt. The node reports Running while an action executes,
// Success on the frame a plan completes and Failure when the agent has
// nothing to do.
func (a *Agent) Node(dt func() time.Duration) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		before := a.completions
		a.Tick(dt())
		switch {
		case a.currentAction != nil:
			return bt.Running, nil
		case a.completions != before:
			return bt.Success, nil
		default:
			return bt.Failure, nil
		}
	})
}
