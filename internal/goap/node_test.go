package goap

import (
	"testing"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentNode_Statuses(t *testing.T) {
	t.Parallel()

	w := facts{}
	catch := &stubStrategy{steps: 2, effect: func() { w["HasPrey"] = true }}
	eat := &stubStrategy{steps: 1, effect: func() { w["HasFood"] = true }}
	a, _ := feedingAgent(t, w, catch, eat)

	node := a.Node(func() time.Duration { return frame })

	status, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Running, status)

	status, _ = node.Tick()
	assert.Equal(t, bt.Failure, status, "between actions with nothing running")

	status, _ = node.Tick()
	assert.Equal(t, bt.Success, status, "plan completed this frame")

	status, _ = node.Tick()
	assert.Equal(t, bt.Failure, status, "nothing left to do")
}

func TestAgentNode_GuardedBySelector(t *testing.T) {
	t.Parallel()

	w := facts{"HasPrey": true}
	eat := &stubStrategy{steps: 1}
	a, _ := feedingAgent(t, w, &stubStrategy{steps: 1}, eat)

	asleep := true
	guard := bt.New(func([]bt.Node) (bt.Status, error) {
		if asleep {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
	root := bt.New(bt.Selector, guard, a.Node(func() time.Duration { return frame }))

	_, err := root.Tick()
	require.NoError(t, err)
	assert.Zero(t, eat.started, "guard short-circuits the planner")

	asleep = false
	_, err = root.Tick()
	require.NoError(t, err)
	assert.Equal(t, 1, eat.started)
}
