package goap

import "errors"

// Setup-time errors. Any of these means the agent's catalog is corrupt and
// the agent must not run.
var (
	ErrDuplicateBelief  = errors.New("duplicate belief")
	ErrMissingBelief    = errors.New("missing belief")
	ErrDuplicateAction  = errors.New("duplicate action")
	ErrDuplicateGoal    = errors.New("duplicate goal")
	ErrMissingStrategy  = errors.New("action has no strategy")
	ErrNoEffects        = errors.New("action has no effects")
	ErrNegativeCost     = errors.New("action cost is negative")
	ErrNoDesiredEffects = errors.New("goal has no desired effects")
)
