package behavior

import "time"

// ConditionFunc is the boolean test a Condition evaluates against the
// blackboard each tick.
type ConditionFunc func(ec *ExecutionContext) bool

// ActionFunc mutates the blackboard and decides its own outcome. A
// long-running action returns StatusRunning until an externally-updated
// sensor flag tells it the world caught up.
type ActionFunc func(ec *ExecutionContext) Status

// Condition is a stateless leaf testing a predicate. It never returns
// Running.
type Condition struct {
	baseNode
	predicate ConditionFunc
}

// NewCondition creates a condition leaf. A nil predicate always fails.
func NewCondition(name string, predicate ConditionFunc) *Condition {
	return &Condition{baseNode: newBaseNode(name, TypeCondition), predicate: predicate}
}

func (cn *Condition) Execute(ec *ExecutionContext) Status {
	if cn.predicate != nil && cn.predicate(ec) {
		return ec.report(cn, StatusSuccess)
	}
	return ec.report(cn, StatusFailure)
}

// Action is a leaf invoking a caller-supplied function that touches the
// blackboard directly.
type Action struct {
	baseNode
	fn ActionFunc
}

// NewAction creates an action leaf. A nil function always fails.
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{baseNode: newBaseNode(name, TypeAction), fn: fn}
}

func (an *Action) Execute(ec *ExecutionContext) Status {
	if an.fn == nil {
		return ec.report(an, StatusFailure)
	}
	return ec.report(an, an.fn(ec))
}

// Wait is a leaf that accumulates tick time until its duration elapses.
// Because it sums DeltaTime rather than reading the wall clock, slow-motion
// or fast-forward scaling applied by the simulation is respected.
type Wait struct {
	baseNode
	duration time.Duration
	elapsed  time.Duration
}

// NewWait creates a wait leaf. Negative durations are clamped to zero.
func NewWait(name string, duration time.Duration) *Wait {
	if duration < 0 {
		duration = 0
	}
	return &Wait{baseNode: newBaseNode(name, TypeWait), duration: duration}
}

func (wn *Wait) Execute(ec *ExecutionContext) Status {
	wn.elapsed += ec.DeltaTime
	if wn.elapsed >= wn.duration {
		wn.elapsed = 0
		return ec.report(wn, StatusSuccess)
	}
	return ec.report(wn, StatusRunning)
}

func (wn *Wait) Reset() {
	wn.elapsed = 0
}
