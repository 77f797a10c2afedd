// Package behavior implements the tick-driven behavior-tree engine that
// drives every AI-controlled agent in the simulation: pitchers, batters,
// fielders and base runners. Trees are composed from leaves (Condition,
// Action, Wait), decorators (Inverter, Repeater, TimeLimit, Cooldown,
// Probability) and composites (Sequence, Selector, RandomSequence,
// Parallel), executed once per frame, and communicate with the rest of the
// game exclusively through a per-agent Blackboard.
package behavior

import (
	"context"
	"time"
)

// ExecutionContext carries the per-tick inputs every node sees. One instance
// is reused by its Tree across ticks; nodes must not retain it.
type ExecutionContext struct {
	// Context is the caller's context, passed through to leaf callbacks.
	Context context.Context
	// Blackboard is the ticking tree's exclusively-owned state record.
	Blackboard *Blackboard
	// DeltaTime is the simulation time advanced by this tick. Time-based
	// nodes accumulate it instead of reading the wall clock so external
	// time-scaling is respected.
	DeltaTime time.Duration
	// Now is the tree's virtual clock: total simulation time ticked into the
	// tree over its lifetime. Cooldown stamps are taken against it.
	Now time.Duration

	observer Observer
}

// report notifies the tree's observer of a node outcome and returns the
// status unchanged. Every Execute implementation routes its returns through
// it so tracing sees exactly the nodes that ran this tick.
func (ec *ExecutionContext) report(n Node, st Status) Status {
	if ec.observer != nil {
		ec.observer(n, st)
	}
	return st
}

// Observer receives one callback per executed node per tick.
type Observer func(node Node, status Status)

// Node is a single evaluable unit of behavior-tree logic.
type Node interface {
	// Execute runs the node for one tick. It is invoked only while the node
	// is the currently-active node of its parent and must return
	// synchronously; suspension is expressed by returning StatusRunning.
	Execute(ec *ExecutionContext) Status
	// Name is the authoring label, used for traces and diagnostics.
	Name() string
	// Type is the node kind tag ("sequence", "cooldown", ...).
	Type() string
	// Parent is the non-owning back-reference set when the node is attached;
	// ownership always flows root to children.
	Parent() Node
	// SetParent attaches the back-reference. Called by composites and
	// decorators when adopting children.
	SetParent(parent Node)
	// Reset clears ephemeral run-state (cursors, timers, iteration counts)
	// recursively without destroying structure. Cross-activation state with
	// explicit persistence semantics (the Cooldown stamp) survives.
	Reset()
}

// Composite is a node aggregating an ordered list of children. Order is
// significant and preserved for deterministic tie-breaks.
type Composite interface {
	Node
	Children() []Node
	Add(children ...Node)
}

// Decorator is a node wrapping at most one child.
type Decorator interface {
	Node
	Child() Node
	SetChild(child Node)
}

// Node type tags.
const (
	TypeCondition      = "condition"
	TypeAction         = "action"
	TypeWait           = "wait"
	TypeSequence       = "sequence"
	TypeSelector       = "selector"
	TypeRandomSequence = "random_sequence"
	TypeParallel       = "parallel"
	TypeInverter       = "inverter"
	TypeRepeater       = "repeater"
	TypeTimeLimit      = "time_limit"
	TypeCooldown       = "cooldown"
	TypeProbability    = "probability"
)
