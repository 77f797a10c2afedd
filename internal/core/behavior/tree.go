package behavior

import (
	"context"
	"time"
)

// Tree binds one root node to one blackboard, 1:1 with an agent. It owns a
// virtual clock (the sum of all ticked DeltaTime) that Cooldown stamps are
// measured on; the clock is monotonic for the tree's lifetime and is not
// rewound by Reset, since the stamps it anchors deliberately survive.
type Tree struct {
	id   string
	root Node
	bb   *Blackboard

	elapsed  time.Duration
	observer Observer

	// ec is reused across ticks to keep the hot path allocation-free.
	ec ExecutionContext
}

// NewTree creates a tree for the given agent id. A nil blackboard is
// replaced with a fresh one owned by the tree.
func NewTree(id string, bb *Blackboard, root Node) *Tree {
	if bb == nil {
		bb = NewBlackboard(id)
	}
	return &Tree{id: id, root: root, bb: bb}
}

// ID returns the agent id this tree decides for.
func (t *Tree) ID() string { return t.id }

// Root returns the root node, or nil for an unconfigured tree.
func (t *Tree) Root() Node { return t.root }

// SetRoot replaces the root node. The virtual clock keeps running.
func (t *Tree) SetRoot(root Node) { t.root = root }

// Blackboard returns the tree's exclusively-owned blackboard.
func (t *Tree) Blackboard() *Blackboard { return t.bb }

// SetObserver installs a callback receiving every executed node's status
// each tick, for debugging and tooling. Pass nil to remove it.
func (t *Tree) SetObserver(fn Observer) { t.observer = fn }

// Elapsed returns the tree's virtual clock.
func (t *Tree) Elapsed() time.Duration { return t.elapsed }

// Tick advances the tree by dt and executes the root. A missing root
// returns StatusInvalid with no side effects: the clock does not advance
// and no node or blackboard state is touched. Invalid is distinct from
// Failure; it signals mis-configuration, not a failed decision.
func (t *Tree) Tick(ctx context.Context, dt time.Duration) Status {
	if t.root == nil {
		return StatusInvalid
	}
	t.elapsed += dt
	t.ec = ExecutionContext{
		Context:    ctx,
		Blackboard: t.bb,
		DeltaTime:  dt,
		Now:        t.elapsed,
		observer:   t.observer,
	}
	return t.root.Execute(&t.ec)
}

// Reset recursively rewinds every node's ephemeral run-state so the next
// tick starts a fresh activation. Cooldown stamps and the virtual clock
// survive.
func (t *Tree) Reset() {
	if t.root != nil {
		t.root.Reset()
	}
}

// Value reads a named blackboard value.
func (t *Tree) Value(key string) (any, bool) {
	return t.bb.Get(key)
}

// SetValue writes a named blackboard value.
func (t *Tree) SetValue(key string, value any) {
	t.bb.Set(key, value)
}
