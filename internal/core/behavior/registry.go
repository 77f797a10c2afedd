package behavior

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/pkg/concurrent"
)

// Registry owns the agent-id → Tree mapping and batch-ticks every
// registered tree once per simulation frame. The enable flag is a plain
// instance field: a disabled registry executes nothing but preserves every
// tree's Running state, so execution resumes correctly on re-enable. A
// panicking tree is isolated during the batch so one broken agent cannot
// abort the frame for the rest of the roster.
type Registry struct {
	mu      sync.RWMutex
	trees   map[string]*Tree
	order   []string
	enabled bool

	// parallel > 1 ticks trees concurrently with that many workers. Every
	// tree exclusively owns its nodes and blackboard, so trees never race
	// each other; anything external the blackboards touch must be safe.
	parallel int

	logger log.Log

	ticks   atomic.Uint64
	panics  atomic.Uint64
	updates atomic.Uint64
	lastDur atomic.Int64
}

// RegistryStats is a point-in-time snapshot of registry counters.
type RegistryStats struct {
	Agents     int
	Enabled    bool
	Ticks      uint64
	Panics     uint64
	Updates    uint64
	LastUpdate time.Duration
}

// NewRegistry creates an enabled, serial registry. A nil logger disables
// logging.
func NewRegistry(logger log.Log) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{
		trees:   make(map[string]*Tree),
		enabled: true,
		logger:  logger.With(log.String("component", "behavior_registry")),
	}
}

// SetParallelism sets the worker count for batch updates. Values below two
// keep updates serial.
func (r *Registry) SetParallelism(workers int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parallel = workers
}

// Create builds a tree for the agent and registers it. An empty agent id
// gets a generated one (readable from the returned tree). Registering an id
// twice is an error; callers that want replacement must Remove first so the
// previous tree's teardown is explicit.
func (r *Registry) Create(agentID string, bb *Blackboard, root Node) (*Tree, error) {
	tree := NewTree(agentID, bb, root)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trees[tree.ID()]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentExists, tree.ID())
	}
	r.trees[tree.ID()] = tree
	r.order = append(r.order, tree.ID())
	return tree, nil
}

// Remove drops the agent's tree; its blackboard is discarded with it.
func (r *Registry) Remove(agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trees[agentID]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	delete(r.trees, agentID)
	for i, id := range r.order {
		if id == agentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the agent's tree.
func (r *Registry) Get(agentID string) (*Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tree, ok := r.trees[agentID]
	return tree, ok
}

// Count returns the number of registered trees.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trees)
}

// IDs returns the agent ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// SetEnabled flips the execution gate. Disabling does not reset anything.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Enabled reports the execution gate.
func (r *Registry) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Clear drops every tree.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees = make(map[string]*Tree)
	r.order = nil
}

// Update ticks every registered tree by dt in registration order (or
// concurrently when parallelism is set). Disabled registries return
// immediately without touching any tree.
func (r *Registry) Update(ctx context.Context, dt time.Duration) {
	r.mu.RLock()
	if !r.enabled {
		r.mu.RUnlock()
		return
	}
	trees := make([]*Tree, 0, len(r.order))
	for _, id := range r.order {
		trees = append(trees, r.trees[id])
	}
	workers := r.parallel
	r.mu.RUnlock()

	start := time.Now()
	if workers > 1 {
		_ = concurrent.ForEach(ctx, workers, trees, func(fctx context.Context, t *Tree) error {
			r.tickOne(fctx, t, dt)
			return nil
		})
	} else {
		for _, t := range trees {
			r.tickOne(ctx, t, dt)
		}
	}
	r.updates.Add(1)
	r.lastDur.Store(int64(time.Since(start)))
}

// tickOne runs a single tree with panic isolation. A recovered tree is
// reset so its next activation starts from a clean cursor instead of a
// half-mutated one.
func (r *Registry) tickOne(ctx context.Context, t *Tree, dt time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panics.Add(1)
			r.logger.Error("behavior tree panicked, resetting agent",
				log.String("agent_id", t.ID()),
				log.Any("panic", rec))
			t.Reset()
		}
	}()
	t.Tick(ctx, dt)
	r.ticks.Add(1)
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	agents := len(r.trees)
	enabled := r.enabled
	r.mu.RUnlock()
	return RegistryStats{
		Agents:     agents,
		Enabled:    enabled,
		Ticks:      r.ticks.Load(),
		Panics:     r.panics.Load(),
		Updates:    r.updates.Load(),
		LastUpdate: time.Duration(r.lastDur.Load()),
	}
}
