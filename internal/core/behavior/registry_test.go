package behavior

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	t.Run("Registry: create, get, remove", func(t *testing.T) {
		reg := NewRegistry(nil)

		tr, err := reg.Create("batter-1", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)
		require.Equal(t, "batter-1", tr.ID())
		require.Equal(t, 1, reg.Count())

		got, ok := reg.Get("batter-1")
		require.True(t, ok)
		require.Same(t, tr, got)

		require.NoError(t, reg.Remove("batter-1"))
		require.Equal(t, 0, reg.Count())
		_, ok = reg.Get("batter-1")
		require.False(t, ok)
	})

	t.Run("Registry: empty agent id gets a generated one", func(t *testing.T) {
		reg := NewRegistry(nil)
		tr, err := reg.Create("", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)
		require.NotEmpty(t, tr.ID())
	})

	t.Run("Registry: duplicate agent id is rejected", func(t *testing.T) {
		reg := NewRegistry(nil)
		_, err := reg.Create("pitcher-1", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)

		_, err = reg.Create("pitcher-1", nil, newScripted("other", StatusSuccess))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrAgentExists))
		require.Equal(t, 1, reg.Count())
	})

	t.Run("Registry: removing an unknown agent errors", func(t *testing.T) {
		reg := NewRegistry(nil)
		err := reg.Remove("nobody")
		require.True(t, errors.Is(err, ErrAgentNotFound))
	})

	t.Run("Registry: clear drops everything", func(t *testing.T) {
		reg := NewRegistry(nil)
		_, err := reg.Create("a", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)
		_, err = reg.Create("b", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)

		reg.Clear()
		require.Equal(t, 0, reg.Count())
		require.Empty(t, reg.IDs())
	})
}

func TestRegistryUpdate(t *testing.T) {
	t.Run("Registry: updates run in registration order", func(t *testing.T) {
		reg := NewRegistry(nil)
		var order []string
		var mu sync.Mutex
		visit := func(id string) Node {
			return NewAction("visit", func(*ExecutionContext) Status {
				mu.Lock()
				order = append(order, id)
				mu.Unlock()
				return StatusSuccess
			})
		}

		for _, id := range []string{"a", "b", "c"} {
			_, err := reg.Create(id, nil, visit(id))
			require.NoError(t, err)
		}
		reg.Update(context.Background(), dt)
		require.Equal(t, []string{"a", "b", "c"}, order)

		require.NoError(t, reg.Remove("b"))
		_, err := reg.Create("d", nil, visit("d"))
		require.NoError(t, err)

		order = nil
		reg.Update(context.Background(), dt)
		require.Equal(t, []string{"a", "c", "d"}, order)
	})

	t.Run("Registry: disabled preserves running state exactly", func(t *testing.T) {
		reg := NewRegistry(nil)
		tr, err := reg.Create("runner-1", nil, NewWait("lead_off", 48*time.Millisecond))
		require.NoError(t, err)

		var last Status
		tr.SetObserver(func(_ Node, st Status) { last = st })

		reg.Update(context.Background(), 16*time.Millisecond)
		require.Equal(t, StatusRunning, last)
		require.Equal(t, 16*time.Millisecond, tr.Elapsed())

		reg.SetEnabled(false)
		require.False(t, reg.Enabled())
		for i := 0; i < 5; i++ {
			reg.Update(context.Background(), 16*time.Millisecond)
		}
		require.Equal(t, 16*time.Millisecond, tr.Elapsed(), "disabled updates must not advance any tree")

		reg.SetEnabled(true)
		reg.Update(context.Background(), 16*time.Millisecond)
		require.Equal(t, StatusRunning, last)
		reg.Update(context.Background(), 16*time.Millisecond)
		require.Equal(t, StatusSuccess, last, "the wait resumes exactly where it paused")
	})

	t.Run("Registry: a panicking tree cannot take down the batch", func(t *testing.T) {
		reg := NewRegistry(nil)

		first := newScripted("first", StatusSuccess)
		tripped := false
		boom := NewAction("boom", func(*ExecutionContext) Status {
			if !tripped {
				tripped = true
				panic("bad decision")
			}
			return StatusSuccess
		})
		tail := newScripted("tail", StatusSuccess)
		_, err := reg.Create("faulty", nil, NewSequence("root", first, boom, tail))
		require.NoError(t, err)

		healthy := newScripted("ok", StatusSuccess)
		_, err = reg.Create("healthy", nil, healthy)
		require.NoError(t, err)

		reg.Update(context.Background(), dt)
		require.Equal(t, 1, healthy.calls, "the healthy tree still ticks")
		require.Equal(t, uint64(1), reg.Stats().Panics)
		require.Equal(t, 0, tail.calls)

		// the faulty tree was reset, so it restarts from its first child
		reg.Update(context.Background(), dt)
		require.Equal(t, 2, first.calls)
		require.Equal(t, 1, tail.calls)
		require.Equal(t, uint64(1), reg.Stats().Panics)
	})

	t.Run("Registry: concurrent updates tick every tree once", func(t *testing.T) {
		reg := NewRegistry(nil)
		reg.SetParallelism(8)

		var total atomic.Int64
		const agents = 50
		for i := 0; i < agents; i++ {
			_, err := reg.Create("", nil, NewAction("count", func(ec *ExecutionContext) Status {
				total.Add(1)
				ec.Blackboard.Set("ticked", true)
				return StatusSuccess
			}))
			require.NoError(t, err)
		}

		reg.Update(context.Background(), dt)
		require.Equal(t, int64(agents), total.Load())
		for _, id := range reg.IDs() {
			tr, ok := reg.Get(id)
			require.True(t, ok)
			v, _ := tr.Blackboard().GetBool("ticked")
			require.True(t, v)
		}
	})

	t.Run("Registry: stats reflect activity", func(t *testing.T) {
		reg := NewRegistry(nil)
		_, err := reg.Create("a", nil, newScripted("root", StatusSuccess))
		require.NoError(t, err)

		reg.Update(context.Background(), dt)
		reg.Update(context.Background(), dt)

		stats := reg.Stats()
		require.Equal(t, 1, stats.Agents)
		require.True(t, stats.Enabled)
		require.Equal(t, uint64(2), stats.Ticks)
		require.Equal(t, uint64(2), stats.Updates)
		require.Equal(t, uint64(0), stats.Panics)
	})
}

func Benchmark_RegistryUpdate(b *testing.B) {
	reg := NewRegistry(nil)
	for i := 0; i < 100; i++ {
		root := NewSelector("root",
			NewSequence("act",
				NewCondition("ready", func(ec *ExecutionContext) bool {
					v, _ := ec.Blackboard.GetBool("ready")
					return v
				}),
				NewAction("go", func(ec *ExecutionContext) Status {
					ec.Blackboard.SetCurrentAction("go")
					return StatusSuccess
				}),
			),
			NewAction("idle", func(*ExecutionContext) Status { return StatusSuccess }),
		)
		tr, err := reg.Create("", nil, root)
		if err != nil {
			b.Fatal(err)
		}
		tr.Blackboard().Set("ready", i%2 == 0)
	}

	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Update(ctx, dt)
	}
}
