package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInverter(t *testing.T) {
	t.Run("Inverter: swaps terminal statuses", func(t *testing.T) {
		tr := NewTree("inv", nil, NewInverter("root", newScripted("ok", StatusSuccess)))
		require.Equal(t, StatusFailure, tick(tr, dt))

		tr = NewTree("inv", nil, NewInverter("root", newScripted("bad", StatusFailure)))
		require.Equal(t, StatusSuccess, tick(tr, dt))
	})

	t.Run("Inverter: running passes through unchanged", func(t *testing.T) {
		tr := NewTree("inv", nil, NewInverter("root", newScripted("slow", StatusRunning, StatusSuccess)))
		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})

	t.Run("Inverter: childless fails", func(t *testing.T) {
		tr := NewTree("inv", nil, NewInverter("root", nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}

func TestRepeater(t *testing.T) {
	t.Run("Repeater: runs the child exactly count times with resets between", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("rep", nil, NewRepeater("root", 3, child))

		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, 3, child.calls)
		require.Equal(t, 3, child.resets)
	})

	t.Run("Repeater: running child stretches an iteration over ticks", func(t *testing.T) {
		child := newScripted("child", StatusRunning, StatusSuccess)
		tr := NewTree("rep", nil, NewRepeater("root", 2, child))

		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, 4, child.calls)
	})

	t.Run("Repeater: child failures count as completed iterations", func(t *testing.T) {
		child := newScripted("child", StatusFailure)
		tr := NewTree("rep", nil, NewRepeater("root", 2, child))

		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, 2, child.calls)
	})

	t.Run("Repeater: unbounded never spins a tick", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("rep", nil, NewRepeater("root", -1, child))

		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, repeaterTickBudget, child.calls)
		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, 2*repeaterTickBudget, child.calls)
	})

	t.Run("Repeater: zero count succeeds without invoking the child", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("rep", nil, NewRepeater("root", 0, child))

		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, 0, child.calls)
	})

	t.Run("Repeater: childless succeeds", func(t *testing.T) {
		tr := NewTree("rep", nil, NewRepeater("root", 3, nil))
		require.Equal(t, StatusSuccess, tick(tr, dt))
	})
}

func TestTimeLimit(t *testing.T) {
	t.Run("TimeLimit: forces exactly one failure when the budget runs out", func(t *testing.T) {
		child := newScripted("child", StatusRunning)
		tr := NewTree("tl", nil, NewTimeLimit("root", 100*time.Millisecond, child))

		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, StatusFailure, tick(tr, 40*time.Millisecond))

		// next activation starts with a rewound child and a fresh budget
		require.Equal(t, 0, child.resets)
		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, 1, child.resets)
		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, StatusFailure, tick(tr, 40*time.Millisecond))
	})

	t.Run("TimeLimit: child finishing in time passes through", func(t *testing.T) {
		child := newScripted("child", StatusRunning, StatusSuccess)
		tr := NewTree("tl", nil, NewTimeLimit("root", 100*time.Millisecond, child))

		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, StatusSuccess, tick(tr, 40*time.Millisecond))
	})

	t.Run("TimeLimit: child failure passes through", func(t *testing.T) {
		child := newScripted("child", StatusFailure)
		tr := NewTree("tl", nil, NewTimeLimit("root", 100*time.Millisecond, child))
		require.Equal(t, StatusFailure, tick(tr, 40*time.Millisecond))
	})

	t.Run("TimeLimit: childless fails", func(t *testing.T) {
		tr := NewTree("tl", nil, NewTimeLimit("root", 100*time.Millisecond, nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}

func TestCooldown(t *testing.T) {
	t.Run("Cooldown: gates after success without invoking the child", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("cd", nil, NewCooldown("root", 200*time.Millisecond, child))

		require.Equal(t, StatusSuccess, tick(tr, 50*time.Millisecond))
		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond))
		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond))
		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond))
		require.Equal(t, 1, child.calls, "gated ticks must not reach the child")

		// 200ms since the stamp: the gate opens again
		require.Equal(t, StatusSuccess, tick(tr, 50*time.Millisecond))
		require.Equal(t, 2, child.calls)
	})

	t.Run("Cooldown: failure does not consume the cooldown", func(t *testing.T) {
		child := newScripted("child", StatusFailure, StatusSuccess)
		tr := NewTree("cd", nil, NewCooldown("root", 200*time.Millisecond, child))

		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond))
		require.Equal(t, StatusSuccess, tick(tr, 50*time.Millisecond), "child must run again right after a failure")
		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond), "gate closes after the success")
	})

	t.Run("Cooldown: stamp survives tree reset", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("cd", nil, NewCooldown("root", 200*time.Millisecond, child))

		require.Equal(t, StatusSuccess, tick(tr, 50*time.Millisecond))
		tr.Reset()
		require.Equal(t, StatusFailure, tick(tr, 50*time.Millisecond))
		require.Equal(t, 1, child.calls)
	})

	t.Run("Cooldown: childless fails", func(t *testing.T) {
		tr := NewTree("cd", nil, NewCooldown("root", 200*time.Millisecond, nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}

func TestProbability(t *testing.T) {
	t.Run("Probability: zero never delegates, one always does", func(t *testing.T) {
		never := newScripted("never", StatusSuccess)
		trNever := NewTree("p0", nil, NewProbability("root", 0, NewRand(42), never))

		always := newScripted("always", StatusSuccess)
		trAlways := NewTree("p1", nil, NewProbability("root", 1, NewRand(42), always))

		for i := 0; i < 1000; i++ {
			require.Equal(t, StatusFailure, tick(trNever, dt))
			require.Equal(t, StatusSuccess, tick(trAlways, dt))
		}
		require.Equal(t, 0, never.calls)
		require.Equal(t, 1000, always.calls)
	})

	t.Run("Probability: out-of-range p clamps", func(t *testing.T) {
		child := newScripted("child", StatusSuccess)
		tr := NewTree("p", nil, NewProbability("root", 1.5, NewRand(1), child))
		require.Equal(t, StatusSuccess, tick(tr, dt))

		tr = NewTree("p", nil, NewProbability("root", -0.5, NewRand(1), child))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})

	t.Run("Probability: rolls once per activation, not per tick", func(t *testing.T) {
		rng := &scriptedRand{floats: []float64{0.4, 0.9}}
		child := newScripted("child", StatusRunning, StatusRunning, StatusSuccess)
		tr := NewTree("p", nil, NewProbability("root", 0.5, rng, child))

		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, StatusRunning, tick(tr, dt))
		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, 1, rng.floatCalls, "a running delegation must not re-roll")

		// fresh activation draws again and this one misses
		require.Equal(t, StatusFailure, tick(tr, dt))
		require.Equal(t, 2, rng.floatCalls)
		require.Equal(t, 3, child.calls)
	})

	t.Run("Probability: childless fails", func(t *testing.T) {
		tr := NewTree("p", nil, NewProbability("root", 1, NewRand(1), nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}
