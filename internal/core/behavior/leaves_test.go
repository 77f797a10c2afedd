package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCondition(t *testing.T) {
	t.Run("Condition: reflects the predicate against the blackboard", func(t *testing.T) {
		bb := NewBlackboard("agent")
		cond := NewCondition("two_strikes", func(ec *ExecutionContext) bool {
			strikes, _ := ec.Blackboard.GetInt("strikes")
			return strikes >= 2
		})
		tr := NewTree("agent", bb, cond)

		require.Equal(t, StatusFailure, tick(tr, dt))
		bb.Set("strikes", 2)
		require.Equal(t, StatusSuccess, tick(tr, dt))
	})

	t.Run("Condition: nil predicate fails", func(t *testing.T) {
		tr := NewTree("agent", nil, NewCondition("empty", nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}

func TestAction(t *testing.T) {
	t.Run("Action: returns the function's status and mutates the blackboard", func(t *testing.T) {
		bb := NewBlackboard("agent")
		act := NewAction("swing", func(ec *ExecutionContext) Status {
			ec.Blackboard.SetCurrentAction("power_swing")
			return StatusSuccess
		})
		tr := NewTree("agent", bb, act)

		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, "power_swing", bb.CurrentAction())
	})

	t.Run("Action: nil function fails", func(t *testing.T) {
		tr := NewTree("agent", nil, NewAction("empty", nil))
		require.Equal(t, StatusFailure, tick(tr, dt))
	})
}

func TestWait(t *testing.T) {
	t.Run("Wait: accumulates delta time until the duration elapses", func(t *testing.T) {
		tr := NewTree("agent", nil, NewWait("windup", 100*time.Millisecond))

		require.Equal(t, StatusRunning, tick(tr, 30*time.Millisecond))
		require.Equal(t, StatusRunning, tick(tr, 30*time.Millisecond))
		require.Equal(t, StatusRunning, tick(tr, 30*time.Millisecond))
		require.Equal(t, StatusSuccess, tick(tr, 30*time.Millisecond))

		// rewound: the next activation waits the full duration again
		require.Equal(t, StatusRunning, tick(tr, 30*time.Millisecond))
	})

	t.Run("Wait: respects scaled time", func(t *testing.T) {
		tr := NewTree("agent", nil, NewWait("windup", 100*time.Millisecond))
		// one slow-motion-compensated tick covers the whole duration
		require.Equal(t, StatusSuccess, tick(tr, 200*time.Millisecond))
	})

	t.Run("Wait: zero duration succeeds immediately", func(t *testing.T) {
		tr := NewTree("agent", nil, NewWait("none", 0))
		require.Equal(t, StatusSuccess, tick(tr, dt))
		require.Equal(t, StatusSuccess, tick(tr, dt))
	})

	t.Run("Wait: reset rewinds accumulated time", func(t *testing.T) {
		tr := NewTree("agent", nil, NewWait("windup", 60*time.Millisecond))
		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		tr.Reset()
		require.Equal(t, StatusRunning, tick(tr, 40*time.Millisecond))
		require.Equal(t, StatusSuccess, tick(tr, 40*time.Millisecond))
	})
}
