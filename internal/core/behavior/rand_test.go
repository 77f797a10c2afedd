package behavior

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandSeeding(t *testing.T) {
	t.Run("Rand: same seed replays the same stream", func(t *testing.T) {
		a := NewRand(7)
		b := NewRand(7)
		for i := 0; i < 10; i++ {
			require.Equal(t, a.Float64(), b.Float64())
		}
		require.Equal(t, a.Perm(9), b.Perm(9))
	})

	t.Run("Rand: different seeds diverge", func(t *testing.T) {
		a := NewRand(7)
		b := NewRand(8)
		same := true
		for i := 0; i < 10; i++ {
			if a.Float64() != b.Float64() {
				same = false
			}
		}
		require.False(t, same)
	})
}

func TestAgentSeed(t *testing.T) {
	t.Run("AgentSeed: deterministic per agent", func(t *testing.T) {
		require.Equal(t, AgentSeed(99, "batter-1"), AgentSeed(99, "batter-1"))
	})

	t.Run("AgentSeed: distinct agents get distinct streams", func(t *testing.T) {
		require.NotEqual(t, AgentSeed(99, "batter-1"), AgentSeed(99, "batter-2"))
		require.NotEqual(t, AgentSeed(99, "batter-1"), AgentSeed(100, "batter-1"))
	})
}
