package behavior

import (
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Rand is the injectable randomness source used by RandomSequence shuffling
// and Probability sampling. Supplying a seeded source at construction makes
// tree decisions reproducible for tests and deterministic replay.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Perm(n int) []int
}

// NewRand returns a seeded generator. Not safe for concurrent use: give each
// tree its own instance.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// AgentSeed derives a stable per-agent seed by hashing the agent id against
// a base seed, so a roster of agents gets independent but replayable
// decision streams from a single configured seed.
func AgentSeed(base int64, agentID string) int64 {
	return base ^ int64(xxhash.Sum64String(agentID))
}

func defaultRand() *rand.Rand {
	return NewRand(time.Now().UnixNano())
}
