package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/trace"
)

// captureSink collects trace events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []trace.Event
}

func (c *captureSink) Record(ev trace.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureSink) countGame(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Kind == trace.KindGame && ev.Action == name {
			n++
		}
	}
	return n
}

func (c *captureSink) countKind(kind trace.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func stepN(s *Sim, n int, dt time.Duration) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		s.Step(ctx, dt)
	}
}

func TestNewSim(t *testing.T) {
	s, err := NewSim(Options{Seed: 1})
	require.NoError(t, err)

	t.Run("Sim: fields nine defenders and a batter", func(t *testing.T) {
		require.Equal(t, 10, s.Registry().Count())
		snap := s.TakeSnapshot()
		require.Equal(t, PhaseAtBat, snap.Phase)
		require.Equal(t, 1, snap.Inning)
		require.Len(t, snap.Agents, 10)

		byID := make(map[string]AgentSnapshot)
		for _, a := range snap.Agents {
			byID[a.ID] = a
		}
		require.Equal(t, MoundPosition, byID["pitcher"].Position)
		require.Equal(t, RoleBatter, byID["batter_1"].Role)
		require.Equal(t, DefensiveSpot(RoleCenterFielder), byID["center_fielder"].Position)
	})
}

func TestSimPlaysBaseball(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 7, Sink: sink})
	require.NoError(t, err)

	stepN(s, 2400, stepDt) // two simulated minutes

	t.Run("Sim: pitches get thrown and resolved", func(t *testing.T) {
		pitches := sink.countGame("pitch")
		require.GreaterOrEqual(t, pitches, 5)
		resolved := sink.countGame("strike") + sink.countGame("ball") +
			sink.countGame("foul") + sink.countGame("hit") + sink.countGame("home_run")
		require.GreaterOrEqual(t, resolved, pitches-1)
	})

	t.Run("Sim: the count stays legal between frames", func(t *testing.T) {
		for i := 0; i < 40; i++ {
			stepN(s, 25, stepDt)
			snap := s.TakeSnapshot()
			require.LessOrEqual(t, snap.Count.Balls, 3)
			require.LessOrEqual(t, snap.Count.Strikes, 2)
			require.LessOrEqual(t, snap.Count.Outs, 2)
			require.GreaterOrEqual(t, len(snap.Agents), 10)
		}
	})

	t.Run("Sim: registry ticks every agent without panics", func(t *testing.T) {
		stats := s.Registry().Stats()
		require.Equal(t, uint64(0), stats.Panics)
		require.GreaterOrEqual(t, stats.Updates, uint64(2400))
		require.GreaterOrEqual(t, stats.Ticks, 10*stats.Updates)
	})

	t.Run("Sim: snapshot serializes for the wire", func(t *testing.T) {
		raw, err := s.StateJSON()
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Contains(t, decoded, "agents")
		require.Contains(t, decoded, "ball")
		require.Contains(t, decoded, "phase")
		require.Contains(t, decoded, "count")
	})
}

func TestSimDeterminism(t *testing.T) {
	t.Run("Sim: same seed replays the same game", func(t *testing.T) {
		a, err := NewSim(Options{Seed: 11})
		require.NoError(t, err)
		b, err := NewSim(Options{Seed: 11})
		require.NoError(t, err)

		stepN(a, 600, stepDt)
		stepN(b, 600, stepDt)
		require.Equal(t, a.TakeSnapshot(), b.TakeSnapshot())
	})

	t.Run("Sim: different seeds diverge", func(t *testing.T) {
		a, err := NewSim(Options{Seed: 11})
		require.NoError(t, err)
		b, err := NewSim(Options{Seed: 12})
		require.NoError(t, err)

		stepN(a, 2400, stepDt)
		stepN(b, 2400, stepDt)
		require.NotEqual(t, a.TakeSnapshot(), b.TakeSnapshot())
	})
}

func TestSimWalks(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 3, Sink: sink})
	require.NoError(t, err)

	t.Run("Sim: walks load the bases one forced push at a time", func(t *testing.T) {
		s.walk()
		s.walk()
		s.walk()
		require.Equal(t, 0, s.runs)
		require.Len(t, s.runners(), 3)

		bases := map[Base]bool{}
		for _, r := range s.runners() {
			bases[r.base] = true
		}
		require.True(t, bases[FirstBase])
		require.True(t, bases[SecondBase])
		require.True(t, bases[ThirdBase])
		require.Equal(t, 13, s.Registry().Count())
	})

	t.Run("Sim: a bases-loaded walk forces in a run", func(t *testing.T) {
		s.walk()
		require.Equal(t, 1, s.runs)
		require.Len(t, s.runners(), 3)
		require.Equal(t, 4, sink.countGame("walk"))
		require.Equal(t, 1, sink.countGame("run_scored"))
	})
}

func TestSimStrikeouts(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 3, Sink: sink})
	require.NoError(t, err)

	strikeOut := func() {
		s.addStrike("swinging")
		s.addStrike("swinging")
		s.addStrike("swinging")
	}

	t.Run("Sim: three strikes retire the batter", func(t *testing.T) {
		strikeOut()
		require.Equal(t, 1, s.count.Outs)
		require.Equal(t, 0, s.count.Strikes)
		require.NotNil(t, s.batter())
		require.Equal(t, "batter_2", s.batter().ID)
	})

	t.Run("Sim: three outs retire the side and clear the bases", func(t *testing.T) {
		s.walk() // put a runner on
		require.Len(t, s.runners(), 1)

		strikeOut()
		strikeOut()
		require.Equal(t, 2, s.inning)
		require.Equal(t, 0, s.count.Outs)
		require.Empty(t, s.runners())
		require.Equal(t, 1, sink.countGame("side_retired"))
		require.Equal(t, 3, sink.countGame("strikeout"))
	})
}

func TestSimHomeRun(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 3, Sink: sink})
	require.NoError(t, err)

	s.walk()
	s.walk()
	s.walk()
	require.Len(t, s.runners(), 3)

	s.homeRun()
	require.Equal(t, 4, s.runs)
	require.Empty(t, s.runners())
	require.Equal(t, 10, s.Registry().Count())
	require.Equal(t, 1, sink.countGame("home_run"))
}

func TestSimFieldsLooseBalls(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 5, Sink: sink})
	require.NoError(t, err)

	// Drop a live ball in the shortstop's patch and let the defense work.
	s.ball = Ball{Position: physics.Vec3{X: 4, Y: 14}, Live: true}
	s.phase = PhaseBallLive

	done := false
	for i := 0; i < 400 && !done; i++ {
		stepN(s, 1, stepDt)
		snap := s.TakeSnapshot()
		done = snap.Phase == PhaseAtBat && !snap.Ball.Live
	}
	require.True(t, done, "defense never brought the ball in")
	require.Equal(t, 1, sink.countGame("fielded"))
	require.Equal(t, 1, sink.countGame("throw_in"))
	require.Equal(t, MoundPosition, s.TakeSnapshot().Ball.Position)
}

func TestSimNodeTracing(t *testing.T) {
	sink := &captureSink{}
	s, err := NewSim(Options{Seed: 1, Sink: sink, TraceNodes: true})
	require.NoError(t, err)

	stepN(s, 20, stepDt)
	require.Greater(t, sink.countKind(trace.KindNode), 0)
	require.Greater(t, sink.countKind(trace.KindAction), 0)
}
