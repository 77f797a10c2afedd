package behavior

import (
	"context"
	"time"
)

// tick advances tr by dt with a background context.
func tick(tr *Tree, dt time.Duration) Status {
	return tr.Tick(context.Background(), dt)
}

// tickN ticks n times and returns the last status.
func tickN(tr *Tree, n int, dt time.Duration) Status {
	var st Status
	for i := 0; i < n; i++ {
		st = tr.Tick(context.Background(), dt)
	}
	return st
}

// scripted is a leaf that replays a fixed status script, repeating the last
// entry once exhausted. Reset rewinds the script position; calls and resets
// accumulate for the lifetime of the node so tests can assert exactly how
// often parents drove it.
type scripted struct {
	baseNode
	statuses []Status
	pos      int
	calls    int
	resets   int
}

func newScripted(name string, statuses ...Status) *scripted {
	if len(statuses) == 0 {
		statuses = []Status{StatusSuccess}
	}
	return &scripted{baseNode: newBaseNode(name, TypeAction), statuses: statuses}
}

func (s *scripted) Execute(ec *ExecutionContext) Status {
	i := s.pos
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.pos++
	s.calls++
	return ec.report(s, s.statuses[i])
}

func (s *scripted) Reset() {
	s.pos = 0
	s.resets++
}

// scriptedRand replays fixed Float64 samples and permutations, repeating
// the last entry once exhausted. The zero value rolls 0.0 and identity
// permutations.
type scriptedRand struct {
	floats     []float64
	perms      [][]int
	floatCalls int
	permCalls  int
}

func (r *scriptedRand) Float64() float64 {
	i := r.floatCalls
	r.floatCalls++
	if len(r.floats) == 0 {
		return 0
	}
	if i >= len(r.floats) {
		i = len(r.floats) - 1
	}
	return r.floats[i]
}

func (r *scriptedRand) Perm(n int) []int {
	i := r.permCalls
	r.permCalls++
	if len(r.perms) == 0 {
		out := make([]int, n)
		for j := range out {
			out[j] = j
		}
		return out
	}
	if i >= len(r.perms) {
		i = len(r.perms) - 1
	}
	out := make([]int, len(r.perms[i]))
	copy(out, r.perms[i])
	return out
}
