package behavior

import "time"

// repeaterTickBudget caps how many child activations a Repeater drives
// within a single tick. Past the budget the Repeater reports Running and
// continues next tick, so an instantly-succeeding child can never spin the
// frame.
const repeaterTickBudget = 8

// Inverter swaps Success and Failure; Running passes through unchanged. A
// childless Inverter fails.
type Inverter struct {
	decoratorNode
}

// NewInverter creates an inverter around child (which may be nil).
func NewInverter(name string, child Node) *Inverter {
	in := &Inverter{decoratorNode: decoratorNode{baseNode: newBaseNode(name, TypeInverter)}}
	in.wrap(in, child)
	return in
}

// SetChild replaces the wrapped node.
func (in *Inverter) SetChild(child Node) { in.wrap(in, child) }

func (in *Inverter) Execute(ec *ExecutionContext) Status {
	if in.child == nil {
		return ec.report(in, StatusFailure)
	}
	switch in.child.Execute(ec) {
	case StatusSuccess:
		return ec.report(in, StatusFailure)
	case StatusRunning:
		return ec.report(in, StatusRunning)
	default:
		return ec.report(in, StatusSuccess)
	}
}

func (in *Inverter) Reset() {
	if in.child != nil {
		in.child.Reset()
	}
}

// Repeater re-invokes its child up to count times per activation, calling
// Reset on the child between iterations. A count of -1 repeats forever.
// Child failures count as completed iterations; the Repeater itself
// succeeds once the loop completes. A childless Repeater succeeds
// immediately.
type Repeater struct {
	decoratorNode
	count int
	runs  int
}

// NewRepeater creates a repeater. Counts below -1 are clamped to -1.
func NewRepeater(name string, count int, child Node) *Repeater {
	if count < -1 {
		count = -1
	}
	rp := &Repeater{decoratorNode: decoratorNode{baseNode: newBaseNode(name, TypeRepeater)}, count: count}
	rp.wrap(rp, child)
	return rp
}

// SetChild replaces the wrapped node.
func (rp *Repeater) SetChild(child Node) { rp.wrap(rp, child) }

func (rp *Repeater) Execute(ec *ExecutionContext) Status {
	if rp.child == nil {
		return ec.report(rp, StatusSuccess)
	}
	for i := 0; i < repeaterTickBudget; i++ {
		if rp.count >= 0 && rp.runs >= rp.count {
			break
		}
		if rp.child.Execute(ec) == StatusRunning {
			return ec.report(rp, StatusRunning)
		}
		rp.runs++
		rp.child.Reset()
	}
	if rp.count >= 0 && rp.runs >= rp.count {
		rp.runs = 0
		return ec.report(rp, StatusSuccess)
	}
	return ec.report(rp, StatusRunning)
}

func (rp *Repeater) Reset() {
	rp.runs = 0
	if rp.child != nil {
		rp.child.Reset()
	}
}

// TimeLimit gives its child a budget of accumulated tick time. If the child
// is still Running once the budget is spent, the TimeLimit forces exactly
// one Failure and rewinds its clock; the child is left untouched at that
// moment and is rewound at the start of the next activation, so both start
// fresh. A child that terminates in time passes its status through and the
// clock rewinds. A childless TimeLimit fails.
type TimeLimit struct {
	decoratorNode
	limit   time.Duration
	elapsed time.Duration
	expired bool
}

// NewTimeLimit creates a time limit. Negative limits are clamped to zero,
// which forces Failure on the first tick the child does not terminate.
func NewTimeLimit(name string, limit time.Duration, child Node) *TimeLimit {
	if limit < 0 {
		limit = 0
	}
	tl := &TimeLimit{decoratorNode: decoratorNode{baseNode: newBaseNode(name, TypeTimeLimit)}, limit: limit}
	tl.wrap(tl, child)
	return tl
}

// SetChild replaces the wrapped node.
func (tl *TimeLimit) SetChild(child Node) { tl.wrap(tl, child) }

func (tl *TimeLimit) Execute(ec *ExecutionContext) Status {
	if tl.child == nil {
		return ec.report(tl, StatusFailure)
	}
	if tl.expired {
		tl.child.Reset()
		tl.expired = false
	}
	tl.elapsed += ec.DeltaTime
	st := tl.child.Execute(ec)
	if st == StatusRunning {
		if tl.elapsed >= tl.limit {
			tl.elapsed = 0
			tl.expired = true
			return ec.report(tl, StatusFailure)
		}
		return ec.report(tl, StatusRunning)
	}
	tl.elapsed = 0
	return ec.report(tl, st)
}

func (tl *TimeLimit) Reset() {
	tl.elapsed = 0
	tl.expired = false
	if tl.child != nil {
		tl.child.Reset()
	}
}

// Cooldown gates its child behind a recovery period measured on the tree's
// virtual clock. While within the period of the last child Success the
// Cooldown fails without invoking the child at all. Only Success refreshes
// the stamp; Failure does not consume the cooldown. The stamp is
// cross-activation state and survives Reset: that persistence is the whole
// point of the node. A childless Cooldown fails.
type Cooldown struct {
	decoratorNode
	duration time.Duration
	stamp    time.Duration
	stamped  bool
}

// NewCooldown creates a cooldown gate. Negative durations are clamped to
// zero, which never gates.
func NewCooldown(name string, duration time.Duration, child Node) *Cooldown {
	if duration < 0 {
		duration = 0
	}
	cd := &Cooldown{decoratorNode: decoratorNode{baseNode: newBaseNode(name, TypeCooldown)}, duration: duration}
	cd.wrap(cd, child)
	return cd
}

// SetChild replaces the wrapped node.
func (cd *Cooldown) SetChild(child Node) { cd.wrap(cd, child) }

func (cd *Cooldown) Execute(ec *ExecutionContext) Status {
	if cd.child == nil {
		return ec.report(cd, StatusFailure)
	}
	if cd.stamped && ec.Now-cd.stamp < cd.duration {
		return ec.report(cd, StatusFailure)
	}
	st := cd.child.Execute(ec)
	if st == StatusSuccess {
		cd.stamp = ec.Now
		cd.stamped = true
	}
	return ec.report(cd, st)
}

// Reset rewinds the child but keeps the success stamp.
func (cd *Cooldown) Reset() {
	if cd.child != nil {
		cd.child.Reset()
	}
}

// Probability delegates to its child with probability p, drawing one sample
// at the start of each fresh activation. A Running child is resumed without
// re-rolling, so an in-flight delegation can never be cut short by a new
// draw. Failed rolls fail immediately without invoking the child. A
// childless Probability fails.
type Probability struct {
	decoratorNode
	p      float64
	rng    Rand
	active bool
}

// NewProbability creates a probability gate. p is clamped to [0, 1]; a nil
// rng falls back to a time-seeded source.
func NewProbability(name string, p float64, rng Rand, child Node) *Probability {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	if rng == nil {
		rng = defaultRand()
	}
	pb := &Probability{decoratorNode: decoratorNode{baseNode: newBaseNode(name, TypeProbability)}, p: p, rng: rng}
	pb.wrap(pb, child)
	return pb
}

// SetChild replaces the wrapped node.
func (pb *Probability) SetChild(child Node) { pb.wrap(pb, child) }

func (pb *Probability) Execute(ec *ExecutionContext) Status {
	if pb.child == nil {
		return ec.report(pb, StatusFailure)
	}
	if !pb.active {
		if pb.rng.Float64() >= pb.p {
			return ec.report(pb, StatusFailure)
		}
		pb.active = true
	}
	st := pb.child.Execute(ec)
	if st != StatusRunning {
		pb.active = false
	}
	return ec.report(pb, st)
}

func (pb *Probability) Reset() {
	pb.active = false
	if pb.child != nil {
		pb.child.Reset()
	}
}
