package behavior

// Sequence executes children in order until one fails (logical AND). The
// cursor persists across Running ticks so a long-running child resumes
// rather than restarts; it rewinds on any terminal status. An empty
// Sequence succeeds.
type Sequence struct {
	compositeNode
	cursor int
}

// NewSequence creates a sequence over the given children.
func NewSequence(name string, children ...Node) *Sequence {
	sq := &Sequence{compositeNode: compositeNode{baseNode: newBaseNode(name, TypeSequence)}}
	sq.adopt(sq, children...)
	return sq
}

// Add appends children, preserving order.
func (sq *Sequence) Add(children ...Node) {
	sq.adopt(sq, children...)
}

func (sq *Sequence) Execute(ec *ExecutionContext) Status {
	for sq.cursor < len(sq.children) {
		switch sq.children[sq.cursor].Execute(ec) {
		case StatusSuccess:
			sq.cursor++
		case StatusRunning:
			return ec.report(sq, StatusRunning)
		default:
			sq.Reset()
			return ec.report(sq, StatusFailure)
		}
	}
	sq.Reset()
	return ec.report(sq, StatusSuccess)
}

func (sq *Sequence) Reset() {
	sq.cursor = 0
	sq.resetChildren()
}

// Selector executes children in order until one succeeds (logical OR). The
// cursor persists across Running ticks; it rewinds on any terminal status.
// An empty Selector fails.
type Selector struct {
	compositeNode
	cursor int
}

// NewSelector creates a selector over the given children.
func NewSelector(name string, children ...Node) *Selector {
	sl := &Selector{compositeNode: compositeNode{baseNode: newBaseNode(name, TypeSelector)}}
	sl.adopt(sl, children...)
	return sl
}

// Add appends children, preserving order.
func (sl *Selector) Add(children ...Node) {
	sl.adopt(sl, children...)
}

func (sl *Selector) Execute(ec *ExecutionContext) Status {
	for sl.cursor < len(sl.children) {
		switch sl.children[sl.cursor].Execute(ec) {
		case StatusFailure:
			sl.cursor++
		case StatusRunning:
			return ec.report(sl, StatusRunning)
		default:
			sl.Reset()
			return ec.report(sl, StatusSuccess)
		}
	}
	sl.Reset()
	return ec.report(sl, StatusFailure)
}

func (sl *Selector) Reset() {
	sl.cursor = 0
	sl.resetChildren()
}

// RandomSequence has the Sequence contract but permutes child order once per
// fresh activation using the injected generator. The permutation is held
// fixed for the whole activation, including across Running ticks, so a
// resumed child is still the correct one; the next fresh activation draws a
// new permutation.
type RandomSequence struct {
	compositeNode
	rng    Rand
	order  []int
	cursor int
	active bool
}

// NewRandomSequence creates a shuffled sequence. A nil rng falls back to a
// time-seeded source.
func NewRandomSequence(name string, rng Rand, children ...Node) *RandomSequence {
	if rng == nil {
		rng = defaultRand()
	}
	rs := &RandomSequence{
		compositeNode: compositeNode{baseNode: newBaseNode(name, TypeRandomSequence)},
		rng:           rng,
	}
	rs.adopt(rs, children...)
	return rs
}

// Add appends children. They join the shuffle on the next fresh activation.
func (rs *RandomSequence) Add(children ...Node) {
	rs.adopt(rs, children...)
}

func (rs *RandomSequence) Execute(ec *ExecutionContext) Status {
	if !rs.active {
		rs.order = rs.rng.Perm(len(rs.children))
		rs.cursor = 0
		rs.active = true
	}
	for rs.cursor < len(rs.order) {
		switch rs.children[rs.order[rs.cursor]].Execute(ec) {
		case StatusSuccess:
			rs.cursor++
		case StatusRunning:
			return ec.report(rs, StatusRunning)
		default:
			rs.Reset()
			return ec.report(rs, StatusFailure)
		}
	}
	rs.Reset()
	return ec.report(rs, StatusSuccess)
}

func (rs *RandomSequence) Reset() {
	rs.cursor = 0
	rs.active = false
	rs.resetChildren()
}

// ParallelPolicy decides when a Parallel's tally of child outcomes resolves
// it. Policies are one of: all children, any one child, or a fixed count.
type ParallelPolicy struct {
	kind policyKind
	n    int
}

type policyKind int

const (
	policyAll policyKind = iota
	policyOne
	policyCount
)

// Predefined policies.
var (
	ParallelRequireAll = ParallelPolicy{kind: policyAll}
	ParallelRequireOne = ParallelPolicy{kind: policyOne}
)

// ParallelRequireCount resolves once n children report the tallied status.
// Counts below one are clamped to one; counts above the child total behave
// like ParallelRequireAll.
func ParallelRequireCount(n int) ParallelPolicy {
	if n < 1 {
		n = 1
	}
	return ParallelPolicy{kind: policyCount, n: n}
}

func (p ParallelPolicy) satisfied(count, total int) bool {
	switch p.kind {
	case policyOne:
		return count >= 1
	case policyCount:
		n := p.n
		if n > total {
			n = total
		}
		return count >= n
	default:
		return count >= total
	}
}

// Parallel visits every child every tick: no short-circuiting, so Running
// children keep executing alongside already-resolved siblings. Resolved
// children latch their status for the rest of the activation and are not
// re-executed; the tally of latched statuses is checked against the failure
// policy first (failure wins ties), then the success policy. If neither is
// satisfied the Parallel is Running. An empty Parallel fails.
type Parallel struct {
	compositeNode
	successPolicy ParallelPolicy
	failurePolicy ParallelPolicy
	latched       []Status
}

// NewParallel creates a parallel composite with the given resolution
// policies.
func NewParallel(name string, successPolicy, failurePolicy ParallelPolicy, children ...Node) *Parallel {
	pn := &Parallel{
		compositeNode: compositeNode{baseNode: newBaseNode(name, TypeParallel)},
		successPolicy: successPolicy,
		failurePolicy: failurePolicy,
	}
	pn.adopt(pn, children...)
	return pn
}

// Add appends children and extends the latch table.
func (pn *Parallel) Add(children ...Node) {
	pn.adopt(pn, children...)
	pn.latched = nil
}

func (pn *Parallel) Execute(ec *ExecutionContext) Status {
	total := len(pn.children)
	if total == 0 {
		return ec.report(pn, StatusFailure)
	}
	if len(pn.latched) != total {
		pn.latched = make([]Status, total)
		for i := range pn.latched {
			pn.latched[i] = StatusInvalid
		}
	}

	successes, failures := 0, 0
	for i, child := range pn.children {
		if !pn.latched[i].Terminal() {
			pn.latched[i] = child.Execute(ec)
		}
		switch pn.latched[i] {
		case StatusSuccess:
			successes++
		case StatusFailure:
			failures++
		}
	}

	if pn.failurePolicy.satisfied(failures, total) {
		pn.Reset()
		return ec.report(pn, StatusFailure)
	}
	if pn.successPolicy.satisfied(successes, total) {
		pn.Reset()
		return ec.report(pn, StatusSuccess)
	}
	return ec.report(pn, StatusRunning)
}

func (pn *Parallel) Reset() {
	for i := range pn.latched {
		pn.latched[i] = StatusInvalid
	}
	pn.resetChildren()
}
