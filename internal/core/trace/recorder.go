package trace

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
)

const defaultRingSize = 1024

// Recorder is the standard Sink: a bounded ring of recent events plus live
// fan-out to subscribers. Recording never blocks; a subscriber that cannot
// keep up loses events and the loss is counted.
type Recorder struct {
	mu   sync.Mutex
	seq  uint64
	ring []Event
	next int
	full bool
	subs map[string]chan Event

	drops atomic.Uint64
	log   log.Log
}

// NewRecorder builds a recorder keeping the last capacity events.
func NewRecorder(capacity int, logger log.Log) *Recorder {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Recorder{
		ring: make([]Event, capacity),
		subs: make(map[string]chan Event),
		log:  logger.With(log.String("component", "trace")),
	}
}

// Record assigns the event its sequence number, stores it in the ring and
// fans it out.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	r.seq++
	ev.Seq = r.seq
	r.ring[r.next] = ev
	r.next++
	if r.next == len(r.ring) {
		r.next = 0
		r.full = true
	}
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
			r.drops.Add(1)
		}
	}
	r.mu.Unlock()
}

// Seq is the sequence number of the most recent event.
func (r *Recorder) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Len is the number of events currently held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.ring)
	}
	return r.next
}

// Drops is the number of events lost to slow subscribers.
func (r *Recorder) Drops() uint64 {
	return r.drops.Load()
}

// Recent returns up to n events, oldest first.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := r.next
	if r.full {
		held = len(r.ring)
	}
	if n <= 0 || n > held {
		n = held
	}
	out := make([]Event, 0, n)
	start := r.next - n
	if start < 0 {
		start += len(r.ring)
	}
	for i := 0; i < n; i++ {
		out = append(out, r.ring[(start+i)%len(r.ring)])
	}
	return out
}

// Since returns held events with a sequence number greater than seq, oldest
// first. Events already evicted from the ring are gone.
func (r *Recorder) Since(seq uint64) []Event {
	all := r.Recent(0)
	for i, ev := range all {
		if ev.Seq > seq {
			return all[i:]
		}
	}
	return nil
}

// Subscribe registers a live event channel. The returned id releases it.
func (r *Recorder) Subscribe(buffer int) (string, <-chan Event) {
	if buffer <= 0 {
		buffer = 64
	}
	id := uuid.NewString()
	ch := make(chan Event, buffer)
	r.mu.Lock()
	r.subs[id] = ch
	r.mu.Unlock()
	r.log.Debug("trace subscriber added", log.String("subscriber_id", id))
	return id, ch
}

// Unsubscribe releases a subscription and closes its channel.
func (r *Recorder) Unsubscribe(id string) {
	r.mu.Lock()
	ch, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()
	if ok {
		close(ch)
	}
}

var _ Sink = (*Recorder)(nil)
