package trace

import (
	"encoding/json"
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/pkg/encoding"
)

// Kind classifies an event stream entry.
type Kind string

const (
	// KindNode is a behavior-tree node reporting a status during a tick.
	KindNode Kind = "node"
	// KindAction is an agent's outward action changing.
	KindAction Kind = "action"
	// KindGame is a game-state transition (pitch thrown, hit, out, ...).
	KindGame Kind = "game"
)

// Event is one observable moment in the simulation. Producers leave Seq
// zero; the recorder assigns it.
type Event struct {
	Seq     uint64         `json:"seq"`
	Wall    time.Time      `json:"wall"`
	Clock   time.Duration  `json:"clock"`
	Kind    Kind           `json:"kind"`
	AgentID string         `json:"agent_id,omitempty"`
	Node    string         `json:"node,omitempty"`
	Status  string         `json:"status,omitempty"`
	Action  string         `json:"action,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Sink consumes events as they happen. Implementations must be safe for
// concurrent use; agents ticked in parallel record concurrently. Recorder is
// the standard sink.
type Sink interface {
	Record(ev Event)
}

// MultiSink fans every event out to all of sinks.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Record(ev Event) {
	for _, s := range m {
		s.Record(ev)
	}
}

// Frame is the unit pushed to websocket and QUIC subscribers: the events of
// one broadcast interval plus an opaque state snapshot supplied by the
// simulation.
type Frame struct {
	Seq    uint64          `json:"seq"`
	Wall   time.Time       `json:"wall"`
	Events []Event         `json:"events,omitempty"`
	State  json.RawMessage `json:"state,omitempty"`
}

func (f *Frame) Serialize() ([]byte, error) { return json.Marshal(f) }

func (f *Frame) Deserialize(data []byte) error { return json.Unmarshal(data, f) }

var _ encoding.Serializable = (*Frame)(nil)
