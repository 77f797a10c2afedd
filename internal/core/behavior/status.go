package behavior

// Status is the outcome of executing a node for one tick.
type Status int

const (
	// StatusSuccess means the node completed its work this activation.
	StatusSuccess Status = iota
	// StatusFailure means the node could not complete its work. Failure is a
	// first-class decision outcome, not an error.
	StatusFailure
	// StatusRunning means the node needs more ticks and must be re-entered
	// before any later sibling is considered.
	StatusRunning
	// StatusInvalid signals mis-configuration (a tree without a root). It is
	// never produced by a correctly assembled tree.
	StatusInvalid
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	case StatusInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the status ends the current activation.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}
