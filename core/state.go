package core

// LifecycleState tracks one run through its state machine. Completed and
// Failed are terminal; a finished run is never resumed.
type LifecycleState int

const (
	StateUninitialized LifecycleState = iota
	StateInitializing
	StateRunning
	StateFinalizing
	StateCompleted
	StateFailed
)

func (s LifecycleState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s LifecycleState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
