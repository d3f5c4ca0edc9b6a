package core

import "sync/atomic"

// TargetState is the lifecycle of a registered Target.
// It only ever moves forward; SyncUpdateState is a compare-and-swap so
// concurrent observers (the graph builder recursing into diamond
// dependencies, the generator walking the registry) never race on it.
type TargetState int32

const (
	// NotInProcess is the zero value: the target has not yet been visited.
	NotInProcess TargetState = iota
	// InProcess means the graph builder has started resolving this target's
	// dependencies but hasn't finished; observing a node in this state
	// while visiting one of its own dependencies proves a cycle.
	InProcess
	// Registered means the target and its full dependency set have been
	// interned into the registry.
	Registered
	// BuildFileMade means the generator has emitted this target's Make rules.
	BuildFileMade
	// Building means the Build Driver has started Make against this target.
	Building
	// BuildComplete means Make reported this target's artifact as built.
	BuildComplete
)

func (s TargetState) String() string {
	switch s {
	case NotInProcess:
		return "NotInProcess"
	case InProcess:
		return "InProcess"
	case Registered:
		return "Registered"
	case BuildFileMade:
		return "BuildFileMade"
	case Building:
		return "Building"
	case BuildComplete:
		return "BuildComplete"
	default:
		return "Unknown"
	}
}

// State returns the target's current state.
func (t *Target) State() TargetState {
	return TargetState(atomic.LoadInt32(&t.state))
}

// SetState unconditionally sets the target's state.
func (t *Target) SetState(s TargetState) {
	atomic.StoreInt32(&t.state, int32(s))
}

// SyncUpdateState moves the target's state from before to after, returning
// true if it did so. Used by the generator to claim a target for emission
// exactly once even if invoked concurrently.
func (t *Target) SyncUpdateState(before, after TargetState) bool {
	return atomic.CompareAndSwapInt32(&t.state, int32(before), int32(after))
}
