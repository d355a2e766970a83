// Package orchestrator implements the game loop state machine (C9,
// spec.md §4.7): the cooperative, single-threaded core that binds the
// vision stability gate, equity core, GTO engine, opponent store and
// execution contract into one perceive-decide-act cycle.
package orchestrator

// State is one of the 5 + STOPPED orchestrator states from spec.md §4.7.
type State int

const (
	Waiting State = iota
	Perception
	Calculating
	Executing
	Cooldown
	Stopped
)

func (s State) String() string {
	switch s {
	case Perception:
		return "PERCEPTION"
	case Calculating:
		return "CALCULATING"
	case Executing:
		return "EXECUTING"
	case Cooldown:
		return "COOLDOWN"
	case Stopped:
		return "STOPPED"
	default:
		return "WAITING"
	}
}

// FailureReason enumerates the recoverable and unrecoverable failure
// modes from spec.md §4.8.
type FailureReason int

const (
	NoFailure FailureReason = iota
	PerceptionTimeout
	NoTargetButton
	ExecutorLocked
	PeripheralCrash
)

func (f FailureReason) String() string {
	switch f {
	case PerceptionTimeout:
		return "perception_timeout"
	case NoTargetButton:
		return "no_target_button"
	case ExecutorLocked:
		return "executor_locked"
	case PeripheralCrash:
		return "peripheral_crash"
	default:
		return ""
	}
}

// Stats counts the operational events the loop passes through, per
// spec.md §4.8's "regular event counted in stats" language for
// ExecutorLocked, and §8 scenario 5's frames_dropped.
type Stats struct {
	Cycles            int64
	FramesDropped     int64
	PerceptionTimeout int64
	NoTargetButton    int64
	ExecutorLocked    int64
	PeripheralCrash   int64
	Executed          int64
}
