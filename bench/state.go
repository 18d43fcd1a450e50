package bench

import "fmt"

// State of a Driver. A run visits States strictly in order, though it may
// skip from a failed phase directly to StateCleanup.
type State int

const (
	StateInit State = iota
	StateManifests
	StateCreateFiles
	StateRenameFiles
	StateDeleteFiles
	StateCreateWrite
	StateSequentialRead
	StateSequentialWrite
	StateRandomRead
	StateRandomWrite
	StateCleanup
	StateDone
)

var stateNames = [...]string{
	StateInit:            "init",
	StateManifests:       "manifests",
	StateCreateFiles:     "create-files",
	StateRenameFiles:     "rename-files",
	StateDeleteFiles:     "delete-files",
	StateCreateWrite:     "create-write",
	StateSequentialRead:  "sequential-read",
	StateSequentialWrite: "sequential-write",
	StateRandomRead:      "random-read",
	StateRandomWrite:     "random-write",
	StateCleanup:         "cleanup",
	StateDone:            "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// IsPhase is true if the State is a timed phase.
func (s State) IsPhase() bool { return s >= StateCreateFiles && s <= StateRandomWrite }

// Phase returns the 1-based number of a phase State, or zero if the State
// is not a phase.
func (s State) Phase() int {
	if !s.IsPhase() {
		return 0
	}
	return int(s-StateCreateFiles) + 1
}
