package accel

import "fmt"

// State is the lifecycle state of a build.
type State int

// Build states.
const (
	StateUnbuilt State = iota
	StateBuilding
	StateCompacting
	StateReady
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "Unbuilt"
	case StateBuilding:
		return "Building"
	case StateCompacting:
		return "Compacting"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
