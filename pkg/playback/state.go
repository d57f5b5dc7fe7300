// ABOUTME: Playback state definitions
// ABOUTME: Controller states and the snapshot handed to observers
package playback

// State is the controller's transport state
type State int

const (
	// StatePaused is the initial state and the state after a pause
	StatePaused State = iota
	StatePlaying
	// StateFinished holds until the next TogglePlay restarts from zero
	StateFinished
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of a controller
type Snapshot struct {
	State    State
	Playing  bool
	Loading  bool
	Progress float64
	Elapsed  float64
	Duration float64
}
