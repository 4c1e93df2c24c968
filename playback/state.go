package playback

import "fmt"

// State is the transport state of a Player.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	// StateFinished is terminal: the stream ended or Stop was called.
	StateFinished
	// StateAborted is terminal: loading failed or was cancelled.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted
}
