package animator

// State is the playback state of an Animator.
type State int

const (
	// StateIdle means no clip is active and the final matrices are left untouched.
	StateIdle State = iota

	// StatePlaying means a single clip is advancing and looping.
	StatePlaying

	// StateBlending means the current clip is cross-fading into the next clip.
	StateBlending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateBlending:
		return "blending"
	default:
		return "unknown"
	}
}
