package playback

import "errors"

var (
	// ErrInvalidStateTransition is returned by control operations issued in
	// a state that does not allow them, e.g. Pause while Idle.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrBufferUnavailable describes a render pull where the host had no free
	// buffer. It is never returned; such pulls are counted by
	// Underruns and reported when Wait returns.
	ErrBufferUnavailable = errors.New("no buffer available from host")
	// ErrInvalidVolume is returned for negative, NaN or infinite volumes.
	ErrInvalidVolume = errors.New("invalid volume")
	// ErrInvalidSpeed is returned for speed factors outside (0, MaxSpeed].
	ErrInvalidSpeed = errors.New("invalid speed factor")
	// ErrInvalidFade is returned for negative or out of range fade durations.
	ErrInvalidFade = errors.New("invalid fade duration")
)
