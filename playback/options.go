package playback

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/wavplay"
)

const maxFade = time.Duration(math.MaxInt32) * time.Millisecond

// MaxSpeed is the largest accepted speed factor.
const MaxSpeed = 64.0

// Options is the initial transport state of a session.
type Options struct {
	// Paused starts the session inert; Resume begins output.
	Paused bool
	// Volume is a linear multiplier applied on top of the fade envelope.
	Volume float64
	// FadeIn and FadeOut are the ramp lengths at the start and end of the asset.
	FadeIn  time.Duration
	FadeOut time.Duration
	// Speed is the number of source frames consumed per rendered frame, in
	// (0, MaxSpeed].
	Speed float64
	// LoadMode selects how the data chunk is acquired.
	LoadMode wavplay.LoadMode
}

// DefaultOptions returns full volume, unit speed, no fades and automatic
// payload mapping.
func DefaultOptions() Options {
	return Options{
		Volume:   1,
		Speed:    1,
		LoadMode: wavplay.LoadAuto,
	}
}

// Validate checks every field against the same rules as the setters.
func (o Options) Validate() error {
	if err := validateVolume(o.Volume); err != nil {
		return err
	}

	if err := validateSpeed(o.Speed); err != nil {
		return err
	}

	return validateFades(o.FadeIn, o.FadeOut)
}

func validateVolume(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, v)
	}

	return nil
}

func validateSpeed(f float64) error {
	if math.IsNaN(f) || f <= 0 || f > MaxSpeed {
		return fmt.Errorf("%w: %v, want (0, %v]", ErrInvalidSpeed, f, MaxSpeed)
	}

	return nil
}

func validateFades(in, out time.Duration) error {
	for _, d := range []time.Duration{in, out} {
		if d < 0 || d > maxFade {
			return fmt.Errorf("%w: %s", ErrInvalidFade, d)
		}
	}

	return nil
}
