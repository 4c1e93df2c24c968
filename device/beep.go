package device

import (
	"fmt"
	"time"

	"github.com/cwbudde/wavplay/playback"
	"github.com/decred/slog"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// beepStreamer exposes the player as a beep.Streamer. Mono is sent to both
// speaker channels and anything beyond two channels is dropped.
type beepStreamer struct {
	h     *pull
	ended bool
}

func newBeepStreamer(p *playback.Player, frames int) *beepStreamer {
	return &beepStreamer{h: newPull(p, frames)}
}

func (s *beepStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.ended || s.h.done() {
		s.ended = true
		return 0, false
	}

	got := s.h.fill(len(samples))
	if s.h.done() {
		s.ended = true
		if got == 0 {
			return 0, false
		}
	}

	right := min(1, s.h.channels-1)

	for i := range samples {
		if i >= got {
			if s.ended {
				return got, true
			}

			samples[i] = [2]float64{}

			continue
		}

		samples[i][0] = s.h.sample(i, 0)
		samples[i][1] = s.h.sample(i, right)
	}

	return len(samples), true
}

func (s *beepStreamer) Err() error { return nil }

type beepOutput struct {
	log slog.Logger
}

func openBeep(p *playback.Player, log slog.Logger) (Output, error) {
	sr := beep.SampleRate(p.Format().SampleRate)
	frames := sr.N(time.Millisecond * 100)

	err := speaker.Init(sr, frames)
	if err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}

	speaker.Play(beep.Seq(newBeepStreamer(p, frames), beep.Callback(func() {
		log.Tracef("beep stream drained")
	})))

	log.Debugf("beep output at %d Hz", int(sr))

	return &beepOutput{log: log}, nil
}

// Close clears the speaker mixer. Clear holds the speaker lock, so no Stream
// call is in flight when it returns.
func (o *beepOutput) Close() error {
	speaker.Clear()
	o.log.Tracef("beep output closed")

	return nil
}
