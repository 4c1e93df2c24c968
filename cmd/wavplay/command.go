package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/wavplay/playback"
)

const helpText = `Commands:
  pause              pause output
  resume             resume output
  stop               end playback
  volume [v]         show or set the linear volume
  fade <in> <out>    set fade lengths, e.g. fade 500ms 2s
  speed [f]          show or set the speed factor
  status             show transport state
  help               show this text
`

// execute runs one console command. quit is set once the session should end.
func execute(p *playback.Player, line string, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "pause":
		return false, p.Pause()
	case "resume", "play":
		return false, p.Resume()
	case "stop", "quit", "q":
		return true, p.Stop()
	case "volume", "vol":
		if len(args) == 0 {
			fmt.Fprintf(out, "Volume: %g\n", p.Volume())
			return false, nil
		}

		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("volume %q: %w", args[0], err)
		}

		return false, p.SetVolume(v)
	case "speed":
		if len(args) == 0 {
			fmt.Fprintf(out, "Speed: %g\n", p.SpeedFactor())
			return false, nil
		}

		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("speed %q: %w", args[0], err)
		}

		return false, p.SetSpeedFactor(f)
	case "fade":
		if len(args) != 2 {
			return false, fmt.Errorf("%w: fade needs <in> <out>", errUnknownInput)
		}

		in, err := time.ParseDuration(args[0])
		if err != nil {
			return false, fmt.Errorf("fade-in %q: %w", args[0], err)
		}

		fadeOut, err := time.ParseDuration(args[1])
		if err != nil {
			return false, fmt.Errorf("fade-out %q: %w", args[1], err)
		}

		return false, p.SetFadeTimings(in, fadeOut)
	case "status":
		status(p, out)
		return false, nil
	case "help", "?":
		fmt.Fprint(out, helpText)
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errUnknownInput, cmd)
	}
}
