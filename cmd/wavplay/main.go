// This tool plays a PCM wav file on the default audio device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/chzyer/readline"
	"github.com/cwbudde/wavplay"
	"github.com/cwbudde/wavplay/device"
	"github.com/cwbudde/wavplay/playback"
	"github.com/decred/slog"
)

const missingPathMessage = "You must pass the path of the file to play"

var (
	errMissingPath  = errors.New("missing path argument")
	errBadLogLevel  = errors.New("unknown log level")
	errUnknownInput = errors.New("unknown command")

	// openOutput connects the player to an audio device.
	openOutput = device.Open
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

type config struct {
	path        string
	opts        playback.Options
	backend     device.Backend
	level       slog.Level
	interactive bool
}

func parseArgs(args []string, out io.Writer) (config, error) {
	var cfg config

	flagSet := flag.NewFlagSet("wavplay", flag.ContinueOnError)
	flagSet.SetOutput(out)

	volume := flagSet.Float64("volume", 1, "linear output volume")
	fadeIn := flagSet.Duration("fade-in", 0, "fade-in length")
	fadeOut := flagSet.Duration("fade-out", 0, "fade-out length")
	speed := flagSet.Float64("speed", 1, "source frames consumed per output frame")
	paused := flagSet.Bool("paused", false, "start paused")
	backend := flagSet.String("backend", "oto", "audio backend: oto or beep")
	load := flagSet.String("load", "auto", "payload acquisition: auto, copy or map")
	level := flagSet.String("loglevel", "info", "log level: trace, debug, info, warn, error, critical, off")
	interactive := flagSet.Bool("i", false, "read transport commands from the terminal")

	err := flagSet.Parse(args)
	if err != nil {
		return cfg, err
	}

	if flagSet.NArg() < 1 {
		return cfg, errMissingPath
	}

	cfg.path = flagSet.Arg(0)
	cfg.interactive = *interactive

	cfg.opts = playback.DefaultOptions()
	cfg.opts.Volume = *volume
	cfg.opts.FadeIn = *fadeIn
	cfg.opts.FadeOut = *fadeOut
	cfg.opts.Speed = *speed
	cfg.opts.Paused = *paused

	cfg.opts.LoadMode, err = wavplay.ParseLoadMode(*load)
	if err != nil {
		return cfg, err
	}

	err = cfg.opts.Validate()
	if err != nil {
		return cfg, err
	}

	cfg.backend, err = device.ParseBackend(*backend)
	if err != nil {
		return cfg, err
	}

	var ok bool

	cfg.level, ok = slog.LevelFromString(*level)
	if !ok {
		return cfg, fmt.Errorf("%w: %q", errBadLogLevel, *level)
	}

	return cfg, nil
}

func run(args []string, out io.Writer) error {
	cfg, err := parseArgs(args, out)
	if err != nil {
		return err
	}

	backend := slog.NewBackend(out)
	playLog := backend.Logger("PLAY")
	playLog.SetLevel(cfg.level)
	devLog := backend.Logger("DEVC")
	devLog.SetLevel(cfg.level)

	p := playback.New(playLog)

	err = p.Start(cfg.path, cfg.opts)
	if err != nil {
		return err
	}

	output, err := openOutput(cfg.backend, p, devLog)
	if err != nil {
		p.Close()
		return err
	}

	playLog.Infof("Playing %s (%s)", cfg.path, p.Format())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.interactive {
		go func() {
			err := console(p, out)
			if err != nil {
				playLog.Errorf("Console: %v", err)
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = p.Stop()
		case <-p.Done():
		}
	}()

	err = p.Wait(context.Background())
	if err != nil {
		return err
	}

	// The device must stop pulling before the payload goes away.
	err = output.Close()
	if err != nil {
		devLog.Warnf("Closing output: %v", err)
	}

	return p.Close()
}

// console reads commands until the session ends, the input closes or a stop
// command is entered.
func console(p *playback.Player, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "wavplay> ",
		AutoComplete: completer(),
		Stdout:       out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C, Ctrl-D or closed input.
			_ = p.Stop()
			return nil
		}

		quit, err := execute(p, line, out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

		if quit || p.State().Terminal() {
			return nil
		}
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("pause"),
		readline.PcItem("resume"),
		readline.PcItem("stop"),
		readline.PcItem("volume"),
		readline.PcItem("fade"),
		readline.PcItem("speed"),
		readline.PcItem("status"),
		readline.PcItem("help"),
	)
}

func status(p *playback.Player, out io.Writer) {
	in, fadeOut := p.FadeTimings()

	fmt.Fprintf(out, "State: %s\n", p.State())
	fmt.Fprintf(out, "Format: %s\n", p.Format())
	fmt.Fprintf(out, "Position: %d bytes (%s)\n", p.Position(), p.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(out, "Volume: %g\n", p.Volume())
	fmt.Fprintf(out, "Speed: %g\n", p.SpeedFactor())
	fmt.Fprintf(out, "Fades: in %s, out %s\n", in, fadeOut)
	fmt.Fprintf(out, "Underruns: %d\n", p.Underruns())
}
