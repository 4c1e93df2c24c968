package main

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/wavplay"
	"github.com/cwbudde/wavplay/device"
	"github.com/cwbudde/wavplay/internal/wavtest"
	"github.com/cwbudde/wavplay/playback"
	"github.com/decred/slog"
)

// fakeOutput pulls from the player on its own goroutine until the player
// asks to quit or the output is closed.
type fakeOutput struct {
	buf    playback.Buffer
	quit   bool
	stop   chan struct{}
	wg     sync.WaitGroup
	pulled int
}

func (o *fakeOutput) DequeueBuffer() *playback.Buffer { return &o.buf }
func (o *fakeOutput) QueueBuffer(*playback.Buffer)    {}
func (o *fakeOutput) Quit()                           { o.quit = true }

func (o *fakeOutput) Close() error {
	close(o.stop)
	o.wg.Wait()

	return nil
}

func useFakeOutput(t *testing.T) *fakeOutput {
	t.Helper()

	o := &fakeOutput{
		buf:  playback.Buffer{Data: make([]byte, 64)},
		stop: make(chan struct{}),
	}

	prev := openOutput
	openOutput = func(_ device.Backend, p *playback.Player, _ slog.Logger) (device.Output, error) {
		o.wg.Add(1)

		go func() {
			defer o.wg.Done()

			for !o.quit {
				select {
				case <-o.stop:
					return
				default:
				}

				p.Process(o)
				o.pulled++
			}
		}()

		return o, nil
	}

	t.Cleanup(func() { openOutput = prev })

	return o
}

func fixture(t *testing.T) string {
	t.Helper()

	return wavtest.WriteFile(t, wavtest.PCM(2, 8000, 16, make([]byte, 4096)))
}

func TestRunRequiresPath(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, &out)
	if !errors.Is(err, errMissingPath) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPlaysToEnd(t *testing.T) {
	o := useFakeOutput(t)

	var out bytes.Buffer

	err := run([]string{"-loglevel", "debug", "-fade-in", "10ms", fixture(t)}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !o.quit {
		t.Fatalf("player never asked the output to quit")
	}

	// 4096 bytes in 64 byte pulls, plus the pull that finds the end.
	if o.pulled != 65 {
		t.Fatalf("pulls=%d, want 65", o.pulled)
	}

	if !strings.Contains(out.String(), "Playing") {
		t.Fatalf("expected a PLAY log line, got:\n%s", out.String())
	}
}

func TestRunStartFailure(t *testing.T) {
	useFakeOutput(t)

	path := wavtest.WriteFile(t, wavtest.PCM(1, 8000, 12, make([]byte, 6)))

	var out bytes.Buffer

	err := run([]string{path}, &out)
	if !errors.Is(err, wavplay.ErrUnsupportedSampleWidth) {
		t.Fatalf("err=%v, want ErrUnsupportedSampleWidth", err)
	}
}

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer

	cfg, err := parseArgs([]string{
		"-volume", "0.5", "-fade-in", "1s", "-fade-out", "250ms", "-speed", "2",
		"-paused", "-backend", "beep", "-load", "copy", "-loglevel", "trace", "-i", "song.wav",
	}, &out)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.path != "song.wav" || !cfg.interactive || cfg.backend != device.BackendBeep {
		t.Fatalf("cfg=%+v", cfg)
	}

	o := cfg.opts
	if o.Volume != 0.5 || o.FadeIn != time.Second || o.FadeOut != 250*time.Millisecond ||
		o.Speed != 2 || !o.Paused || o.LoadMode != wavplay.LoadCopy {
		t.Fatalf("opts=%+v", o)
	}

	if cfg.level != slog.LevelTrace {
		t.Fatalf("level=%s, want trace", cfg.level)
	}
}

func TestParseArgsRejects(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"-volume", "-1", "x.wav"}, playback.ErrInvalidVolume},
		{[]string{"-speed", "0", "x.wav"}, playback.ErrInvalidSpeed},
		{[]string{"-backend", "alsa", "x.wav"}, device.ErrUnknownBackend},
		{[]string{"-loglevel", "loud", "x.wav"}, errBadLogLevel},
	}

	for _, tt := range tests {
		var out bytes.Buffer

		_, err := parseArgs(tt.args, &out)
		if !errors.Is(err, tt.want) {
			t.Fatalf("parseArgs(%v) err=%v, want %v", tt.args, err, tt.want)
		}
	}
}
