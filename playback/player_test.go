package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/wavplay"
	"github.com/cwbudde/wavplay/internal/wavtest"
)

// testHost hands out fixed-size buffers and records what comes back.
type testHost struct {
	size    int
	starve  bool
	nilData bool

	dequeued int
	queued   []Buffer
	quits    int
}

func (h *testHost) DequeueBuffer() *Buffer {
	h.dequeued++

	if h.starve {
		return nil
	}

	if h.nilData {
		return &Buffer{}
	}

	return &Buffer{Data: make([]byte, h.size)}
}

func (h *testHost) QueueBuffer(b *Buffer) {
	c := *b
	c.Data = append([]byte(nil), b.Data...)
	h.queued = append(h.queued, c)
}

func (h *testHost) Quit() {
	h.quits++
}

func (h *testHost) last(t *testing.T) Buffer {
	t.Helper()

	if len(h.queued) == 0 {
		t.Fatal("no buffer queued")
	}

	return h.queued[len(h.queued)-1]
}

func startPlayer(t *testing.T, data []byte, opts Options) *Player {
	t.Helper()

	p := New(nil)

	err := p.Start(wavtest.WriteFile(t, data), opts)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	t.Cleanup(func() { p.Close() })

	return p
}

func TestPlayerPlaysToEnd(t *testing.T) {
	// Eight 16-bit stereo samples: one full 16-byte pull, then end of stream.
	pcm := wavtest.Int16LE(1, -1, 2, -2, 3, -3, 4, -4)
	p := startPlayer(t, wavtest.PCM(2, 44100, 16, pcm), DefaultOptions())

	if p.State() != StatePlaying {
		t.Fatalf("state=%s, want playing", p.State())
	}

	h := &testHost{size: 16}

	p.Process(h)

	b := h.last(t)
	if b.Size != 16 || b.Stride != 4 || b.Offset != 0 {
		t.Fatalf("first buffer size=%d stride=%d offset=%d, want 16 4 0", b.Size, b.Stride, b.Offset)
	}

	if string(b.Data) != string(pcm) {
		t.Fatalf("first buffer=%v, want %v", b.Data, pcm)
	}

	if h.quits != 0 || p.State() != StatePlaying {
		t.Fatalf("ended early: quits=%d state=%s", h.quits, p.State())
	}

	p.Process(h)

	if b := h.last(t); b.Size != 0 {
		t.Fatalf("second buffer size=%d, want 0", b.Size)
	}

	if h.quits != 1 {
		t.Fatalf("quits=%d, want 1", h.quits)
	}

	if p.State() != StateFinished {
		t.Fatalf("state=%s, want finished", p.State())
	}

	select {
	case <-p.Done():
	default:
		t.Fatal("done not signalled")
	}

	if p.Position() != int64(len(pcm)) {
		t.Fatalf("position=%d, want %d", p.Position(), len(pcm))
	}

	queued := len(h.queued)
	p.Process(h)

	if len(h.queued) != queued {
		t.Fatal("finished player produced output")
	}

	if h.quits != 2 {
		t.Fatalf("quits=%d, want 2", h.quits)
	}
}

func TestPlayerPartialLastPull(t *testing.T) {
	pcm := wavtest.Int16LE(1, 2, 3, 4, 5, 6)
	p := startPlayer(t, wavtest.PCM(1, 8000, 16, pcm), DefaultOptions())
	h := &testHost{size: 8}

	p.Process(h)
	p.Process(h)

	b := h.last(t)
	if b.Size != 4 {
		t.Fatalf("last size=%d, want 4", b.Size)
	}

	if p.State() != StateFinished || h.quits != 1 {
		t.Fatalf("state=%s quits=%d, want finished 1", p.State(), h.quits)
	}
}

func TestPlayerPausedDoesNotTouchHost(t *testing.T) {
	opts := DefaultOptions()
	opts.Paused = true

	p := startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(1, 2, 3, 4)), opts)
	if p.State() != StatePaused {
		t.Fatalf("state=%s, want paused", p.State())
	}

	h := &testHost{size: 4}
	for range 5 {
		p.Process(h)
	}

	if h.dequeued != 0 || len(h.queued) != 0 || h.quits != 0 {
		t.Fatalf("paused player touched host: dequeued=%d queued=%d quits=%d", h.dequeued, len(h.queued), h.quits)
	}

	if p.Position() != 0 {
		t.Fatalf("position=%d, want 0", p.Position())
	}

	if err := p.Resume(); err != nil {
		t.Fatal(err)
	}

	p.Process(h)

	if p.Position() != 4 {
		t.Fatalf("position=%d, want 4", p.Position())
	}

	if err := p.Pause(); err != nil {
		t.Fatal(err)
	}

	p.Process(h)

	if p.Position() != 4 || h.dequeued != 1 {
		t.Fatalf("pause moved the cursor: position=%d dequeued=%d", p.Position(), h.dequeued)
	}
}

func TestPlayerPositionMonotonic(t *testing.T) {
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i)
	}

	p := startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(samples...)), DefaultOptions())
	h := &testHost{size: 64}

	var prev int64

	for p.State() == StatePlaying {
		p.Process(h)

		pos := p.Position()
		if pos < prev {
			t.Fatalf("position went back: %d < %d", pos, prev)
		}

		prev = pos
	}

	if prev != 2000 {
		t.Fatalf("final position=%d, want 2000", prev)
	}
}

func TestPlayerTransitions(t *testing.T) {
	p := New(nil)

	if err := p.Pause(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("pause while idle err=%v", err)
	}

	if err := p.Resume(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("resume while idle err=%v", err)
	}

	if err := p.Stop(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("stop while idle err=%v", err)
	}

	path := wavtest.WriteFile(t, wavtest.PCM(1, 8000, 8, wavtest.Int8(128, 128)))
	if err := p.Start(path, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Start(path, DefaultOptions()); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("second start err=%v", err)
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("resume while playing err=%v, want nil", err)
	}

	if err := p.Pause(); err != nil {
		t.Fatal(err)
	}

	if err := p.Pause(); err != nil {
		t.Fatalf("pause while paused err=%v, want nil", err)
	}

	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}

	if p.State() != StateFinished {
		t.Fatalf("state=%s, want finished", p.State())
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("second stop err=%v", err)
	}

	if err := p.Resume(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("resume after stop err=%v", err)
	}

	h := &testHost{size: 4}
	p.Process(h)

	if h.dequeued != 0 || h.quits != 1 {
		t.Fatalf("stopped player dequeued=%d quits=%d, want 0 1", h.dequeued, h.quits)
	}
}

func TestPlayerStartFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"unsupported width", wavtest.PCM(1, 8000, 12, []byte{1, 2, 3, 4}), wavplay.ErrUnsupportedSampleWidth},
		{"float encoding", wavtest.Build(wavtest.FmtTag(3, 1, 8000, 32), wavtest.Data(make([]byte, 8))), wavplay.ErrUnsupportedEncoding},
		{"no data", wavtest.Build(wavtest.Fmt(1, 8000, 16)), wavplay.ErrPCMChunkNotFound},
		{"not riff", []byte("this is not a wav file at all"), wavplay.ErrContainerFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(nil)
			defer p.Close()

			err := p.Start(wavtest.WriteFile(t, tt.data), DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}

			if p.State() != StateAborted {
				t.Fatalf("state=%s, want aborted", p.State())
			}

			select {
			case <-p.Done():
			default:
				t.Fatal("done not signalled")
			}

			if (p.Format() != wavplay.Format{}) {
				t.Fatalf("format=%v, want zero", p.Format())
			}
		})
	}
}

func TestPlayerRejectsBadOptions(t *testing.T) {
	p := New(nil)

	opts := DefaultOptions()
	opts.Speed = 0

	err := p.Start("unused.wav", opts)
	if !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("err=%v, want ErrInvalidSpeed", err)
	}

	if p.State() != StateIdle {
		t.Fatalf("state=%s, want idle", p.State())
	}

	if err := p.SetVolume(-1); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("volume err=%v", err)
	}

	if err := p.SetFadeTimings(-time.Second, 0); !errors.Is(err, ErrInvalidFade) {
		t.Fatalf("fade err=%v", err)
	}

	if err := p.SetSpeedFactor(-2); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("speed err=%v", err)
	}
}

func TestPlayerVolumeAndFade(t *testing.T) {
	samples := make([]int16, 8)
	for i := range samples {
		samples[i] = 1000
	}

	// 1 kHz with a 4 ms fade-in is a 4 frame ramp.
	opts := DefaultOptions()
	opts.Volume = 0.5
	opts.FadeIn = 4 * time.Millisecond

	p := startPlayer(t, wavtest.PCM(1, 1000, 16, wavtest.Int16LE(samples...)), opts)
	// One mono 16-bit frame per pull, so each pull sees the next ramp step.
	h := &testHost{size: 2}

	var got []int32

	for range 4 {
		p.Process(h)

		b := h.last(t)
		got = append(got, OutputSample(b.Data, 2))
	}

	want := []int32{0, 125, 250, 375}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pull %d sample=%d, want %d", i, got[i], want[i])
		}
	}

	if err := p.SetVolume(0); err != nil {
		t.Fatal(err)
	}

	p.Process(h)

	if b := h.last(t); b.Size != 2 || OutputSample(b.Data, 2) != 0 {
		t.Fatalf("volume 0 rendered %v", b.Data)
	}

	in, out := p.FadeTimings()
	if in != 4*time.Millisecond || out != 0 {
		t.Fatalf("fades=%s %s", in, out)
	}

	if p.Volume() != 0 {
		t.Fatalf("volume=%v", p.Volume())
	}
}

func TestPlayerSpeedFactor(t *testing.T) {
	p := startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(0, 1, 2, 3, 4, 5, 6, 7)), DefaultOptions())

	if err := p.SetSpeedFactor(2); err != nil {
		t.Fatal(err)
	}

	if p.SpeedFactor() != 2 {
		t.Fatalf("speed=%v", p.SpeedFactor())
	}

	h := &testHost{size: 8}
	p.Process(h)

	b := h.last(t)
	for i, w := range []int32{0, 2, 4, 6} {
		if got := OutputSample(b.Data[i*2:], 2); got != w {
			t.Fatalf("sample %d=%d, want %d", i, got, w)
		}
	}
}

func TestPlayerRejectsHugeSpeed(t *testing.T) {
	p := startPlayer(t, wavtest.PCM(1, 8000, 24, wavtest.Int24LE(1, 2, 3, 4)), DefaultOptions())

	for _, f := range []float64{1e19, MaxSpeed * 2, math.Inf(1)} {
		if err := p.SetSpeedFactor(f); !errors.Is(err, ErrInvalidSpeed) {
			t.Fatalf("SetSpeedFactor(%v) err=%v, want ErrInvalidSpeed", f, err)
		}
	}

	if err := p.SetSpeedFactor(MaxSpeed); err != nil {
		t.Fatal(err)
	}

	h := &testHost{size: 12}
	for i := 0; i < 10 && p.State() == StatePlaying; i++ {
		p.Process(h)
	}

	if p.State() != StateFinished || h.quits != 1 {
		t.Fatalf("state=%s quits=%d, want finished 1", p.State(), h.quits)
	}

	if p.Position() != 12 {
		t.Fatalf("position=%d, want 12", p.Position())
	}
}

func TestPlayerUnderruns(t *testing.T) {
	p := startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(1, 2, 3, 4)), DefaultOptions())

	h := &testHost{size: 4, starve: true}
	p.Process(h)
	p.Process(h)

	if p.Underruns() != 2 || len(h.queued) != 0 {
		t.Fatalf("underruns=%d queued=%d, want 2 0", p.Underruns(), len(h.queued))
	}

	h.starve = false
	h.nilData = true
	p.Process(h)

	if p.Underruns() != 3 {
		t.Fatalf("underruns=%d, want 3", p.Underruns())
	}

	if b := h.last(t); b.Size != 0 {
		t.Fatalf("empty buffer size=%d, want 0", b.Size)
	}

	if p.Position() != 0 {
		t.Fatalf("position=%d, want 0", p.Position())
	}
}

func TestPlayerWait(t *testing.T) {
	p := startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(1, 2)), DefaultOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("wait err=%v, want deadline", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		h := &testHost{size: 4}
		for p.State() == StatePlaying {
			p.Process(h)
		}
	}()

	if err := p.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	wg.Wait()

	if p.State() != StateFinished {
		t.Fatalf("state=%s, want finished", p.State())
	}
}

func TestPlayerCloseIdempotent(t *testing.T) {
	p := New(nil)

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	if p.State() != StateAborted {
		t.Fatalf("state=%s, want aborted", p.State())
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	p = startPlayer(t, wavtest.PCM(1, 8000, 16, wavtest.Int16LE(1, 2)), DefaultOptions())

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	if p.State() != StateFinished {
		t.Fatalf("state=%s, want finished", p.State())
	}
}

func TestPlayerElapsedAndFormat(t *testing.T) {
	p := startPlayer(t, wavtest.PCM(1, 1000, 16, wavtest.Int16LE(make([]int16, 10)...)), DefaultOptions())

	if f := p.Format(); f.SampleRate != 1000 || f.BitsPerSample != 16 {
		t.Fatalf("format=%v", f)
	}

	h := &testHost{size: 10}
	p.Process(h)

	if got := p.Elapsed(); got != 5*time.Millisecond {
		t.Fatalf("elapsed=%s, want 5ms", got)
	}
}
