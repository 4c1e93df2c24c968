package playback

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/wavplay"
	"github.com/decred/slog"
)

// Player plays one WAV asset through a Host. A Player serves a single
// session; create a new one for the next file.
type Player struct {
	log slog.Logger

	// Shared between the control and render contexts.
	state     atomic.Int32
	volume    atomic.Uint64
	speed     atomic.Uint64
	fadeInMs  atomic.Int32
	fadeOutMs atomic.Int32
	position  atomic.Int64
	underruns atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}

	// Written by Start before the state leaves StateLoading, read-only after.
	file        *wavplay.File
	pcm         []byte
	format      wavplay.Format
	r           renderer
	stride      int
	channels    int
	totalFrames int64

	// Owned by the render context.
	cur cursor

	// ctrl serialises Start and Close. It is never taken by Process.
	ctrl     sync.Mutex
	closeErr error
}

// New returns an idle player. A nil logger disables logging.
func New(log slog.Logger) *Player {
	if log == nil {
		log = slog.Disabled
	}

	p := &Player{
		log:  log,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateIdle))
	p.volume.Store(math.Float64bits(1))
	p.speed.Store(math.Float64bits(1))

	return p
}

// State returns the current transport state.
func (p *Player) State() State {
	return State(p.state.Load())
}

// Start loads path and begins the session in StatePlaying, or StatePaused
// when opts.Paused is set. Any parse or format failure leaves the player in
// StateAborted and is returned; the render context never sees a partially
// loaded session.
func (p *Player) Start(path string, opts Options) error {
	err := opts.Validate()
	if err != nil {
		return err
	}

	p.ctrl.Lock()
	defer p.ctrl.Unlock()

	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return fmt.Errorf("%w: start while %s", ErrInvalidStateTransition, p.State())
	}

	began := time.Now()

	file, r, err := load(path, opts.LoadMode)
	if err != nil {
		p.abort()
		p.log.Errorf("Failed to load %s: %v", path, err)

		return fmt.Errorf("failed to start %s: %w", path, err)
	}

	p.file = file
	p.pcm = file.Payload.Bytes()
	p.format = file.Format
	p.r = r
	p.channels = int(file.Format.NumChannels)
	p.stride = file.Format.FrameStride()
	p.totalFrames = int64(len(p.pcm) / p.stride)
	p.cur = cursor{}

	p.volume.Store(math.Float64bits(opts.Volume))
	p.speed.Store(math.Float64bits(opts.Speed))
	p.fadeInMs.Store(int32(opts.FadeIn / time.Millisecond))
	p.fadeOutMs.Store(int32(opts.FadeOut / time.Millisecond))

	next := StatePlaying
	if opts.Paused {
		next = StatePaused
	}

	if !p.state.CompareAndSwap(int32(StateLoading), int32(next)) {
		// Stop ran while we were loading.
		p.releaseFile()

		return fmt.Errorf("%w: stopped while loading %s", ErrInvalidStateTransition, path)
	}

	p.log.Debugf("Loaded %s: %s, %d bytes (%s payload) in %s",
		path, file.Format, len(p.pcm), file.Payload.Mode(), time.Since(began))

	if file.Truncated {
		p.log.Warnf("%s: data chunk is truncated, playing the %d bytes present", path, len(p.pcm))
	}

	return nil
}

func load(path string, mode wavplay.LoadMode) (*wavplay.File, renderer, error) {
	file, err := wavplay.Open(path, mode)
	if err != nil {
		return nil, nil, err
	}

	err = file.Format.Validate()
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	r, err := newRenderer(file.Format.BitsPerSample)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	return file, r, nil
}

func (p *Player) abort() {
	if p.state.CompareAndSwap(int32(StateLoading), int32(StateAborted)) {
		p.signalDone()
	}
}

func (p *Player) signalDone() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.done)
	}
}

// Pause stops output without moving the cursor. Pausing a paused player is
// a no-op.
func (p *Player) Pause() error {
	return p.toggle(StatePlaying, StatePaused)
}

// Resume continues output from the cursor. Resuming a playing player is a
// no-op.
func (p *Player) Resume() error {
	return p.toggle(StatePaused, StatePlaying)
}

func (p *Player) toggle(from, to State) error {
	if p.state.CompareAndSwap(int32(from), int32(to)) {
		p.log.Debugf("Transport %s -> %s at byte %d", from, to, p.position.Load())
		return nil
	}

	if cur := p.State(); cur != to {
		return fmt.Errorf("%w: %s while %s", ErrInvalidStateTransition, to, cur)
	}

	return nil
}

// Stop ends the session. From Playing or Paused the player finishes; a
// Stop that lands while Start is still loading aborts it. The render context
// notices on its next pull and produces nothing further. Stopping an ended
// session is a no-op.
func (p *Player) Stop() error {
	for {
		cur := p.State()

		var next State

		switch cur {
		case StateIdle:
			return fmt.Errorf("%w: stop while %s", ErrInvalidStateTransition, cur)
		case StateFinished, StateAborted:
			return nil
		case StateLoading:
			next = StateAborted
		default:
			next = StateFinished
		}

		if p.state.CompareAndSwap(int32(cur), int32(next)) {
			p.log.Debugf("Stopped while %s", cur)
			p.signalDone()

			return nil
		}
	}
}

// SetVolume sets the linear output multiplier for following pulls.
func (p *Player) SetVolume(v float64) error {
	err := validateVolume(v)
	if err != nil {
		return err
	}

	p.volume.Store(math.Float64bits(v))

	return nil
}

// Volume returns the linear output multiplier.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// SetFadeTimings sets the fade-in and fade-out lengths, millisecond precision.
func (p *Player) SetFadeTimings(in, out time.Duration) error {
	err := validateFades(in, out)
	if err != nil {
		return err
	}

	p.fadeInMs.Store(int32(in / time.Millisecond))
	p.fadeOutMs.Store(int32(out / time.Millisecond))

	return nil
}

// FadeTimings returns the fade-in and fade-out lengths.
func (p *Player) FadeTimings() (in, out time.Duration) {
	return time.Duration(p.fadeInMs.Load()) * time.Millisecond,
		time.Duration(p.fadeOutMs.Load()) * time.Millisecond
}

// SetSpeedFactor sets how many source frames each rendered frame consumes.
func (p *Player) SetSpeedFactor(f float64) error {
	err := validateSpeed(f)
	if err != nil {
		return err
	}

	p.speed.Store(math.Float64bits(f))

	return nil
}

// SpeedFactor returns the current speed factor.
func (p *Player) SpeedFactor() float64 {
	return math.Float64frombits(p.speed.Load())
}

// Format returns the format of the loaded asset. It is the zero Format until
// Start has succeeded.
func (p *Player) Format() wavplay.Format {
	switch p.State() {
	case StatePlaying, StatePaused, StateFinished:
		if p.r != nil {
			return p.format
		}
	}

	return wavplay.Format{}
}

// Position returns the byte offset of the next payload byte to render.
func (p *Player) Position() int64 {
	return p.position.Load()
}

// Elapsed returns Position as time at the asset's native rate.
func (p *Player) Elapsed() time.Duration {
	f := p.Format()
	if f.SampleRate == 0 || f.FrameStride() == 0 {
		return 0
	}

	frames := p.Position() / int64(f.FrameStride())

	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Underruns returns how many pulls found no host buffer.
func (p *Player) Underruns() uint64 {
	return p.underruns.Load()
}

// Done is closed once the session has ended, by Stop, end of stream or a
// failed Start.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the session ends or ctx is cancelled.
func (p *Player) Wait(ctx context.Context) error {
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if n := p.Underruns(); n > 0 {
		p.log.Warnf("%v on %d pulls", ErrBufferUnavailable, n)
	}

	p.log.Debugf("Session %s at byte %d of %d", p.State(), p.Position(), len(p.pcm))

	return nil
}

// Close ends the session if it is still running and releases the payload.
// Call it only after the host has been disconnected so that Process can no
// longer run. Close is idempotent.
func (p *Player) Close() error {
	if p.state.CompareAndSwap(int32(StateIdle), int32(StateAborted)) {
		p.signalDone()
	} else {
		_ = p.Stop()
	}

	p.ctrl.Lock()
	defer p.ctrl.Unlock()

	p.releaseFile()

	return p.closeErr
}

func (p *Player) releaseFile() {
	if p.file == nil {
		return
	}

	err := p.file.Close()
	if err != nil {
		p.closeErr = err
		p.log.Errorf("Failed to release payload: %v", err)
	} else {
		p.log.Tracef("Released %s payload", p.file.Payload.Mode())
	}

	p.file = nil
	p.pcm = nil
}

// Process is the render pull. The host calls it from its real-time context
// whenever it wants audio. It never blocks or allocates: while the session
// is not playing it returns without touching the host, otherwise it fills
// one dequeued buffer with as many whole frames as fit, applying the fade
// envelope and volume, and on end of stream finishes the session and asks
// the host to quit.
func (p *Player) Process(h Host) {
	switch p.State() {
	case StatePlaying:
	case StateFinished, StateAborted:
		h.Quit()
		return
	default:
		return
	}

	b := h.DequeueBuffer()
	if b == nil {
		p.underruns.Add(1)
		return
	}

	if b.Data == nil {
		p.underruns.Add(1)
		b.Offset, b.Stride, b.Size = 0, p.stride, 0
		h.QueueBuffer(b)

		return
	}

	gain := p.gain()
	speed := math.Float64frombits(p.speed.Load())

	frames, eos := p.r.render(b.Data, p.pcm, &p.cur, p.channels, speed, gain)
	p.position.Store(int64(p.cur.off))

	b.Offset = 0
	b.Stride = p.stride
	b.Size = frames * p.stride
	h.QueueBuffer(b)

	if eos {
		if p.state.CompareAndSwap(int32(StatePlaying), int32(StateFinished)) {
			p.signalDone()
		}

		h.Quit()
	}
}

// gain is the envelope at the cursor times the volume, held for one pull.
func (p *Player) gain() float64 {
	rate := p.format.SampleRate
	pos := int64(p.cur.off / p.stride)
	env := Gain(pos, p.totalFrames,
		msToFrames(p.fadeInMs.Load(), rate),
		msToFrames(p.fadeOutMs.Load(), rate))

	return env * math.Float64frombits(p.volume.Load())
}
