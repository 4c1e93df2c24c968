package device

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/wavplay/playback"
	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"
)

const otoBufferSize = 100 * time.Millisecond

// otoFrames is the number of frames oto can ask for in one Read at rate.
func otoFrames(rate uint32) int {
	return max(1024, int(otoBufferSize*time.Duration(rate)/time.Second))
}

// otoReader is the io.Reader an oto player pulls float32 samples from.
type otoReader struct {
	h   *pull
	out int

	// mu is held across a Read so that Close can wait out the last one.
	mu     sync.Mutex
	closed bool
}

func newOtoReader(p *playback.Player) *otoReader {
	h := newPull(p, otoFrames(p.Format().SampleRate))

	return &otoReader{h: h, out: min(h.channels, 2)}
}

// Read runs one render pull. Frames the player did not commit are silent;
// once the player has asked to quit and nothing more was rendered Read
// reports io.EOF.
func (r *otoReader) Read(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, io.EOF
	}

	frameBytes := r.out * 4
	frames := len(b) / frameBytes

	if r.h.done() {
		return 0, io.EOF
	}

	got := r.h.fill(frames)
	if got == 0 && r.h.done() {
		return 0, io.EOF
	}

	for f := range frames {
		for ch := range r.out {
			v := 0.0
			if f < got {
				v = r.h.sample(f, ch)
			}

			binary.LittleEndian.PutUint32(b[(f*r.out+ch)*4:], math.Float32bits(float32(v)))
		}
	}

	return frames * frameBytes, nil
}

func (r *otoReader) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

type otoOutput struct {
	player *oto.Player
	reader *otoReader
	log    slog.Logger
}

func openOto(p *playback.Player, log slog.Logger) (Output, error) {
	f := p.Format()
	r := newOtoReader(p)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(f.SampleRate),
		ChannelCount: r.out,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open oto context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(r)
	player.Play()

	log.Debugf("oto output at %d Hz, %d channels", f.SampleRate, r.out)

	return &otoOutput{player: player, reader: r, log: log}, nil
}

func (o *otoOutput) Close() error {
	o.reader.close()

	err := o.player.Close()
	if err != nil {
		o.log.Warnf("Closing oto player: %v", err)
	}

	return err
}
