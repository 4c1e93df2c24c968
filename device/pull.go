package device

import (
	"sync/atomic"

	"github.com/cwbudde/wavplay/playback"
)

// pull is the playback.Host side of a device callback. It owns one
// preallocated buffer and runs a single render pull per fill.
type pull struct {
	p        *playback.Player
	width    int
	channels int
	stride   int
	scale    float64

	scratch   []byte
	buf       playback.Buffer
	committed *playback.Buffer
	quit      atomic.Bool
}

func newPull(p *playback.Player, frames int) *pull {
	f := p.Format()
	h := &pull{
		p:        p,
		width:    f.BytesPerSample(),
		channels: int(f.NumChannels),
		stride:   f.FrameStride(),
	}
	h.scale = playback.OutputScale(h.width)
	h.scratch = make([]byte, frames*h.stride)

	return h
}

func (h *pull) DequeueBuffer() *playback.Buffer {
	return &h.buf
}

func (h *pull) QueueBuffer(b *playback.Buffer) {
	h.committed = b
}

func (h *pull) Quit() {
	h.quit.Store(true)
}

// fill asks the player for up to n frames and returns how many it rendered.
// The scratch buffer is sized for the device's buffer up front; it only
// grows if a host asks for more than that.
func (h *pull) fill(n int) int {
	if need := n * h.stride; need > len(h.scratch) {
		h.scratch = make([]byte, need)
	}

	h.buf = playback.Buffer{Data: h.scratch[:n*h.stride]}
	h.committed = nil
	h.p.Process(h)

	if h.committed == nil {
		return 0
	}

	return h.committed.Size / h.stride
}

// sample returns channel ch of a rendered frame in [-1, 1).
func (h *pull) sample(frame, ch int) float64 {
	off := h.buf.Offset + frame*h.stride + ch*h.width
	return float64(playback.OutputSample(h.scratch[off:], h.width)) / h.scale
}

func (h *pull) done() bool {
	return h.quit.Load()
}
