package playback

import (
	"fmt"

	"github.com/cwbudde/wavplay"
)

// cursor is the render-owned read position. off is a byte offset into the
// payload, always a multiple of the sample width; frac carries the sub-frame
// remainder of non-unity speed factors.
type cursor struct {
	off  int
	frac float64
}

// advance moves the cursor forward by speed frames, never past limit.
func (c *cursor) advance(stride int, speed float64, limit int) {
	c.frac += speed

	if c.frac >= float64((limit-c.off)/stride+1) {
		c.off, c.frac = limit, 0
		return
	}

	whole := int(c.frac)
	c.frac -= float64(whole)
	c.off = min(c.off+whole*stride, limit)
}

// renderer converts one window of payload bytes into a destination buffer.
type renderer interface {
	sampleWidth() int
	// render fills whole frames of dst from src starting at cur and returns
	// how many frames it wrote. eos is set when src ran out before dst was
	// full; frames that would need bytes past the payload are never written.
	render(dst, src []byte, cur *cursor, channels int, speed, gain float64) (frames int, eos bool)
}

type pcmRenderer[C sampleCodec] struct {
	codec C
}

func (r pcmRenderer[C]) sampleWidth() int {
	return r.codec.width()
}

func (r pcmRenderer[C]) render(dst, src []byte, cur *cursor, channels int, speed, gain float64) (int, bool) {
	width := r.codec.width()
	stride := width * channels
	frames := len(dst) / stride
	limit := len(src) - len(src)%width

	out := 0
	for f := range frames {
		if cur.off+stride > len(src) {
			return f, true
		}

		in := cur.off
		for range channels {
			v := float64(r.codec.load(src[in:])) * gain
			r.codec.store(dst[out:], int64(v))
			in += width
			out += width
		}

		cur.advance(stride, speed, limit)
	}

	return frames, false
}

// newRenderer picks the renderer for a bit depth once per session.
func newRenderer(bitsPerSample uint16) (renderer, error) {
	switch bitsPerSample {
	case 8:
		return pcmRenderer[pcm8]{}, nil
	case 16:
		return pcmRenderer[pcm16]{}, nil
	case 24:
		return pcmRenderer[pcm24]{}, nil
	case 32:
		return pcmRenderer[pcm32]{}, nil
	default:
		return nil, fmt.Errorf("%w: %d bits", wavplay.ErrUnsupportedSampleWidth, bitsPerSample)
	}
}
