// This tool renders a wav file through the playback engine, with fades,
// volume and speed applied, and writes the result as a new wav file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cwbudde/wavplay"
	"github.com/cwbudde/wavplay/playback"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errMissingInput = errors.New("missing -in or -out")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("wavrender", flag.ContinueOnError)

	in := flagSet.String("in", "", "wav file to render")
	out := flagSet.String("out", "", "filename to write to")
	volume := flagSet.Float64("volume", 1, "linear output volume")
	fadeIn := flagSet.Duration("fade-in", 0, "fade-in length")
	fadeOut := flagSet.Duration("fade-out", 0, "fade-out length")
	speed := flagSet.Float64("speed", 1, "source frames consumed per output frame")
	bufferFrames := flagSet.Int("buffer", 1024, "frames per render pull")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *in == "" || *out == "" {
		return errMissingInput
	}

	if *bufferFrames <= 0 {
		return fmt.Errorf("invalid buffer size %d", *bufferFrames)
	}

	opts := playback.DefaultOptions()
	opts.Volume = *volume
	opts.FadeIn = *fadeIn
	opts.FadeOut = *fadeOut
	opts.Speed = *speed
	opts.LoadMode = wavplay.LoadCopy

	p := playback.New(nil)
	defer p.Close()

	err = p.Start(*in, opts)
	if err != nil {
		return err
	}

	f := p.Format()

	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *out, err)
	}
	defer file.Close()

	enc := wav.NewEncoder(file, int(f.SampleRate), int(f.BitsPerSample), int(f.NumChannels), 1)
	h := newOfflineHost(f, *bufferFrames)

	frames, err := h.drain(p, enc)
	if err != nil {
		return err
	}

	log.Printf("rendered %d frames of %s to %s", frames, f, *out)

	return enc.Close()
}

// offlineHost is a playback.Host that hands out one buffer per pull and
// collects whatever the player commits.
type offlineHost struct {
	width int
	buf   playback.Buffer
	ints  *audio.IntBuffer
	done  bool
}

func newOfflineHost(f wavplay.Format, frames int) *offlineHost {
	return &offlineHost{
		width: f.BytesPerSample(),
		buf:   playback.Buffer{Data: make([]byte, frames*f.FrameStride())},
		ints: &audio.IntBuffer{
			Format:         f.AudioFormat(),
			SourceBitDepth: int(f.BitsPerSample),
			Data:           make([]int, 0, frames*int(f.NumChannels)),
		},
	}
}

func (h *offlineHost) DequeueBuffer() *playback.Buffer {
	return &h.buf
}

func (h *offlineHost) QueueBuffer(*playback.Buffer) {}

func (h *offlineHost) Quit() {
	h.done = true
}

// drain pulls until the player ends the stream and writes every committed
// frame to enc. It returns the number of frames written.
func (h *offlineHost) drain(p *playback.Player, enc *wav.Encoder) (int, error) {
	total := 0

	for !h.done {
		h.buf.Offset, h.buf.Size = 0, 0
		p.Process(h)

		committed := h.buf.Data[h.buf.Offset : h.buf.Offset+h.buf.Size]
		if len(committed) == 0 {
			continue
		}

		h.ints.Data = h.ints.Data[:0]

		for off := 0; off+h.width <= len(committed); off += h.width {
			v := int(playback.OutputSample(committed[off:], h.width))
			if h.width == 1 {
				// wav stores 8-bit samples unsigned.
				v += 128
			}

			h.ints.Data = append(h.ints.Data, v)
		}

		err := enc.Write(h.ints)
		if err != nil {
			return total, err
		}

		total += h.buf.Size / h.buf.Stride
	}

	return total, nil
}
