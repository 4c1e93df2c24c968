// This tool writes a PCM sine wave fixture at any supported bit depth.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const chunkFrames = 4096

var errBadParams = errors.New("invalid generator parameters")

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	rate := flagSet.Int("rate", 48000, "sample rate in hertz")
	bits := flagSet.Int("bits", 16, "bits per sample: 8, 16, 24 or 32")
	channels := flagSet.Int("channels", 1, "number of interleaved channels")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	switch {
	case *bits != 8 && *bits != 16 && *bits != 24 && *bits != 32:
		return fmt.Errorf("%w: %d bits", errBadParams, *bits)
	case *rate <= 0, *channels <= 0, *length < 0:
		return fmt.Errorf("%w: rate=%d channels=%d length=%v", errBadParams, *rate, *channels, *length)
	}

	log.Printf("generating a %f sec %d bit sine wav at %f hz", *length, *bits, *frequency)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	wavOut := wav.NewEncoder(file, *rate, *bits, *channels, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: *channels, SampleRate: *rate},
		SourceBitDepth: *bits,
		Data:           make([]int, 0, chunkFrames*(*channels)),
	}

	peak := math.Exp2(float64(*bits-1)) - 1
	numFrames := int(float64(*rate) * *length)

	for i := range numFrames {
		fv := math.Sin(float64(i) / float64(*rate) * *frequency * 2 * math.Pi)
		v := int(math.Round(fv * peak))

		if *bits == 8 {
			v += 128
		}

		for range *channels {
			buf.Data = append(buf.Data, v)
		}

		if len(buf.Data) == cap(buf.Data) {
			err := wavOut.Write(buf)
			if err != nil {
				return err
			}

			buf.Data = buf.Data[:0]
		}
	}

	if len(buf.Data) > 0 {
		err := wavOut.Write(buf)
		if err != nil {
			return err
		}
	}

	return wavOut.Close()
}
