// This tool prints the format, chunk layout and a short signal analysis of
// the passed wav file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/cmplx"
	"os"

	"github.com/cwbudde/wavplay"
	"github.com/mjibson/go-dsp/fft"
)

const (
	missingPathMessage = "You must pass the path of the file to inspect"

	// maxWindow caps the FFT analysis window, in frames.
	maxWindow = 8192
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

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavinfo", flag.ContinueOnError)
	flagSet.SetOutput(out)

	load := flagSet.String("load", "auto", "payload acquisition: auto, copy or map")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	mode, err := wavplay.ParseLoadMode(*load)
	if err != nil {
		return err
	}

	path := flagSet.Arg(0)

	f, err := wavplay.Open(path, mode)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "Format: %s\n", f.Format)
	fmt.Fprintf(out, "Format tag: %#04x\n", f.Format.FormatTag)
	fmt.Fprintf(out, "Block align: %d\n", f.Format.BlockAlign)
	fmt.Fprintf(out, "Data offset: %d\n", f.DataOffset)
	fmt.Fprintf(out, "Payload: %d bytes (%s)\n", f.Payload.Len(), f.Payload.Mode())
	fmt.Fprintf(out, "Frames: %d\n", f.Frames())
	fmt.Fprintf(out, "Duration: %s\n", f.Duration())
	fmt.Fprintf(out, "Truncated: %t\n", f.Truncated)

	fmt.Fprintln(out, "Chunks:")

	for i, c := range f.Chunks {
		fmt.Fprintf(out, "\tchunk [%d]:\t%s\n", i, c)
	}

	err = f.Format.Validate()
	if err != nil {
		fmt.Fprintf(out, "Not playable: %v\n", err)
		return nil
	}

	for ch := range int(f.Format.NumChannels) {
		fmt.Fprintf(out, "Peak [%d]: %.4f\n", ch, peak(f.ChannelSamples(ch, 0)))
	}

	if hz, ok := dominantFrequency(f.ChannelSamples(0, maxWindow), f.Format.SampleRate); ok {
		fmt.Fprintf(out, "Dominant frequency: %.1f Hz\n", hz)
	}

	return nil
}

func peak(samples []float64) float64 {
	var p float64

	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}

	return p
}

// dominantFrequency returns the centre of the strongest non-DC bin of the
// largest power-of-two window that fits in samples.
func dominantFrequency(samples []float64, rate uint32) (float64, bool) {
	n := 1
	for n*2 <= len(samples) {
		n *= 2
	}

	if n < 4 || rate == 0 {
		return 0, false
	}

	coeffs := fft.FFTReal(samples[:n])

	best, bestMag := 0, 0.0

	for i := 1; i <= n/2; i++ {
		if mag := cmplx.Abs(coeffs[i]); mag > bestMag {
			best, bestMag = i, mag
		}
	}

	if best == 0 {
		return 0, false
	}

	return float64(best) * float64(rate) / float64(n), true
}
