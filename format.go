package wavplay

import (
	"fmt"
	"time"

	"github.com/go-audio/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// fmtRecordSize is the size of the fixed part of a fmt chunk.
	fmtRecordSize = 16
)

// Format is the parsed fmt record of a WAV file. It is immutable once the
// container has been decoded.
type Format struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
}

// BytesPerSample returns the storage width of a single sample of one channel.
func (f Format) BytesPerSample() int {
	return int(f.BitsPerSample) / 8
}

// FrameStride returns the number of bytes in one interleaved frame.
func (f Format) FrameStride() int {
	return int(f.NumChannels) * f.BytesPerSample()
}

// ValidateSampleWidth reports whether the bit depth can be rendered.
func (f Format) ValidateSampleWidth() error {
	switch f.BitsPerSample {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d bits", ErrUnsupportedSampleWidth, f.BitsPerSample)
	}
}

// Validate checks everything playback relies on: integer PCM, at least one
// channel, a non-zero rate and a supported sample width.
func (f Format) Validate() error {
	if f.FormatTag != wavFormatPCM && f.FormatTag != wavFormatExtensible {
		return fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, f.FormatTag)
	}

	if f.NumChannels == 0 {
		return fmt.Errorf("%w: zero channels", ErrContainerFormat)
	}

	if f.SampleRate == 0 {
		return fmt.Errorf("%w: zero sample rate", ErrContainerFormat)
	}

	return f.ValidateSampleWidth()
}

// FramesIn returns how many whole frames fit in d at the format's sample rate.
func (f Format) FramesIn(d time.Duration) int64 {
	return int64(samplesNumFromDuration(d, int(f.SampleRate)))
}

// AudioFormat returns the go-audio description of the stream.
func (f Format) AudioFormat() *audio.Format {
	return &audio.Format{
		NumChannels: int(f.NumChannels),
		SampleRate:  int(f.SampleRate),
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%d ch, %d Hz, %d bit", f.NumChannels, f.SampleRate, f.BitsPerSample)
}
