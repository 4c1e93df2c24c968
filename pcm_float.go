package wavplay

import (
	"encoding/binary"

	"github.com/go-audio/audio"
)

const (
	scalePCMInt8    = 128.0
	scalePCMInt16   = 32768.0
	scalePCMInt24   = 8388608.0
	scalePCMInt32   = 2147483648.0
	floatPCM8Center = 128.0
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// DecodeSample reads one little-endian sample of the given bit depth from b.
// Note that 8bit samples are unsigned, all other values are signed.
func DecodeSample(b []byte, bitsPerSample int) int {
	switch bitsPerSample {
	case 8:
		return int(b[0])
	case 16:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		return int(audio.Int24LETo32(b[:3]))
	case 32:
		return int(int32(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

// NormalizeSample maps a sample returned by DecodeSample into [-1, 1].
func NormalizeSample(sample int, bitsPerSample int) float32 {
	var v float32

	switch bitsPerSample {
	case 8:
		v = float32((float64(sample) - floatPCM8Center) / scalePCMInt8)
	case 16:
		v = float32(float64(sample) / scalePCMInt16)
	case 24:
		v = float32(float64(sample) / scalePCMInt24)
	case 32:
		v = float32(float64(sample) / scalePCMInt32)
	}

	return clampFloat32(v, -1, 1)
}

// ChannelSamples returns up to limit normalized samples of one channel,
// starting at the first frame. A limit of zero or less reads every frame.
func (f *File) ChannelSamples(channel int, limit int) []float64 {
	if f == nil || channel < 0 || channel >= int(f.Format.NumChannels) {
		return nil
	}

	frames := int(f.Frames())
	if limit > 0 && limit < frames {
		frames = limit
	}

	stride := f.Format.FrameStride()
	width := f.Format.BytesPerSample()
	bits := int(f.Format.BitsPerSample)
	pcm := f.Payload.Bytes()

	out := make([]float64, frames)
	for i := range out {
		off := i*stride + channel*width
		out[i] = float64(NormalizeSample(DecodeSample(pcm[off:off+width], bits), bits))
	}

	return out
}
