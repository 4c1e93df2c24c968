package playback

import (
	"encoding/binary"

	"github.com/go-audio/audio"
)

// sampleCodec loads one payload sample as a signed value and stores a
// rendered value into the destination at the same width. Stores truncate to
// the width; nothing is clipped.
type sampleCodec interface {
	width() int
	load(b []byte) int64
	store(b []byte, v int64)
}

// pcm8 re-centres unsigned WAV bytes around zero and renders signed 8-bit.
type pcm8 struct{}

func (pcm8) width() int { return 1 }

func (pcm8) load(b []byte) int64 { return int64(b[0]) - 128 }

func (pcm8) store(b []byte, v int64) { b[0] = byte(int8(v)) }

type pcm16 struct{}

func (pcm16) width() int { return 2 }

func (pcm16) load(b []byte) int64 {
	return int64(int16(binary.LittleEndian.Uint16(b)))
}

func (pcm16) store(b []byte, v int64) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}

// pcm24 samples are three packed little-endian bytes with no padding.
type pcm24 struct{}

func (pcm24) width() int { return 3 }

func (pcm24) load(b []byte) int64 {
	return int64(audio.Int24LETo32(b[:3]))
}

func (pcm24) store(b []byte, v int64) {
	_ = b[2]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

type pcm32 struct{}

func (pcm32) width() int { return 4 }

func (pcm32) load(b []byte) int64 {
	return int64(int32(binary.LittleEndian.Uint32(b)))
}

func (pcm32) store(b []byte, v int64) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

// OutputSample reads one rendered sample of the given byte width back as a
// signed integer. Rendered 8-bit output is signed, unlike WAV payloads.
func OutputSample(b []byte, width int) int32 {
	switch width {
	case 1:
		return int32(int8(b[0]))
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		return audio.Int24LETo32(b[:3])
	case 4:
		return int32(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}

// OutputScale is the magnitude of full scale for rendered samples of width bytes.
func OutputScale(width int) float64 {
	switch width {
	case 1:
		return 128
	case 2:
		return 32768
	case 3:
		return 8388608
	case 4:
		return 2147483648
	default:
		return 1
	}
}
