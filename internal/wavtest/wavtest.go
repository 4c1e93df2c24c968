// Package wavtest builds RIFF/WAVE byte streams for tests.
package wavtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Chunk is one sub-chunk: a four character tag and its body.
type Chunk struct {
	ID   string
	Data []byte
}

// Fmt returns a 16-byte PCM fmt chunk.
func Fmt(channels, sampleRate, bitsPerSample int) Chunk {
	return Chunk{ID: "fmt ", Data: fmtRecord(1, channels, sampleRate, bitsPerSample)}
}

// FmtWithExtension returns a fmt chunk carrying a cbSize field and ext
// trailing bytes after the fixed record.
func FmtWithExtension(channels, sampleRate, bitsPerSample int, ext []byte) Chunk {
	rec := fmtRecord(1, channels, sampleRate, bitsPerSample)
	rec = binary.LittleEndian.AppendUint16(rec, uint16(len(ext)))
	rec = append(rec, ext...)

	return Chunk{ID: "fmt ", Data: rec}
}

// FmtTag returns a fmt chunk with an arbitrary format tag.
func FmtTag(tag, channels, sampleRate, bitsPerSample int) Chunk {
	return Chunk{ID: "fmt ", Data: fmtRecord(tag, channels, sampleRate, bitsPerSample)}
}

// Data returns a data chunk.
func Data(pcm []byte) Chunk {
	return Chunk{ID: "data", Data: pcm}
}

func fmtRecord(tag, channels, sampleRate, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	rec := make([]byte, 16)
	binary.LittleEndian.PutUint16(rec[0:2], uint16(tag))
	binary.LittleEndian.PutUint16(rec[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(rec[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(rec[8:12], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(rec[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(rec[14:16], uint16(bitsPerSample))

	return rec
}

// Build assembles a RIFF/WAVE stream from chunks, in order, with odd-sized
// bodies padded to a word boundary and the RIFF size filled in.
func Build(chunks ...Chunk) []byte {
	var b bytes.Buffer

	b.WriteString("RIFF")
	b.Write([]byte{0, 0, 0, 0})
	b.WriteString("WAVE")

	for _, ch := range chunks {
		id := []byte(ch.ID + "    ")[:4]
		b.Write(id)
		_ = binary.Write(&b, binary.LittleEndian, uint32(len(ch.Data)))
		b.Write(ch.Data)

		if len(ch.Data)%2 == 1 {
			b.WriteByte(0)
		}
	}

	out := b.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	return out
}

// PCM returns a canonical fmt+data container.
func PCM(channels, sampleRate, bitsPerSample int, pcm []byte) []byte {
	return Build(Fmt(channels, sampleRate, bitsPerSample), Data(pcm))
}

// WriteFile stores data in a temporary .wav file and returns its path.
func WriteFile(tb testing.TB, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "fixture.wav")

	err := os.WriteFile(path, data, 0o600)
	if err != nil {
		tb.Fatalf("write fixture: %v", err)
	}

	return path
}

// Int8 packs unsigned 8-bit samples as stored in WAV files.
func Int8(samples ...uint8) []byte {
	return append([]byte(nil), samples...)
}

// Int16LE packs signed 16-bit samples.
func Int16LE(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}

	return out
}

// Int24LE packs signed 24-bit samples into three bytes each.
func Int24LE(samples ...int32) []byte {
	out := make([]byte, 0, len(samples)*3)
	for _, s := range samples {
		out = append(out, byte(s), byte(s>>8), byte(s>>16))
	}

	return out
}

// Int32LE packs signed 32-bit samples.
func Int32LE(samples ...int32) []byte {
	out := make([]byte, 0, len(samples)*4)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint32(out, uint32(s))
	}

	return out
}
