package wavplay

import "time"

// File is a decoded container: the format descriptor plus the sample payload.
// It owns the payload until Close.
type File struct {
	Format  Format
	Payload *Payload
	// DataOffset is the file position of the first sample byte.
	DataOffset int64
	// Truncated is set when the data chunk declared more bytes than the
	// input holds; the payload then covers only the bytes present.
	Truncated bool
	// Chunks lists every sub-chunk walked, in file order.
	Chunks []ChunkInfo
}

// Frames returns the number of whole frames in the payload.
func (f *File) Frames() int64 {
	if f == nil {
		return 0
	}

	stride := f.Format.FrameStride()
	if stride == 0 {
		return 0
	}

	return int64(f.Payload.Len() / stride)
}

// Duration returns the playing time of the payload at its native rate.
func (f *File) Duration() time.Duration {
	if f == nil {
		return 0
	}

	return framesDuration(f.Frames(), int(f.Format.SampleRate))
}

// UnknownChunks returns the chunks that were skipped without interpretation.
func (f *File) UnknownChunks() []ChunkInfo {
	if f == nil {
		return nil
	}

	var out []ChunkInfo

	for _, c := range f.Chunks {
		if !c.Handled {
			out = append(out, c)
		}
	}

	return out
}

// Close releases the payload. It is safe to call more than once.
func (f *File) Close() error {
	if f == nil {
		return nil
	}

	return f.Payload.Release()
}
