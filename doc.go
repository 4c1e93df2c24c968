// Package wavplay parses RIFF/WAVE containers holding linear PCM and exposes the
// raw sample payload for playback.
//
// The parser walks sub-chunks in any order, decodes the fmt record, skips
// chunks it does not know, and acquires the data chunk either as a heap copy
// or as a read-only memory mapping of the source file:
//
//	f, err := wavplay.Open("kick.wav", wavplay.LoadAuto)
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	stride := f.Format.FrameStride()
//	pcm := f.Payload.Bytes()
//
// The payload is read-only for its whole lifetime and is released exactly
// once by File.Close or Payload.Release, whichever runs first.
package wavplay
