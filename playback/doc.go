// Package playback renders a decoded WAV payload into buffers handed out by a
// real-time audio host.
//
// A Player owns the session: Start parses the file, Process is the render
// pull the host calls from its real-time thread, and the control methods
// (Pause, Resume, SetVolume, SetFadeTimings, SetSpeedFactor, Stop) may be
// called concurrently from any other goroutine. Every field shared between
// the two sides is an atomic; Process never blocks, allocates or logs.
//
// Teardown order matters: disconnect the host stream first so Process can no
// longer run, then call Player.Close to release the payload.
package playback
