package playback

// Buffer is one destination buffer owned by the host. Data spans its whole
// writable capacity; the renderer sets Offset, Stride and Size before handing
// it back with QueueBuffer.
type Buffer struct {
	Data   []byte
	Offset int
	Stride int
	Size   int
}

// Host is the audio server side of a render pull. All three methods are
// called from the render context and must not block.
type Host interface {
	// DequeueBuffer returns a writable buffer, or nil when none is free this
	// cycle.
	DequeueBuffer() *Buffer
	// QueueBuffer commits a buffer previously returned by DequeueBuffer.
	// Size may be zero when nothing was produced.
	QueueBuffer(b *Buffer)
	// Quit asks the host to terminate the stream. It may be called more than
	// once.
	Quit()
}
