package wavplay

import (
	"fmt"

	"github.com/go-audio/riff"
)

// ChunkHandler is a typed handler for RIFF/WAV sub-chunks.
// Decode reads as much of the chunk body as it needs; the decoder
// repositions past the declared size afterwards.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Decode(d *Decoder, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&fmtChunkHandler{},
			&dataChunkHandler{},
		},
	}
}

// Register appends a handler to the registry. Handlers registered later
// never shadow the built-in fmt and data handlers.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(dec *Decoder, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID) {
			err := handler.Decode(dec, chnk)
			if err != nil {
				return true, fmt.Errorf("chunk %q: %w", chnk.ID[:], err)
			}

			return true, nil
		}
	}

	return false, nil
}

type fmtChunkHandler struct{}

func (h *fmtChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == riff.FmtID
}

func (h *fmtChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	if d.format != nil {
		// only the first fmt chunk describes the data
		return nil
	}

	if ch.Size < fmtRecordSize {
		return fmt.Errorf("%w: fmt chunk of %d bytes", ErrContainerFormat, ch.Size)
	}

	var format Format

	err := ch.ReadLE(&format)
	if err != nil {
		return fmt.Errorf("%w: failed to read fmt record: %w", ErrTruncatedFile, err)
	}

	// Extension bytes past the fixed record are left unread; the decoder
	// skips the rest of the chunk.
	d.format = &format

	return nil
}

type dataChunkHandler struct{}

func (h *dataChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == riff.DataFormatID
}

func (h *dataChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	if d.payload != nil {
		return nil
	}

	return d.acquirePayload(ch)
}
