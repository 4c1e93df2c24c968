package wavplay

import "fmt"

// ChunkInfo describes one sub-chunk walked while decoding a container.
type ChunkInfo struct {
	ID [4]byte
	// Size is the declared body length, excluding the 8-byte header and any
	// pad byte.
	Size uint32
	// Offset is the file position of the chunk header.
	Offset int64
	// Handled is false for chunks that were skipped without interpretation.
	Handled bool
}

func (c ChunkInfo) String() string {
	return fmt.Sprintf("%q size=%d offset=%d", c.ID[:], c.Size, c.Offset)
}

func cloneChunkInfos(chunks []ChunkInfo) []ChunkInfo {
	if len(chunks) == 0 {
		return nil
	}

	return append([]ChunkInfo(nil), chunks...)
}
