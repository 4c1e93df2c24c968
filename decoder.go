package wavplay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-audio/riff"
)

// LoadMode selects how the data chunk is acquired.
type LoadMode uint8

const (
	// LoadAuto maps the data chunk when the source is a file and falls back
	// to a heap copy when mapping fails.
	LoadAuto LoadMode = iota
	// LoadCopy always reads the data chunk into a heap buffer.
	LoadCopy
	// LoadMap always maps the data chunk and fails if mapping is unavailable.
	LoadMap
)

// DefaultMaxAlloc caps heap copies of the data chunk.
const DefaultMaxAlloc = 1 << 31

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
)

var errUnknownLoadMode = errors.New("unknown load mode")

func (m LoadMode) String() string {
	switch m {
	case LoadAuto:
		return "auto"
	case LoadCopy:
		return "copy"
	case LoadMap:
		return "map"
	default:
		return fmt.Sprintf("LoadMode(%d)", uint8(m))
	}
}

// ParseLoadMode parses "auto", "copy" or "map".
func ParseLoadMode(s string) (LoadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LoadAuto, nil
	case "copy":
		return LoadCopy, nil
	case "map", "mmap":
		return LoadMap, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownLoadMode, s)
	}
}

// Decoder walks the chunks of a RIFF/WAVE stream.
type Decoder struct {
	r      io.ReadSeeker
	file   *os.File
	chunks *ChunkRegistry

	// Mode selects how the data chunk is acquired. NewDecoder defaults to
	// LoadAuto for *os.File readers and LoadCopy otherwise.
	Mode LoadMode
	// MaxAlloc is the largest data chunk copied to the heap.
	MaxAlloc int64

	size     int64
	pos      int64
	riffSize uint32

	// declared is the size field of the chunk being dispatched.
	declared uint32

	format     *Format
	payload    *Payload
	dataOffset int64
	truncated  bool
	inventory  []ChunkInfo
}

// NewDecoder creates a decoder for the passed wav reader.
// Memory mapping is only possible when r is an *os.File.
func NewDecoder(r io.ReadSeeker) *Decoder {
	d := &Decoder{
		r:        r,
		chunks:   newDefaultChunkRegistry(),
		Mode:     LoadCopy,
		MaxAlloc: DefaultMaxAlloc,
	}

	if f, ok := r.(*os.File); ok {
		d.file = f
		d.Mode = LoadAuto
	}

	return d
}

// Open decodes the container at path. The file descriptor is closed before
// returning; a mapped payload stays valid until File.Close.
func Open(path string, mode LoadMode) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := NewDecoder(f)
	dec.Mode = mode

	return dec.Decode()
}

// RegisterChunkHandler adds a handler for chunks the decoder would otherwise
// skip.
func (d *Decoder) RegisterChunkHandler(h ChunkHandler) {
	if d == nil {
		return
	}

	if d.chunks == nil {
		d.chunks = newDefaultChunkRegistry()
	}

	d.chunks.Register(h)
}

// Format returns the fmt record seen so far, if any.
func (d *Decoder) Format() *Format {
	if d == nil || d.format == nil {
		return nil
	}

	f := *d.format

	return &f
}

// Decode reads the whole container and returns the format and payload.
// On error nothing acquired during the walk is leaked.
func (d *Decoder) Decode() (*File, error) {
	if d == nil || d.r == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrContainerFormat)
	}

	file, err := d.decode()
	if err != nil {
		d.payload.Release()
		d.payload = nil

		return nil, err
	}

	return file, nil
}

func (d *Decoder) decode() (*File, error) {
	size, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to measure input: %w", err)
	}

	d.size = size

	_, err = d.r.Seek(0, io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to the start: %w", err)
	}

	err = d.readHeader()
	if err != nil {
		return nil, err
	}

	err = d.walkChunks()
	if err != nil {
		return nil, err
	}

	if d.format == nil {
		return nil, errFmtChunkNotFound
	}

	if d.payload == nil {
		return nil, ErrPCMChunkNotFound
	}

	return &File{
		Format:     *d.format,
		Payload:    d.payload,
		DataOffset: d.dataOffset,
		Truncated:  d.truncated,
		Chunks:     cloneChunkInfos(d.inventory),
	}, nil
}

func (d *Decoder) readHeader() error {
	var hdr [riffHeaderSize]byte

	_, err := io.ReadFull(d.r, hdr[:])
	if err != nil {
		return fmt.Errorf("%w: %d byte file has no RIFF header", ErrTruncatedFile, d.size)
	}

	d.pos = riffHeaderSize

	if [4]byte(hdr[0:4]) != riff.RiffID {
		return fmt.Errorf("%w: envelope tag %q", ErrContainerFormat, hdr[0:4])
	}

	if [4]byte(hdr[8:12]) != riff.WavFormatID {
		return fmt.Errorf("%w: format tag %q", ErrContainerFormat, hdr[8:12])
	}

	d.riffSize = binary.LittleEndian.Uint32(hdr[4:8])

	return nil
}

// walkChunks visits sub-chunks until the declared RIFF size is consumed, the
// input ends, or a chunk tag starting with a zero byte shows up.
func (d *Decoder) walkChunks() error {
	end := min(int64(d.riffSize)+chunkHeaderSize, d.size)

	for d.pos+chunkHeaderSize <= end {
		var hdr [chunkHeaderSize]byte

		_, err := io.ReadFull(d.r, hdr[:])
		if err != nil {
			break
		}

		id := [4]byte(hdr[0:4])
		if id[0] == 0 {
			break
		}

		size := binary.LittleEndian.Uint32(hdr[4:8])
		offset := d.pos
		d.pos += chunkHeaderSize

		d.declared = size
		available := min(int64(size), d.size-d.pos)
		chunk := &riff.Chunk{
			ID:   id,
			Size: int(available),
			R:    io.LimitReader(d.r, available),
		}

		handled, err := d.chunks.Decode(d, chunk)
		if err != nil {
			return err
		}

		d.inventory = append(d.inventory, ChunkInfo{
			ID:      id,
			Size:    size,
			Offset:  offset,
			Handled: handled,
		})

		err = d.skipTo(d.pos + int64(size) + int64(size%2))
		if err != nil {
			return err
		}
	}

	return nil
}

// skipTo moves the read position forward, stopping at the end of the input
// when a declared length overshoots it.
func (d *Decoder) skipTo(next int64) error {
	next = min(next, d.size)

	_, err := d.r.Seek(next, io.SeekStart)
	if err != nil {
		return fmt.Errorf("failed to skip to offset %d: %w", next, err)
	}

	d.pos = next

	return nil
}

func (d *Decoder) acquirePayload(ch *riff.Chunk) error {
	d.dataOffset = d.pos

	size := int64(ch.Size)
	if int64(d.declared) > size {
		d.truncated = true
	}

	if size == 0 {
		d.payload = newOwnedPayload([]byte{})
		return nil
	}

	switch d.Mode {
	case LoadMap:
		return d.mapPayload(size)
	case LoadAuto:
		if d.mapPayload(size) == nil {
			return nil
		}
	}

	return d.copyPayload(ch, size)
}

func (d *Decoder) mapPayload(size int64) error {
	if d.file == nil {
		return fmt.Errorf("%w: %w", ErrResourceAcquisition, errNotMappable)
	}

	region, err := mapRegion(d.file, d.pos+size)
	if err != nil {
		return err
	}

	d.payload = newMappedPayload(region, d.pos, int(size))

	return nil
}

func (d *Decoder) copyPayload(ch *riff.Chunk, size int64) error {
	if d.MaxAlloc > 0 && size > d.MaxAlloc {
		return fmt.Errorf("%w: %d byte data chunk exceeds %d byte limit", ErrResourceAcquisition, size, d.MaxAlloc)
	}

	data := make([]byte, size)

	_, err := io.ReadFull(ch.R, data)
	if err != nil {
		return fmt.Errorf("%w: failed to read PCM data: %w", ErrTruncatedFile, err)
	}

	d.payload = newOwnedPayload(data)

	return nil
}
