package wavplay

import (
	"fmt"
	"sync/atomic"
)

// PayloadMode tells how the sample bytes of a Payload are held.
type PayloadMode uint8

const (
	// PayloadOwned payloads live in a heap buffer owned by the Payload.
	PayloadOwned PayloadMode = iota + 1
	// PayloadMapped payloads are a window into a read-only mapping of the
	// source file.
	PayloadMapped
)

func (m PayloadMode) String() string {
	switch m {
	case PayloadOwned:
		return "owned"
	case PayloadMapped:
		return "mapped"
	default:
		return fmt.Sprintf("PayloadMode(%d)", uint8(m))
	}
}

// Payload is the raw PCM content of a data chunk. Its length is fixed at
// parse time and its bytes are never written.
type Payload struct {
	mode PayloadMode
	data []byte
	size int
	// region is the whole mapping for PayloadMapped; data starts at the
	// data chunk offset inside it.
	region   []byte
	released atomic.Bool
}

func newOwnedPayload(data []byte) *Payload {
	return &Payload{mode: PayloadOwned, data: data, size: len(data)}
}

func newMappedPayload(region []byte, offset int64, size int) *Payload {
	return &Payload{
		mode:   PayloadMapped,
		region: region,
		size:   size,
		data:   region[offset : offset+int64(size) : offset+int64(size)],
	}
}

// Mode returns how the payload is held.
func (p *Payload) Mode() PayloadMode {
	if p == nil {
		return 0
	}

	return p.mode
}

// Bytes returns the sample bytes. The slice must not be modified and must not
// be used after Release.
func (p *Payload) Bytes() []byte {
	if p == nil || p.released.Load() {
		return nil
	}

	return p.data
}

// Len returns the payload size in bytes as parsed. It is unchanged by Release.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}

	return p.size
}

// Released reports whether Release has run.
func (p *Payload) Released() bool {
	return p == nil || p.released.Load()
}

// Release frees the heap buffer or unmaps the file region. Only the first
// call does any work; later calls return nil.
func (p *Payload) Release() error {
	if p == nil || !p.released.CompareAndSwap(false, true) {
		return nil
	}

	region := p.region
	p.data, p.region = nil, nil

	if p.mode != PayloadMapped {
		return nil
	}

	err := unmapRegion(region)
	if err != nil {
		return fmt.Errorf("failed to unmap payload: %w", err)
	}

	return nil
}
