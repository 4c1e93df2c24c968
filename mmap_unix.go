//go:build unix

package wavplay

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapRegion maps the first length bytes of f read-only and private, so later
// writes to the file do not reach the mapping. The mapping has to
// start on a page boundary, so callers map from offset zero and slice.
func mapRegion(f *os.File, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: empty mapping", ErrResourceAcquisition)
	}

	region, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %w", ErrResourceAcquisition, f.Name(), err)
	}

	return region, nil
}

func unmapRegion(region []byte) error {
	if len(region) == 0 {
		return nil
	}

	return unix.Munmap(region)
}
