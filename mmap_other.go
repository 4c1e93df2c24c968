//go:build !unix

package wavplay

import (
	"fmt"
	"os"
)

func mapRegion(_ *os.File, _ int64) ([]byte, error) {
	return nil, fmt.Errorf("%w: %w", ErrResourceAcquisition, errMapUnsupported)
}

func unmapRegion(_ []byte) error {
	return nil
}
