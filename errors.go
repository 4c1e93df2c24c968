package wavplay

import (
	"errors"
	"fmt"
)

var (
	// ErrContainerFormat indicates a bad RIFF/WAVE envelope or a missing core chunk.
	ErrContainerFormat = errors.New("invalid wav container")
	// ErrTruncatedFile is returned when the file ends before the container header.
	ErrTruncatedFile = errors.New("truncated wav file")
	// ErrUnsupportedSampleWidth is returned for bit depths other than 8, 16, 24 and 32.
	ErrUnsupportedSampleWidth = errors.New("unsupported sample width")
	// ErrUnsupportedEncoding is returned for fmt records that do not describe integer PCM.
	ErrUnsupportedEncoding = errors.New("unsupported wav encoding")
	// ErrResourceAcquisition is returned when the payload can be neither
	// allocated nor mapped.
	ErrResourceAcquisition = errors.New("could not acquire sample payload")
	// ErrPCMChunkNotFound indicates a container without a data chunk.
	ErrPCMChunkNotFound = fmt.Errorf("%w: PCM chunk not found", ErrContainerFormat)

	errFmtChunkNotFound = fmt.Errorf("%w: fmt chunk not found", ErrContainerFormat)
	errMapUnsupported   = errors.New("memory mapping not supported on this platform")
	errNotMappable      = errors.New("reader is not backed by a file")
)
