// Package device connects a playback.Player to a real audio output. Each
// backend turns its own pull callback into a render pull on the player.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/wavplay/playback"
	"github.com/decred/slog"
)

// Backend names an audio output implementation.
type Backend string

const (
	BackendOto  Backend = "oto"
	BackendBeep Backend = "beep"
)

var (
	// ErrUnknownBackend is returned for backend names other than oto and beep.
	ErrUnknownBackend = errors.New("unknown audio backend")
	// ErrNotStarted is returned when the player has no loaded format yet.
	ErrNotStarted = errors.New("player has not been started")
)

// ParseBackend maps a command-line name to a Backend. The empty string
// selects oto.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "oto":
		return BackendOto, nil
	case "beep":
		return BackendBeep, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Output is a running connection between a player and a device.
type Output interface {
	// Close disconnects the player. Once it returns, the player's render
	// pull is never called again and the player may be closed.
	Close() error
}

// Open connects a started player to the backend's device. The device runs at
// the asset's native rate and channel count.
func Open(backend Backend, p *playback.Player, log slog.Logger) (Output, error) {
	if log == nil {
		log = slog.Disabled
	}

	f := p.Format()
	if f.SampleRate == 0 {
		return nil, ErrNotStarted
	}

	switch backend {
	case BackendOto:
		return openOto(p, log)
	case BackendBeep:
		return openBeep(p, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
