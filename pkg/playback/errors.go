// ABOUTME: Playback error types
// ABOUTME: Sentinels for node and context misuse plus the unavailable wrapper
package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrPlaybackUnavailable matches every UnavailableError via errors.Is
	ErrPlaybackUnavailable = errors.New("playback unavailable")

	// ErrNodeUsed is returned when a node is started twice
	ErrNodeUsed = errors.New("playback node already started")

	// ErrNodeStopped is returned when a node is stopped twice
	ErrNodeStopped = errors.New("playback node already stopped")

	// ErrContextClosed is returned by a processing context after Close
	ErrContextClosed = errors.New("processing context closed")

	// ErrClosed is returned by a Controller after Close
	ErrClosed = errors.New("playback controller closed")

	errNoContextFactory = errors.New("no processing context factory configured")
)

// UnavailableError reports that audio cannot be played at all.
// Callers fall back to a static duration display.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("playback unavailable (%s): %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPlaybackUnavailable) match
func (e *UnavailableError) Is(target error) bool {
	return target == ErrPlaybackUnavailable
}

func unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}
