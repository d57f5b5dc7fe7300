// ABOUTME: Audio graph abstractions consumed by the controller
// ABOUTME: Processing context, single-use playback node and context states
package playback

import (
	"context"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// ContextState is the power state of a processing context
type ContextState int

const (
	ContextSuspended ContextState = iota
	ContextRunning
	ContextClosed
)

func (s ContextState) String() string {
	switch s {
	case ContextSuspended:
		return "suspended"
	case ContextRunning:
		return "running"
	case ContextClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is an audio graph execution environment with its own clock
type Context interface {
	// CurrentTime returns the context clock in seconds
	CurrentTime() float64

	State() ContextState

	// Resume brings a suspended context to running. It blocks until the
	// output is ready or ctx is done.
	Resume(ctx context.Context) error

	// NewSource binds a fresh single-use node to buf
	NewSource(buf *audio.Buffer) (Node, error)

	Close() error
}

// Node emits one buffer. It can be started once and stopped once.
type Node interface {
	// Start begins emission offset seconds into the buffer.
	// A second call returns ErrNodeUsed.
	Start(offset float64) error

	// Stop halts emission. A second call returns ErrNodeStopped.
	Stop() error
}

// ContextFactory creates a processing context at the given sample rate
type ContextFactory func(sampleRate int) (Context, error)
