// ABOUTME: Remote service error type
// ABOUTME: Distinguishes transient failures from permanent ones for retry
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyResponse is returned when a response carries no usable content
	ErrEmptyResponse = errors.New("response contained no content")

	// ErrNoAudio is returned when a speech response has no inline audio
	ErrNoAudio = errors.New("no audio data received")
)

// RemoteServiceError reports a failed chat or speech round trip.
// StatusCode is zero when no HTTP response was received.
type RemoteServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying may succeed: transport errors other
// than caller cancellation, rate limiting and server errors
func (e *RemoteServiceError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return !errors.Is(e.Err, context.Canceled)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsRemoteServiceError reports whether err is a RemoteServiceError
func IsRemoteServiceError(err error) bool {
	var re *RemoteServiceError
	return errors.As(err, &re)
}
