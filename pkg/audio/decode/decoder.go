// ABOUTME: Decoder interfaces and error taxonomy
// ABOUTME: Container decoders plug in here; the PCM fallback stays separate
package decode

import (
	"errors"
	"fmt"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

var (
	// ErrEmptyPayload is returned when there are no samples to decode
	ErrEmptyPayload = errors.New("empty audio payload")

	// ErrTruncated is returned when a raw PCM stream ends mid-sample
	ErrTruncated = errors.New("truncated PCM stream")

	// ErrUnrecognizedFormat tells the caller a container decoder matched a weak
	// signature but the bytes are not that format; decoding moves on.
	ErrUnrecognizedFormat = errors.New("unrecognized container format")
)

// ContainerDecoder decodes a self-describing audio file
type ContainerDecoder interface {
	// Name identifies the container ("wav", "mp3", ...)
	Name() string

	// Sniff reports whether data starts with this container's signature
	Sniff(data []byte) bool

	// Decode converts the whole file into a buffer
	Decode(data []byte) (*audio.Buffer, error)
}

// DecodeError reports a payload that could not be turned into audio
type DecodeError struct {
	Stage string // "base64", "pcm" or a container name
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode audio (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is (or wraps) a DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
