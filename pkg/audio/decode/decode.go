// ABOUTME: Base64 voice-note decoder with container-then-PCM fallback
// ABOUTME: Tries registered containers first, then treats bytes as raw s16le PCM
package decode

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPCMSampleRate is the rate assumed for headerless payloads.
	// It must match the processing context rate used for playback.
	DefaultPCMSampleRate = 24000

	// DefaultPCMChannels is the channel count assumed for headerless payloads
	DefaultPCMChannels = 1
)

// Decoder turns base64 payloads into audio buffers
type Decoder struct {
	containers []ContainerDecoder
	pcm        *PCMDecoder
}

// Option configures a Decoder
type Option func(*Decoder)

// WithContainers replaces the registered container decoders
func WithContainers(containers ...ContainerDecoder) Option {
	return func(d *Decoder) {
		d.containers = containers
	}
}

// WithPCMFormat overrides the fallback sample rate and channel count
func WithPCMFormat(sampleRate, channels int) Option {
	return func(d *Decoder) {
		d.pcm = NewPCM(sampleRate, channels)
	}
}

// New creates a decoder with WAV, MP3 and FLAC support and the default PCM fallback
func New(opts ...Option) *Decoder {
	d := &Decoder{
		containers: []ContainerDecoder{NewWAV(), NewFLAC(), NewMP3()},
		pcm:        NewPCM(DefaultPCMSampleRate, DefaultPCMChannels),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = New()

// Decode converts a base64 payload using the default decoder
func Decode(payload string) (*audio.Buffer, error) {
	return defaultDecoder.Decode(payload)
}

// Decode converts a base64 payload into a buffer
func (d *Decoder) Decode(payload string) (*audio.Buffer, error) {
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, &DecodeError{Stage: "base64", Err: err}
	}
	return d.DecodeBytes(data)
}

// DecodeBytes converts raw payload bytes into a buffer
func (d *Decoder) DecodeBytes(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Stage: "payload", Err: ErrEmptyPayload}
	}

	for _, c := range d.containers {
		if !c.Sniff(data) {
			continue
		}

		buf, err := c.Decode(data)
		if err == nil {
			log.Debug().
				Str("codec", c.Name()).
				Int("sample_rate", buf.Format.SampleRate).
				Int("channels", buf.Format.Channels).
				Float64("duration", buf.Duration()).
				Msg("decoded container payload")
			return buf, nil
		}
		if errors.Is(err, ErrUnrecognizedFormat) {
			log.Debug().Str("codec", c.Name()).Err(err).Msg("container signature did not hold, trying next")
			continue
		}
		return nil, &DecodeError{Stage: c.Name(), Err: err}
	}

	buf, err := d.pcm.Decode(data)
	if err != nil {
		return nil, &DecodeError{Stage: "pcm", Err: err}
	}

	log.Debug().
		Int("samples", buf.Frames()).
		Float64("duration", buf.Duration()).
		Msg("decoded headerless PCM payload")
	return buf, nil
}

// decodeBase64 accepts padded or unpadded standard base64 with surrounding whitespace
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}

	raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if rawErr != nil {
		return nil, err
	}
	return raw, nil
}
