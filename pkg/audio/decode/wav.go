// ABOUTME: WAV container decoder
// ABOUTME: Decodes RIFF/WAVE PCM files via go-audio/wav
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/wav"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	// WAVEFORMATEXTENSIBLE: the subformat GUID starts 24 bytes into the fmt
	// body and its first two bytes carry the format code
	wavSubFormatOffset = 24
)

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a WAV decoder
func NewWAV() *WAVDecoder {
	return &WAVDecoder{}
}

// Name returns "wav"
func (d *WAVDecoder) Name() string {
	return "wav"
}

// Sniff checks the RIFF/WAVE header
func (d *WAVDecoder) Sniff(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// Decode converts WAV bytes to a float buffer
func (d *WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	if tag, sub, ok := wavFormatTags(data); ok && tag == wavFormatExtensible && sub != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV extensible subformat: %d (supported: PCM)", sub)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("unsupported WAV audio format: %d (supported: PCM)", dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24, 32)", bitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV samples: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	frames := len(pcm.Data) / channels
	if frames == 0 {
		return nil, ErrEmptyPayload
	}

	buf := audio.NewBuffer(audio.Format{
		Codec:      "wav",
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, frames)

	for i := 0; i < frames*channels; i++ {
		buf.Data[i%channels][i/channels] = audio.IntToFloat(pcm.Data[i], bitDepth)
	}

	return buf, nil
}

// wavFormatTags walks the RIFF chunks to the fmt chunk and returns its format
// tag and, for extensible files, the subformat code (zero when the body is too
// short to hold one). ok is false when no fmt chunk is found.
func wavFormatTags(data []byte) (tag, sub uint16, ok bool) {
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if size < len(body) {
			body = body[:size]
		}

		if id == "fmt " {
			if len(body) < 2 {
				return 0, 0, false
			}
			tag = binary.LittleEndian.Uint16(body)
			if tag == wavFormatExtensible && len(body) >= wavSubFormatOffset+2 {
				sub = binary.LittleEndian.Uint16(body[wavSubFormatOffset:])
			}
			return tag, sub, true
		}

		// Chunks are word aligned
		pos += 8 + size + size%2
	}
	return 0, 0, false
}
