// ABOUTME: Headerless PCM fallback decoder
// ABOUTME: Converts signed 16-bit little-endian samples to normalized floats
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// PCMDecoder decodes raw s16le PCM with a fixed, assumed format
type PCMDecoder struct {
	sampleRate int
	channels   int
}

// NewPCM creates a PCM decoder for the given rate and channel count
func NewPCM(sampleRate, channels int) *PCMDecoder {
	if channels < 1 {
		channels = 1
	}
	return &PCMDecoder{
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Decode converts PCM bytes to a float buffer.
// Interleaved multi-channel input is split per channel.
func (d *PCMDecoder) Decode(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of 16-bit samples", ErrTruncated, len(data))
	}

	numSamples := len(data) / 2
	if numSamples%d.channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not fill %d channels", ErrTruncated, numSamples, d.channels)
	}

	buf := audio.NewBuffer(audio.Format{
		Codec:      "pcm",
		SampleRate: d.sampleRate,
		Channels:   d.channels,
		BitDepth:   16,
	}, numSamples/d.channels)

	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		buf.Data[i%d.channels][i/d.channels] = audio.Int16ToFloat(sample16)
	}

	return buf, nil
}
