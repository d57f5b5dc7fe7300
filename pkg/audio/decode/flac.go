// ABOUTME: FLAC container decoder
// ABOUTME: Decodes complete FLAC files to float buffers via mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// FLACDecoder decodes FLAC files
type FLACDecoder struct{}

// NewFLAC creates a FLAC decoder
func NewFLAC() *FLACDecoder {
	return &FLACDecoder{}
}

// Name returns "flac"
func (d *FLACDecoder) Name() string {
	return "flac"
}

// Sniff checks the fLaC stream marker
func (d *FLACDecoder) Sniff(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "fLaC"
}

// Decode converts FLAC bytes to a float buffer
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open flac stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	samples := make([][]float32, channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}

		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				samples[ch] = append(samples[ch], audio.IntToFloat(int(s), bitDepth))
			}
		}
	}

	if len(samples[0]) == 0 {
		return nil, ErrEmptyPayload
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      "flac",
			SampleRate: int(stream.Info.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Data: samples,
	}, nil
}
