// ABOUTME: MP3 container decoder
// ABOUTME: Decodes complete MP3 files to stereo float buffers via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// go-mp3 always emits interleaved stereo 16-bit samples
const mp3Channels = 2

// MP3Decoder decodes MP3 files
type MP3Decoder struct{}

// NewMP3 creates an MP3 decoder
func NewMP3() *MP3Decoder {
	return &MP3Decoder{}
}

// Name returns "mp3"
func (d *MP3Decoder) Name() string {
	return "mp3"
}

// Sniff accepts an ID3v2 tag or a plausible MPEG audio frame header
func (d *MP3Decoder) Sniff(data []byte) bool {
	return hasID3(data) || isFrameSync(data)
}

// Decode converts MP3 bytes to a float buffer.
// Without an ID3 tag the frame sync is a weak signature, so a failed parse is
// reported as ErrUnrecognizedFormat and decoding falls through.
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, d.failure(data, fmt.Errorf("failed to create mp3 decoder: %w", err))
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, d.failure(data, fmt.Errorf("mp3 decode error: %w", err))
	}

	frames := len(raw) / (2 * mp3Channels)
	if frames == 0 {
		return nil, d.failure(data, ErrEmptyPayload)
	}

	buf := audio.NewBuffer(audio.Format{
		Codec:      "mp3",
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   16,
	}, frames)

	for i := 0; i < frames*mp3Channels; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		buf.Data[i%mp3Channels][i/mp3Channels] = audio.Int16ToFloat(sample16)
	}

	return buf, nil
}

func (d *MP3Decoder) failure(data []byte, err error) error {
	if hasID3(data) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
}

func hasID3(data []byte) bool {
	return len(data) >= 10 && string(data[0:3]) == "ID3"
}

var (
	mpeg1Layer3Bitrates = [15]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	mpeg2Layer3Bitrates = [15]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
	mpegSampleRates     = map[byte][3]int{
		0x03: {44100, 48000, 32000}, // MPEG-1
		0x02: {22050, 24000, 16000}, // MPEG-2
		0x00: {11025, 12000, 8000},  // MPEG-2.5
	}
)

// isFrameSync requires two consecutive Layer III frame headers, so a lone
// 0xFFE sync pattern in raw PCM is not mistaken for MP3.
func isFrameSync(data []byte) bool {
	n, ok := layer3FrameLength(data)
	if !ok || n+4 > len(data) {
		return false
	}
	_, ok = layer3FrameLength(data[n:])
	return ok
}

// layer3FrameLength parses an MPEG Layer III frame header and returns the frame size in bytes
func layer3FrameLength(data []byte) (int, bool) {
	if len(data) < 4 {
		return 0, false
	}
	if data[0] != 0xFF || data[1]&0xE0 != 0xE0 {
		return 0, false
	}

	version := (data[1] >> 3) & 0x03
	layer := (data[1] >> 1) & 0x03
	bitrateIdx := data[2] >> 4
	rateIdx := (data[2] >> 2) & 0x03
	padding := int((data[2] >> 1) & 0x01)

	rates, ok := mpegSampleRates[version]
	if !ok || layer != 0x01 || bitrateIdx == 0 || bitrateIdx == 0x0F || rateIdx == 0x03 {
		return 0, false
	}
	sampleRate := rates[rateIdx]

	if version == 0x03 {
		return 144000*mpeg1Layer3Bitrates[bitrateIdx]/sampleRate + padding, true
	}
	return 72000*mpeg2Layer3Bitrates[bitrateIdx]/sampleRate + padding, true
}
