// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float buffers to interleaved 16-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// PCM16 interleaves the buffer's channels into signed 16-bit little-endian bytes
func PCM16(buf *audio.Buffer) []byte {
	channels := buf.NumberOfChannels()
	frames := buf.Frames()

	output := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			sample16 := audio.FloatToInt16(buf.Data[ch][i])
			binary.LittleEndian.PutUint16(output[(i*channels+ch)*2:], uint16(sample16))
		}
	}
	return output
}
