// ABOUTME: WAV file encoder
// ABOUTME: Writes float buffers as 16-bit PCM WAV via go-audio/wav
package encode

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// WriteWAV encodes the buffer as a 16-bit PCM WAV stream
func WriteWAV(w io.WriteSeeker, buf *audio.Buffer) error {
	if buf == nil || buf.Frames() == 0 {
		return fmt.Errorf("nothing to encode")
	}

	channels := buf.NumberOfChannels()
	frames := buf.Frames()

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			data[i*channels+ch] = int(audio.FloatToInt16(buf.Data[ch][i]))
		}
	}

	enc := wav.NewEncoder(w, buf.SampleRate(), wavBitDepth, channels, wavFormatPCM)
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  buf.SampleRate(),
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

// SaveWAV writes the buffer to a WAV file at path
func SaveWAV(path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	if err := WriteWAV(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
