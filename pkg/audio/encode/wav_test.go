// ABOUTME: Unit tests for WAV and PCM encoders
// ABOUTME: Round-trips encoded output through the decoder
package encode

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
)

func testBuffer(sampleRate, channels, frames int) *audio.Buffer {
	buf := audio.NewBuffer(audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}, frames)
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			buf.Data[ch][i] = float32((i+ch)%200-100) / 128.0
		}
	}
	return buf
}

func TestPCM16(t *testing.T) {
	buf := audio.NewBuffer(audio.Format{SampleRate: 24000, Channels: 2}, 2)
	buf.Data[0] = []float32{0.5, -1.0}
	buf.Data[1] = []float32{-0.5, 0}

	out := PCM16(buf)
	if len(out) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(out))
	}

	expected := []int16{16384, -16384, -32768, 0}
	for i, want := range expected {
		got := int16(binary.LittleEndian.Uint16(out[i*2:]))
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestPCM16DecodeRoundTrip(t *testing.T) {
	buf := testBuffer(24000, 1, 480)

	decoded, err := decode.New().DecodeBytes(PCM16(buf))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Frames() != buf.Frames() {
		t.Fatalf("expected %d frames, got %d", buf.Frames(), decoded.Frames())
	}
	for i := range buf.Data[0] {
		if decoded.Data[0][i] != buf.Data[0][i] {
			t.Fatalf("sample %d: expected %v, got %v", i, buf.Data[0][i], decoded.Data[0][i])
		}
	}
}

func TestSaveWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		frames     int
	}{
		{"mono 24k", 24000, 1, 24000},
		{"stereo 44.1k", 44100, 2, 22050},
		{"short", 16000, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := testBuffer(tt.sampleRate, tt.channels, tt.frames)
			path := filepath.Join(t.TempDir(), "note.wav")

			if err := SaveWAV(path, buf); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}

			decoded, err := decode.New().DecodeBytes(data)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			if decoded.Format.Codec != "wav" {
				t.Errorf("expected codec wav, got %s", decoded.Format.Codec)
			}
			if decoded.SampleRate() != tt.sampleRate {
				t.Errorf("expected %d Hz, got %d", tt.sampleRate, decoded.SampleRate())
			}
			if decoded.NumberOfChannels() != tt.channels {
				t.Errorf("expected %d channels, got %d", tt.channels, decoded.NumberOfChannels())
			}
			if decoded.Duration() != buf.Duration() {
				t.Errorf("expected duration %v, got %v", buf.Duration(), decoded.Duration())
			}
			if decoded.Data[0][1] != buf.Data[0][1] {
				t.Errorf("expected sample %v, got %v", buf.Data[0][1], decoded.Data[0][1])
			}
		})
	}
}

func TestSaveWAVEmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	buf := audio.NewBuffer(audio.Format{SampleRate: 24000, Channels: 1}, 0)

	if err := SaveWAV(path, buf); err == nil {
		t.Fatal("expected error for empty buffer")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected partial file to be removed")
	}
}
