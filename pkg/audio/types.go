// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and the decoded float buffer shared by decoder and player
package audio

import "math"

// PCM16Scale is the divisor used to map signed 16-bit samples onto [-1.0, 1.0).
// -32768 maps to exactly -1.0 and 32767 to ~0.99997.
const PCM16Scale = 32768.0

// Format describes a decoded audio stream
type Format struct {
	Codec      string // container or "pcm" for headerless payloads
	SampleRate int
	Channels   int
	BitDepth   int // source bit depth before float conversion
}

// Buffer is a decoded, immutable audio buffer.
// Data holds one slice per channel with samples normalized to [-1.0, 1.0].
// Consumers borrow the slices and must not modify them.
type Buffer struct {
	Format Format
	Data   [][]float32
}

// NewBuffer allocates a zeroed buffer with the given number of frames
func NewBuffer(format Format, frames int) *Buffer {
	data := make([][]float32, format.Channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}
	return &Buffer{Format: format, Data: data}
}

// NumberOfChannels returns the channel count
func (b *Buffer) NumberOfChannels() int {
	return len(b.Data)
}

// SampleRate returns the sample rate in Hz
func (b *Buffer) SampleRate() int {
	return b.Format.SampleRate
}

// Frames returns the number of samples per channel
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.Format.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// ChannelData returns the samples of one channel
func (b *Buffer) ChannelData(ch int) []float32 {
	return b.Data[ch]
}

// Int16ToFloat converts a signed 16-bit sample to float
func Int16ToFloat(sample int16) float32 {
	return float32(sample) / PCM16Scale
}

// FloatToInt16 converts a float sample back to signed 16-bit, clamping out-of-range values
func FloatToInt16(sample float32) int16 {
	scaled := math.Round(float64(sample) * PCM16Scale)
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}

// IntToFloat converts a signed integer sample of the given bit depth to float.
// 8-bit samples are treated as unsigned (WAV convention).
func IntToFloat(sample int, bitDepth int) float32 {
	if bitDepth == 8 {
		return float32(sample-128) / 128.0
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// Peaks summarizes the buffer into n bars of peak amplitude in [0, 1],
// taking the loudest sample across channels within each bar.
func Peaks(b *Buffer, n int) []float32 {
	peaks := make([]float32, n)
	frames := b.Frames()
	if n <= 0 || frames == 0 {
		return peaks
	}

	for i := 0; i < n; i++ {
		start := i * frames / n
		end := (i + 1) * frames / n
		if end <= start {
			end = start + 1
		}
		if end > frames {
			end = frames
		}

		var peak float32
		for _, channel := range b.Data {
			for _, s := range channel[start:end] {
				if s < 0 {
					s = -s
				}
				if s > peak {
					peak = s
				}
			}
		}
		if peak > 1 {
			peak = 1
		}
		peaks[i] = peak
	}
	return peaks
}
