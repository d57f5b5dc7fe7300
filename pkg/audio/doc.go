// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the fundamental audio types shared by the voice-note
// decoder and player.
//
// This package defines:
//   - Format: Describes a decoded stream (codec, sample rate, channels, bit depth)
//   - Buffer: A decoded, immutable, per-channel float32 buffer
//
// It also provides sample conversion utilities:
//   - int16 ↔ float32 using the 32768 scale
//   - arbitrary bit-depth integers → float32
//   - Peaks for rendering a coarse waveform
//
// Example:
//
//	buf := audio.NewBuffer(audio.Format{
//	    Codec:      "pcm",
//	    SampleRate: 24000,
//	    Channels:   1,
//	    BitDepth:   16,
//	}, 24000)
//
//	fmt.Printf("%.1fs\n", buf.Duration())
package audio
