// ABOUTME: Audio encoder package
// ABOUTME: Provides raw PCM and WAV encoders for decoded voice notes
// Package encode writes decoded buffers back out.
//
// Supports: raw signed 16-bit little-endian PCM and 16-bit WAV files.
//
// Example:
//
//	err := encode.SaveWAV("note.wav", buf)
package encode
