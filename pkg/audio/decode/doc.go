// ABOUTME: Voice-note decoder package
// ABOUTME: Base64 payloads to float buffers with container detection and PCM fallback
// Package decode converts base64 voice-note payloads into audio buffers.
//
// Container-aware decoding is attempted first (WAV, FLAC, MP3). When no
// container signature matches, the bytes are treated as headerless signed
// 16-bit little-endian mono PCM at 24000 Hz.
//
// Failures are reported as *DecodeError so callers can fall back to showing
// the text of the message instead of a player.
//
// Example:
//
//	buf, err := decode.Decode(base64Audio)
//	if decode.IsDecodeError(err) {
//	    // render the script as text
//	}
package decode
