// ABOUTME: Audio resampling package
// ABOUTME: Provides linear interpolation resampling for float samples
// Package resample converts interleaved float32 audio between sample rates.
//
// Example:
//
//	out := resample.Convert(samples, 44100, 24000, 2)
package resample
