// ABOUTME: Audio output package for playing decoded buffers
// ABOUTME: Provides an oto-backed processing context with single-use nodes
// Package output plays audio buffers through the system audio device.
//
// A Context implements playback.Context. All contexts in a process share one
// oto device because oto allows a single device context per process.
//
// Example:
//
//	actx, err := output.NewContext(24000)
//	err = actx.Resume(ctx)
//	node, err := actx.NewSource(buf)
//	err = node.Start(0)
package output
