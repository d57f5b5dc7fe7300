// ABOUTME: Media clock package
// ABOUTME: Provides a pausable clock that drives playback timing
// Package sync provides the media clock behind an audio output context.
//
// The clock only advances while running, so a suspended context reports a
// frozen current time.
//
// Example:
//
//	clock := sync.NewClock()
//	clock.Start()
//	elapsed := clock.Seconds()
package sync
