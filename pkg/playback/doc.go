// ABOUTME: Voice note playback package
// ABOUTME: Play/pause/progress state machine over a single-use node audio graph
// Package playback drives one decoded buffer through a processing context.
//
// A Controller lazily creates its context on the first play, replaces the
// playback node on every resume and reports progress from a cancellable
// per-frame loop.
//
// Example:
//
//	ctrl := playback.New(buf, playback.Config{
//		NewContext: output.Factory(),
//		OnChange: func(s playback.Snapshot) {
//			fmt.Printf("%.0f%%\n", s.Progress*100)
//		},
//	})
//	defer ctrl.Close()
//	err := ctrl.TogglePlay(ctx)
package playback
