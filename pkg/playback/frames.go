// ABOUTME: Per-frame callback scheduling
// ABOUTME: Timer-backed frame requests that can be cancelled individually
package playback

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display refresh
const DefaultFrameInterval = time.Second / 60

// FrameID identifies a pending frame request
type FrameID uint64

// Frames schedules a callback for the next frame. Cancellation is best
// effort: a callback already dispatched may still run.
type Frames interface {
	Request(fn func()) FrameID
	Cancel(id FrameID)
}

// TimerFrames fires frame callbacks on timer goroutines
type TimerFrames struct {
	mu       sync.Mutex
	interval time.Duration
	next     FrameID
	timers   map[FrameID]*time.Timer
}

// NewTimerFrames creates a scheduler firing every interval.
// A non-positive interval uses DefaultFrameInterval.
func NewTimerFrames(interval time.Duration) *TimerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerFrames{
		interval: interval,
		timers:   make(map[FrameID]*time.Timer),
	}
}

// Request schedules fn to run after one frame interval
func (f *TimerFrames) Request(fn func()) FrameID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	id := f.next
	f.timers[id] = time.AfterFunc(f.interval, func() {
		f.mu.Lock()
		_, pending := f.timers[id]
		delete(f.timers, id)
		f.mu.Unlock()

		if pending {
			fn()
		}
	})
	return id
}

// Cancel drops a pending request
func (f *TimerFrames) Cancel(id FrameID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[id]; ok {
		t.Stop()
		delete(f.timers, id)
	}
}

// Pending returns the number of scheduled callbacks
func (f *TimerFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}
