// ABOUTME: Voice note playback controller
// ABOUTME: Tracks offset and progress across single-use node play/pause cycles
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// DefaultSampleRate matches the rate of headerless speech payloads
const DefaultSampleRate = 24000

// Config holds controller configuration
type Config struct {
	// SampleRate of the processing context
	SampleRate int

	// NewContext creates the processing context on first play
	NewContext ContextFactory

	// Frames drives the progress loop
	Frames Frames

	// OnChange is called after every transition and progress tick
	OnChange func(Snapshot)
}

// Controller owns playback of one buffer
type Controller struct {
	buf    *audio.Buffer
	config Config

	mu       sync.Mutex
	actx     Context
	node     Node
	startRef float64
	offset   float64
	playing  bool
	state    State
	progress float64
	loading  bool
	starting bool
	closed   bool

	// gen is bumped whenever the progress loop must end so that a tick
	// already dispatched for an older loop is ignored
	gen      uint64
	frame    FrameID
	hasFrame bool
}

// New creates a controller for buf. A nil buf yields a controller whose
// TogglePlay does nothing.
func New(buf *audio.Buffer, config Config) *Controller {
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Frames == nil {
		config.Frames = NewTimerFrames(DefaultFrameInterval)
	}
	return &Controller{
		buf:    buf,
		config: config,
		state:  StatePaused,
	}
}

// TogglePlay starts playback when paused or finished and pauses it when
// playing. While a suspended context resumes the controller reports
// Loading and further toggles are ignored. The context factory and node
// creation run without holding the controller lock.
func (c *Controller) TogglePlay(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.buf == nil || c.buf.Duration() <= 0 || c.loading || c.starting {
		c.mu.Unlock()
		return nil
	}

	if c.playing {
		c.pauseLocked()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return nil
	}

	if c.state == StateFinished {
		c.offset = 0
		c.progress = 0
	}
	c.starting = true
	actx := c.actx
	c.mu.Unlock()

	node, resumed, err := c.prepare(ctx, actx)

	c.mu.Lock()
	c.starting = false
	if c.closed {
		c.mu.Unlock()
		stopNode(node)
		return ErrClosed
	}
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		if resumed {
			c.notify(snap)
		}
		return err
	}

	err = c.startLocked(node)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return err
}

// prepare makes sure a running context exists and builds a fresh node on it.
// resumed reports whether a Loading snapshot was published.
func (c *Controller) prepare(ctx context.Context, actx Context) (node Node, resumed bool, err error) {
	if actx == nil {
		created, err := c.newContext()
		if err != nil {
			return nil, false, unavailable("create context", err)
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			if err := created.Close(); err != nil && !errors.Is(err, ErrContextClosed) {
				log.Debug().Err(err).Msg("Failed to close processing context")
			}
			return nil, false, ErrClosed
		}
		c.actx = created
		c.mu.Unlock()
		actx = created
	}

	switch actx.State() {
	case ContextClosed:
		return nil, false, unavailable("resume", ErrContextClosed)
	case ContextSuspended:
		c.mu.Lock()
		c.loading = true
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)

		err := actx.Resume(ctx)

		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		if err != nil {
			return nil, true, unavailable("resume", err)
		}
		resumed = true
	}

	node, err = actx.NewSource(c.buf)
	if err != nil {
		return nil, resumed, unavailable("create node", err)
	}
	return node, resumed, nil
}

func (c *Controller) newContext() (Context, error) {
	if c.config.NewContext == nil {
		return nil, errNoContextFactory
	}
	actx, err := c.config.NewContext(c.config.SampleRate)
	if err != nil {
		return nil, err
	}
	if actx == nil {
		return nil, fmt.Errorf("context factory returned nil")
	}
	return actx, nil
}

// startLocked begins emission of node at the accumulated offset
func (c *Controller) startLocked(node Node) error {
	duration := c.buf.Duration()
	offset := math.Mod(c.offset, duration)
	if offset < 0 {
		offset = 0
	}

	if err := node.Start(offset); err != nil {
		stopNode(node)
		return unavailable("start node", err)
	}

	c.node = node
	c.offset = offset
	c.startRef = c.actx.CurrentTime() - offset
	c.playing = true
	c.state = StatePlaying
	c.gen++
	c.scheduleLocked()

	log.Debug().
		Float64("offset", offset).
		Float64("duration", duration).
		Msg("Playback started")
	return nil
}

func (c *Controller) pauseLocked() {
	stopNode(c.node)
	c.node = nil

	duration := c.buf.Duration()
	elapsed := clamp(c.actx.CurrentTime()-c.startRef, 0, duration)

	c.offset = elapsed
	c.progress = elapsed / duration
	c.playing = false
	c.state = StatePaused
	c.cancelFrameLocked()
	c.gen++

	log.Debug().Float64("offset", elapsed).Msg("Playback paused")
}

func (c *Controller) scheduleLocked() {
	gen := c.gen
	c.frame = c.config.Frames.Request(func() {
		c.tick(gen)
	})
	c.hasFrame = true
}

func (c *Controller) cancelFrameLocked() {
	if c.hasFrame {
		c.config.Frames.Cancel(c.frame)
		c.hasFrame = false
	}
}

// tick advances progress. A tick from a cancelled loop finds a newer
// generation or a stopped controller and returns without touching state.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || !c.playing || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.hasFrame = false

	duration := c.buf.Duration()
	elapsed := c.actx.CurrentTime() - c.startRef

	if elapsed >= duration {
		stopNode(c.node)
		c.node = nil
		c.progress = 1.0
		c.offset = 0
		c.playing = false
		c.state = StateFinished
		c.gen++
		log.Debug().Float64("duration", duration).Msg("Playback finished")
	} else {
		c.progress = math.Max(elapsed, 0) / duration
		c.scheduleLocked()
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Close stops any active node, cancels the progress loop and releases the
// processing context. Calling Close again returns nil.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	stopNode(c.node)
	c.node = nil
	c.playing = false
	c.cancelFrameLocked()
	c.gen++
	actx := c.actx
	c.mu.Unlock()

	if actx != nil && actx.State() != ContextClosed {
		if err := actx.Close(); err != nil && !errors.Is(err, ErrContextClosed) {
			return fmt.Errorf("close processing context: %w", err)
		}
	}
	return nil
}

// Progress returns the played fraction in [0, 1]
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Elapsed returns the playback position in seconds
func (c *Controller) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

func (c *Controller) elapsedLocked() float64 {
	duration := c.buf.Duration()
	switch {
	case c.playing:
		return clamp(c.actx.CurrentTime()-c.startRef, 0, duration)
	case c.state == StateFinished:
		return duration
	default:
		return c.offset
	}
}

// Duration returns the buffer length in seconds
func (c *Controller) Duration() float64 {
	return c.buf.Duration()
}

// State returns the transport state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether a node is emitting
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Loading reports whether the context is resuming
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Snapshot returns all observable state at once
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state,
		Playing:  c.playing,
		Loading:  c.loading,
		Progress: c.progress,
		Elapsed:  c.elapsedLocked(),
		Duration: c.buf.Duration(),
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.config.OnChange != nil {
		c.config.OnChange(snap)
	}
}

// stopNode stops n, treating an already stopped node as success
func stopNode(n Node) {
	if n == nil {
		return
	}
	if err := n.Stop(); err != nil && !errors.Is(err, ErrNodeStopped) {
		log.Debug().Err(err).Msg("Failed to stop playback node")
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
