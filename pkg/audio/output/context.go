// ABOUTME: Processing context on top of the shared audio device
// ABOUTME: Owns a pausable media clock and every node it creates
package output

import (
	"context"
	"fmt"
	"sync"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
	mediasync "github.com/pak-ariess/voicenote-go/pkg/sync"
)

// Context is a playback.Context backed by the system audio device
type Context struct {
	dev   device
	clock *mediasync.Clock

	mu    sync.Mutex
	state playback.ContextState
	nodes map[*Node]struct{}
}

// NewContext opens (or reuses) the audio device at sampleRate and returns a
// suspended context
func NewContext(sampleRate int) (*Context, error) {
	dev, err := openDevice(sampleRate)
	if err != nil {
		return nil, err
	}
	return newContext(dev), nil
}

// Factory adapts NewContext to playback.ContextFactory
func Factory() playback.ContextFactory {
	return func(sampleRate int) (playback.Context, error) {
		return NewContext(sampleRate)
	}
}

func newContext(dev device) *Context {
	return &Context{
		dev:   dev,
		clock: mediasync.NewClock(),
		state: playback.ContextSuspended,
		nodes: make(map[*Node]struct{}),
	}
}

// CurrentTime returns seconds the context has spent running
func (c *Context) CurrentTime() float64 {
	return c.clock.Seconds()
}

// State returns the context power state
func (c *Context) State() playback.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SampleRate returns the device rate nodes render at
func (c *Context) SampleRate() int {
	return c.dev.SampleRate()
}

// Resume waits for the device and starts the clock
func (c *Context) Resume(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case playback.ContextClosed:
		return playback.ErrContextClosed
	case playback.ContextRunning:
		return nil
	}

	select {
	case <-c.dev.Ready():
	case <-ctx.Done():
		return fmt.Errorf("wait for audio device: %w", ctx.Err())
	}

	if err := c.dev.Acquire(); err != nil {
		return fmt.Errorf("resume audio device: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != playback.ContextSuspended {
		// Closed or resumed concurrently
		c.dev.Release()
		if c.state == playback.ContextClosed {
			return playback.ErrContextClosed
		}
		return nil
	}
	c.state = playback.ContextRunning
	c.clock.Start()
	return nil
}

// NewSource renders buf for the device and returns an unstarted node
func (c *Context) NewSource(buf *audio.Buffer) (playback.Node, error) {
	if buf == nil {
		return nil, fmt.Errorf("no buffer to play")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == playback.ContextClosed {
		return nil, playback.ErrContextClosed
	}

	n := &Node{
		ctx:  c,
		data: render(buf, c.dev.SampleRate()),
		rate: c.dev.SampleRate(),
	}
	c.nodes[n] = struct{}{}
	return n, nil
}

// Close stops every node and releases the device
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == playback.ContextClosed {
		c.mu.Unlock()
		return nil
	}
	wasRunning := c.state == playback.ContextRunning
	c.state = playback.ContextClosed
	c.clock.Stop()

	nodes := make([]*Node, 0, len(c.nodes))
	for n := range c.nodes {
		nodes = append(nodes, n)
	}
	c.mu.Unlock()

	for _, n := range nodes {
		n.Stop()
	}

	if wasRunning {
		if err := c.dev.Release(); err != nil {
			return fmt.Errorf("suspend audio device: %w", err)
		}
	}
	return nil
}

func (c *Context) forget(n *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, n)
}
