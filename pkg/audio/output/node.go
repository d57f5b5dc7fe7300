// ABOUTME: Single-use playback node
// ABOUTME: Streams a rendered buffer from an offset through a fresh oto player
package output

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/resample"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
	"github.com/rs/zerolog/log"
)

// Node plays one buffer once
type Node struct {
	ctx  *Context
	data []byte
	rate int

	mu      sync.Mutex
	started bool
	stopped bool
	player  player
}

// Start begins playback offset seconds into the buffer
func (n *Node) Start(offset float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return playback.ErrNodeUsed
	}
	if n.stopped {
		return playback.ErrNodeStopped
	}
	n.started = true

	p := n.ctx.dev.NewPlayer(bytes.NewReader(n.data[n.byteOffset(offset):]))
	p.Play()
	n.player = p
	return nil
}

// Stop halts playback and releases the player
func (n *Node) Stop() error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return playback.ErrNodeStopped
	}
	n.stopped = true
	p := n.player
	n.player = nil
	n.mu.Unlock()

	n.ctx.forget(n)

	if p != nil {
		if err := p.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close player")
			return err
		}
	}
	return nil
}

// byteOffset converts seconds to a frame-aligned position in data
func (n *Node) byteOffset(offset float64) int {
	if offset <= 0 || math.IsNaN(offset) {
		return 0
	}
	frame := int(offset * float64(n.rate))
	pos := frame * frameBytes
	if pos > len(n.data) {
		return len(n.data)
	}
	return pos
}

// render interleaves buf as stereo float32 little endian at rate.
// Mono is duplicated to both channels and extra channels are dropped.
func render(buf *audio.Buffer, rate int) []byte {
	frames := buf.Frames()
	channels := buf.NumberOfChannels()

	interleaved := make([]float32, frames*deviceChannels)
	if channels > 0 {
		left := buf.ChannelData(0)
		right := left
		if channels > 1 {
			right = buf.ChannelData(1)
		}
		for i := 0; i < frames; i++ {
			interleaved[i*2] = left[i]
			interleaved[i*2+1] = right[i]
		}
	}

	if buf.SampleRate() != rate && buf.SampleRate() > 0 {
		interleaved = resample.Convert(interleaved, buf.SampleRate(), rate, deviceChannels)
	}

	out := make([]byte, len(interleaved)*bytesPerSample)
	for i, s := range interleaved {
		binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(s))
	}
	return out
}
