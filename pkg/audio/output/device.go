// ABOUTME: Shared oto device
// ABOUTME: Opens the process-wide output once and suspends it when unused
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"
)

const (
	deviceChannels = 2
	bytesPerSample = 4
	frameBytes     = deviceChannels * bytesPerSample
)

// ErrRateMismatch is returned when the device is already open at another rate
var ErrRateMismatch = errors.New("audio device already open at a different sample rate")

// device is the part of the audio device a Context needs
type device interface {
	Ready() <-chan struct{}
	SampleRate() int
	NewPlayer(r io.Reader) player
	Acquire() error
	Release() error
}

type player interface {
	Play()
	Close() error
}

type otoDevice struct {
	ctx   *oto.Context
	ready chan struct{}
	rate  int

	mu    sync.Mutex
	users int
}

var (
	sharedMu     sync.Mutex
	sharedDevice *otoDevice
)

// openDevice returns the process-wide device, opening it on first use
func openDevice(sampleRate int) (*otoDevice, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedDevice != nil {
		if sharedDevice.rate != sampleRate {
			return nil, fmt.Errorf("%w: open at %d Hz, requested %d Hz", ErrRateMismatch, sharedDevice.rate, sampleRate)
		}
		return sharedDevice, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: deviceChannels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	d := &otoDevice{
		ctx:   ctx,
		ready: make(chan struct{}),
		rate:  sampleRate,
	}
	go func() {
		<-readyChan
		close(d.ready)
		log.Debug().Int("sample_rate", sampleRate).Msg("Audio device ready")
	}()

	sharedDevice = d
	log.Info().Int("sample_rate", sampleRate).Int("channels", deviceChannels).Msg("Audio output initialized")
	return d, nil
}

func (d *otoDevice) Ready() <-chan struct{} {
	return d.ready
}

func (d *otoDevice) SampleRate() int {
	return d.rate
}

func (d *otoDevice) NewPlayer(r io.Reader) player {
	return d.ctx.NewPlayer(r)
}

// Acquire marks the device in use, resuming it for the first user
func (d *otoDevice) Acquire() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users++
	if d.users == 1 {
		if err := d.ctx.Resume(); err != nil {
			d.users--
			return err
		}
	}
	return nil
}

// Release suspends the device once the last user is gone
func (d *otoDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.users == 0 {
		return nil
	}
	d.users--
	if d.users == 0 {
		return d.ctx.Suspend()
	}
	return nil
}
