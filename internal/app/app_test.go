// ABOUTME: Tests for application orchestration
// ABOUTME: Drives the line mode chat with a fake service and audio context
package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pak-ariess/voicenote-go/internal/config"
	"github.com/pak-ariess/voicenote-go/internal/gemini"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

type fakeService struct {
	script string
	err    error
}

func (f *fakeService) GenerateScript(ctx context.Context, s *gemini.Session, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

func (f *fakeService) Synthesize(ctx context.Context, script string) (*gemini.Speech, error) {
	return &gemini.Speech{
		Data:     base64.StdEncoding.EncodeToString([]byte{0x00, 0x00, 0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F}),
		MimeType: "audio/L16;codec=pcm;rate=24000",
	}, nil
}

// wallContext runs on the wall clock and plays nothing
type wallContext struct {
	mu      sync.Mutex
	state   playback.ContextState
	started time.Time
}

func (c *wallContext) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() {
		return 0
	}
	return time.Since(c.started).Seconds()
}

func (c *wallContext) State() playback.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *wallContext) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = playback.ContextRunning
	c.started = time.Now()
	return nil
}

func (c *wallContext) NewSource(buf *audio.Buffer) (playback.Node, error) {
	return &nopNode{}, nil
}

func (c *wallContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = playback.ContextClosed
	return nil
}

type nopNode struct{ stopped bool }

func (n *nopNode) Start(offset float64) error { return nil }

func (n *nopNode) Stop() error {
	if n.stopped {
		return playback.ErrNodeStopped
	}
	n.stopped = true
	return nil
}

func testSettings() *config.Config {
	return &config.Config{
		APIKey:              "k",
		RequestTimeout:      time.Second,
		RetryMaxAttempts:    1,
		RetryInitialBackoff: time.Millisecond,
		PlaybackSampleRate:  24000,
	}
}

func runLines(t *testing.T, input string, svc *fakeService, factory playback.ContextFactory) (*App, string, string) {
	t.Helper()
	var out bytes.Buffer
	dir := t.TempDir()

	a, err := New(Config{
		Settings:   testSettings(),
		In:         strings.NewReader(input),
		Out:        &out,
		ExportDir:  dir,
		Service:    svc,
		NewContext: factory,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return a, out.String(), dir
}

func wallFactory(sampleRate int) (playback.Context, error) {
	return &wallContext{}, nil
}

func counterValue(t *testing.T, a *App, name, label, value string) float64 {
	t.Helper()
	families, err := a.Metrics().Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestNewRequiresSettings(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without settings")
	}
}

func TestNewPersonaFileMissing(t *testing.T) {
	s := testSettings()
	s.PersonaFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := New(Config{Settings: s, Service: &fakeService{}}); err == nil {
		t.Error("expected persona file error")
	}
}

func TestLineModeVoiceReply(t *testing.T) {
	a, out, dir := runLines(t, "Apa itu gravitasi?\n/simpan\n/keluar\n", &fakeService{script: "Gravitasi itu tarikan bumi."}, wallFactory)

	for _, want := range []string{
		"Pak ARIESS: Halo, ini Pak ARIESS!",
		"sedang mengetik",
		"sedang merekam suara",
		"Gravitasi itu tarikan bumi.",
		"▶ 0:00",
		"Tersimpan di",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.wav"))
	if len(files) != 1 {
		t.Fatalf("expected one saved voice note, got %v", files)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() <= 44 {
		t.Errorf("expected WAV with samples, got %v %v", info, err)
	}

	if got := counterValue(t, a, "voicenote_playback_transitions_total", "state", "finished"); got != 1 {
		t.Errorf("expected one finished transition, got %v", got)
	}
	if got := counterValue(t, a, "voicenote_messages_total", "kind", "voice"); got != 1 {
		t.Errorf("expected one voice message, got %v", got)
	}
}

func TestLineModeSaveWithoutVoiceNote(t *testing.T) {
	_, out, _ := runLines(t, "/simpan\n", &fakeService{}, wallFactory)
	if !strings.Contains(out, "Belum ada pesan suara") {
		t.Errorf("expected notice in output:\n%s", out)
	}
}

func TestLineModeRemoteFailure(t *testing.T) {
	svc := &fakeService{err: &gemini.RemoteServiceError{Op: gemini.OpGenerateScript, StatusCode: 400, Err: errors.New("bad")}}
	_, out, _ := runLines(t, "halo\n", svc, wallFactory)
	if !strings.Contains(out, "putus-putus") {
		t.Errorf("expected apology in output:\n%s", out)
	}
}

func TestLineModePlaybackUnavailable(t *testing.T) {
	factory := func(sampleRate int) (playback.Context, error) {
		return nil, errors.New("no audio device")
	}
	a, out, _ := runLines(t, "halo\n", &fakeService{script: "naskah"}, factory)

	if !strings.Contains(out, "naskah") || !strings.Contains(out, "Audio tidak tersedia") {
		t.Errorf("expected script and notice in output:\n%s", out)
	}
	if got := counterValue(t, a, "voicenote_playback_unavailable_total", "", ""); got != 1 {
		t.Errorf("expected one unavailable count, got %v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	a, err := New(Config{Settings: testSettings(), In: r, Out: &bytes.Buffer{}, Service: &fakeService{}, NewContext: wallFactory})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestCloseClosesPlayers(t *testing.T) {
	a, err := New(Config{Settings: testSettings(), Service: &fakeService{}, NewContext: wallFactory})
	if err != nil {
		t.Fatal(err)
	}
	buf := audio.NewBuffer(audio.Format{Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 16}, 2400)
	p := a.NewPlayer(buf)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.TogglePlay(context.Background()); !errors.Is(err, playback.ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestPlayToEndReleasesPlayer(t *testing.T) {
	a, err := New(Config{Settings: testSettings(), Out: &bytes.Buffer{}, Service: &fakeService{}, NewContext: wallFactory})
	if err != nil {
		t.Fatal(err)
	}
	buf := audio.NewBuffer(audio.Format{Codec: "pcm", SampleRate: 24000, Channels: 1, BitDepth: 16}, 24)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for range 3 {
		a.playToEnd(ctx, buf)
	}

	a.mu.Lock()
	tracked := len(a.players)
	a.mu.Unlock()
	if tracked != 0 {
		t.Errorf("expected finished players to be released, %d still tracked", tracked)
	}
}
