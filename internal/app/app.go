// ABOUTME: Voice note application orchestration
// ABOUTME: Coordinates the remote client, conversation, players, metrics and UI
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pak-ariess/voicenote-go/internal/chat"
	"github.com/pak-ariess/voicenote-go/internal/config"
	"github.com/pak-ariess/voicenote-go/internal/gemini"
	"github.com/pak-ariess/voicenote-go/internal/observability"
	"github.com/pak-ariess/voicenote-go/internal/resilience"
	"github.com/pak-ariess/voicenote-go/internal/ui"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
	"github.com/pak-ariess/voicenote-go/pkg/audio/encode"
	"github.com/pak-ariess/voicenote-go/pkg/audio/output"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

// REPL commands
const (
	cmdQuit = "/keluar"
	cmdSave = "/simpan"
)

// pollInterval paces the line mode wait for a voice note to end
const pollInterval = 20 * time.Millisecond

// Config holds application configuration
type Config struct {
	Settings *config.Config

	// UseTUI selects the full screen chat; otherwise a line mode reads In
	UseTUI bool
	In     io.Reader
	Out    io.Writer

	// ExportDir receives saved voice notes
	ExportDir string

	// Service overrides the remote client
	Service chat.Service

	// NewContext overrides the audio device
	NewContext playback.ContextFactory
}

// App represents the voice note chat application
type App struct {
	config  Config
	metrics *observability.Metrics
	conv    *chat.Conversation

	mu      sync.Mutex
	players []*playback.Controller
}

// New creates the application
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		return nil, errors.New("settings are required")
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	if cfg.NewContext == nil {
		cfg.NewContext = output.Factory()
	}

	s := cfg.Settings
	metrics := observability.NewMetrics()

	if cfg.Service == nil {
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:    s.APIKey,
			BaseURL:   s.BaseURL,
			ChatModel: s.ChatModel,
			TTSModel:  s.TTSModel,
			Voice:     s.TTSVoice,
			Timeout:   s.RequestTimeout,
			OnRequest: metrics.RecordRemote,
		})
		if err != nil {
			return nil, err
		}
		cfg.Service = client
	}

	persona, err := s.Persona(gemini.DefaultPersona)
	if err != nil {
		return nil, err
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = s.RetryMaxAttempts
	retry.InitialBackoff = s.RetryInitialBackoff

	conv := chat.New(cfg.Service, decode.New(), gemini.NewSession(persona), chat.Config{
		Retry:    retry,
		Recorder: metrics,
	})

	return &App{
		config:  cfg,
		metrics: metrics,
		conv:    conv,
	}, nil
}

// Metrics returns the application metrics
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Run serves the chat until ctx is done or the user quits
func (a *App) Run(ctx context.Context) error {
	if addr := a.config.Settings.MetricsAddr; addr != "" {
		srv := observability.NewServer(addr, a.metrics)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Metrics server shutdown failed")
			}
		}()
	}
	defer a.Close()

	if a.config.UseTUI {
		return a.runTUI(ctx)
	}
	return a.runLines(ctx)
}

// NewPlayer creates a tracked controller for buf
func (a *App) NewPlayer(buf *audio.Buffer) *playback.Controller {
	p := playback.New(buf, playback.Config{
		SampleRate: a.config.Settings.PlaybackSampleRate,
		NewContext: a.config.NewContext,
		OnChange:   transitionRecorder(a.metrics),
	})

	a.mu.Lock()
	a.players = append(a.players, p)
	a.mu.Unlock()
	return p
}

// release closes p and stops tracking it
func (a *App) release(p *playback.Controller) {
	a.mu.Lock()
	for i, tracked := range a.players {
		if tracked == p {
			a.players = append(a.players[:i], a.players[i+1:]...)
			break
		}
	}
	a.mu.Unlock()

	if err := p.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close player")
	}
}

// Close tears down every player
func (a *App) Close() error {
	a.mu.Lock()
	players := a.players
	a.players = nil
	a.mu.Unlock()

	var errs []error
	for _, p := range players {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) runTUI(ctx context.Context) error {
	prog := ui.Run(ui.Deps{
		Conversation: a.conv,
		NewPlayer: func(buf *audio.Buffer) ui.Player {
			return a.NewPlayer(buf)
		},
		Export:                encode.SaveWAV,
		ExportDir:             a.config.ExportDir,
		OnPlaybackUnavailable: a.playbackUnavailable,
		Context:               ctx,
	})

	go func() {
		<-ctx.Done()
		prog.Quit()
	}()

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	if m, ok := final.(ui.Model); ok {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close players")
		}
	}
	return nil
}

// runLines is the line mode chat. Voice replies play to the end before the
// next prompt.
func (a *App) runLines(ctx context.Context) error {
	out := a.config.Out
	for _, msg := range a.conv.Messages() {
		printMessage(out, msg)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.config.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var last chat.Message
	for {
		fmt.Fprint(out, "> ")

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case cmdQuit:
			return nil
		case cmdSave:
			a.save(last)
			continue
		}

		reply, err := a.conv.Send(ctx, line, func(s chat.Step) {
			if s != chat.StepIdle {
				fmt.Fprintln(out, s.String())
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("Reply degraded")
		}
		printMessage(out, reply)

		if reply.HasAudio() {
			last = reply
			a.playToEnd(ctx, reply.Audio)
		}
	}
}

// playToEnd plays buf once and waits for it to finish
func (a *App) playToEnd(ctx context.Context, buf *audio.Buffer) {
	p := a.NewPlayer(buf)
	defer a.release(p)

	if err := p.TogglePlay(ctx); err != nil {
		a.playbackUnavailable(err)
		fmt.Fprintln(a.config.Out, "(Audio tidak tersedia di perangkat ini.)")
		return
	}

	fmt.Fprintf(a.config.Out, "▶ %s\n", formatDuration(p.Duration()))
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for p.State() != playback.StateFinished {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) save(msg chat.Message) {
	out := a.config.Out
	if !msg.HasAudio() {
		fmt.Fprintln(out, "Belum ada pesan suara untuk disimpan.")
		return
	}
	path := filepath.Join(a.config.ExportDir, fmt.Sprintf("pak-ariess-%s.wav", msg.Timestamp.Format("20060102-150405")))
	if err := encode.SaveWAV(path, msg.Audio); err != nil {
		fmt.Fprintf(out, "Gagal menyimpan: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Tersimpan di %s\n", path)
}

func (a *App) playbackUnavailable(err error) {
	if errors.Is(err, playback.ErrPlaybackUnavailable) {
		a.metrics.RecordPlaybackUnavailable()
	}
	log.Warn().Err(err).Msg("Playback failed")
}

func printMessage(w io.Writer, msg chat.Message) {
	name := "Anda"
	if msg.Sender == chat.SenderAssistant {
		name = "Pak ARIESS"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Format("15:04"), name, msg.Text)
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// transitionRecorder counts state changes; progress ticks are ignored
func transitionRecorder(m *observability.Metrics) func(playback.Snapshot) {
	var mu sync.Mutex
	last := playback.StatePaused
	loading := false
	return func(s playback.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Loading && !loading {
			m.RecordTransition("loading")
		}
		loading = s.Loading
		if s.State != last {
			m.RecordTransition(s.State.String())
			last = s.State
		}
	}
}
