// ABOUTME: TUI initialization and dependencies
// ABOUTME: Wires the conversation and voice note players into a bubbletea program
package ui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pak-ariess/voicenote-go/internal/chat"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

// Conversation is the transcript the TUI renders
type Conversation interface {
	Messages() []chat.Message
	Send(ctx context.Context, text string, onStep func(chat.Step)) (chat.Message, error)
}

// Player controls one voice note
type Player interface {
	TogglePlay(ctx context.Context) error
	Snapshot() playback.Snapshot
	Close() error
}

// Deps holds everything the model talks to
type Deps struct {
	Conversation Conversation

	// NewPlayer creates the player for a voice note on its first play
	NewPlayer func(buf *audio.Buffer) Player

	// Export writes a voice note to path
	Export func(path string, buf *audio.Buffer) error

	// ExportDir defaults to the working directory
	ExportDir string

	// OnPlaybackUnavailable is optional
	OnPlaybackUnavailable func(err error)

	// Context bounds remote calls and device resumes
	Context context.Context
}

// NewModel creates a new TUI model
func NewModel(deps Deps) Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.ExportDir == "" {
		if wd, err := os.Getwd(); err == nil {
			deps.ExportDir = wd
		}
	}

	m := Model{
		deps:        deps,
		stepCh:      make(chan chat.Step, 8),
		players:     make(map[string]Player),
		unavailable: make(map[string]bool),
		peaks:       make(map[string][]float32),
	}
	m.refresh()
	return m
}

// Run creates the TUI program
func Run(deps Deps) *tea.Program {
	return tea.NewProgram(NewModel(deps), tea.WithAltScreen())
}
