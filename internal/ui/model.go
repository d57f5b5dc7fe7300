// ABOUTME: Bubbletea model for the voice note chat
// ABOUTME: Defines application state and update logic
package ui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/pak-ariess/voicenote-go/internal/chat"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

// Model represents the TUI state
type Model struct {
	deps Deps

	// Transcript
	messages []chat.Message
	busy     bool
	step     chat.Step
	stepCh   chan chat.Step

	// Input line
	input []rune

	// Voice notes, keyed by message ID
	selected    string
	players     map[string]Player
	unavailable map[string]bool
	peaks       map[string][]float32
	ticking     bool

	// Last export or error notice
	status string

	// Dimensions
	width  int
	height int
}

// Init starts listening for loading steps
func (m Model) Init() tea.Cmd {
	return waitForStep(m.stepCh)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case stepMsg:
		m.step = chat.Step(msg)
		m.refresh()
		return m, waitForStep(m.stepCh)
	case replyMsg:
		return m.applyReply(msg)
	case toggleMsg:
		return m.applyToggle(msg)
	case exportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Gagal menyimpan: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Tersimpan di %s", msg.path)
		}
	case tickMsg:
		if m.anyActive() {
			return m, tick()
		}
		m.ticking = false
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.send()
	case tea.KeyTab:
		m.cycleSelection(1)
	case tea.KeyShiftTab:
		m.cycleSelection(-1)
	case tea.KeyCtrlP:
		return m.togglePlay()
	case tea.KeyCtrlS:
		return m.export()
	case tea.KeySpace:
		if len(m.input) == 0 {
			return m.togglePlay()
		}
		m.input = append(m.input, ' ')
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}

	return m, nil
}

func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(string(m.input))
	if text == "" || m.busy {
		return m, nil
	}
	m.input = nil
	m.busy = true
	m.status = ""

	conv := m.deps.Conversation
	ctx := m.deps.Context
	ch := m.stepCh
	return m, func() tea.Msg {
		reply, err := conv.Send(ctx, text, func(s chat.Step) {
			select {
			case ch <- s:
			default:
			}
		})
		return replyMsg{reply: reply, err: err}
	}
}

func (m Model) applyReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.step = chat.StepIdle
	m.refresh()

	// Remote failures already appear as the apology message
	if decode.IsDecodeError(msg.err) {
		m.status = "Suara tidak bisa diputar, naskah ditampilkan."
	}

	if msg.reply.HasAudio() {
		m.selected = msg.reply.ID
	}
	return m, nil
}

func (m Model) togglePlay() (tea.Model, tea.Cmd) {
	note, ok := m.selectedNote()
	if !ok || m.unavailable[note.ID] || m.deps.NewPlayer == nil {
		return m, nil
	}

	p, ok := m.players[note.ID]
	if !ok {
		p = m.deps.NewPlayer(note.Audio)
		m.players[note.ID] = p
	}

	ctx := m.deps.Context
	id := note.ID
	cmds := []tea.Cmd{func() tea.Msg {
		return toggleMsg{id: id, err: p.TogglePlay(ctx)}
	}}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, tick())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) applyToggle(msg toggleMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Warn().Err(msg.err).Str("message_id", msg.id).Msg("Voice note playback failed")
		if errors.Is(msg.err, playback.ErrPlaybackUnavailable) {
			m.unavailable[msg.id] = true
			m.status = "Audio tidak tersedia di perangkat ini."
			if m.deps.OnPlaybackUnavailable != nil {
				m.deps.OnPlaybackUnavailable(msg.err)
			}
		}
	}

	if !m.ticking && m.anyActive() {
		m.ticking = true
		return m, tick()
	}
	return m, nil
}

func (m Model) export() (tea.Model, tea.Cmd) {
	note, ok := m.selectedNote()
	if !ok || m.deps.Export == nil {
		return m, nil
	}

	path := filepath.Join(m.deps.ExportDir, exportName(note))
	export := m.deps.Export
	buf := note.Audio
	return m, func() tea.Msg {
		return exportMsg{path: path, err: export(path, buf)}
	}
}

func exportName(msg chat.Message) string {
	id := msg.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("pak-ariess-%s-%s.wav", msg.Timestamp.Format("20060102-150405"), id)
}

// cycleSelection moves the selection between voice notes
func (m *Model) cycleSelection(dir int) {
	var ids []string
	for _, msg := range m.messages {
		if msg.HasAudio() {
			ids = append(ids, msg.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	current := -1
	for i, id := range ids {
		if id == m.selected {
			current = i
		}
	}

	next := current + dir
	if current == -1 {
		next = len(ids) - 1
	}
	next = (next%len(ids) + len(ids)) % len(ids)
	m.selected = ids[next]
}

func (m Model) selectedNote() (chat.Message, bool) {
	for _, msg := range m.messages {
		if msg.ID == m.selected && msg.HasAudio() {
			return msg, true
		}
	}
	return chat.Message{}, false
}

// refresh reloads the transcript and caches waveforms for new notes
func (m *Model) refresh() {
	if m.deps.Conversation == nil {
		return
	}
	m.messages = m.deps.Conversation.Messages()
	for _, msg := range m.messages {
		if msg.HasAudio() {
			if _, ok := m.peaks[msg.ID]; !ok {
				m.peaks[msg.ID] = audio.Peaks(msg.Audio, WaveformBars)
			}
		}
	}
}

// anyActive reports whether a note is playing or resuming
func (m Model) anyActive() bool {
	for _, p := range m.players {
		s := p.Snapshot()
		if s.Playing || s.Loading {
			return true
		}
	}
	return false
}

// Close tears down every voice note player
func (m Model) Close() error {
	var errs []error
	for id, p := range m.players {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close player %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func waitForStep(ch chan chat.Step) tea.Cmd {
	return func() tea.Msg {
		return stepMsg(<-ch)
	}
}

func tick() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
