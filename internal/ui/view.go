// ABOUTME: Rendering for the voice note chat
// ABOUTME: Header, message bubbles with voice note players, and the input line
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pak-ariess/voicenote-go/internal/chat"
	"github.com/pak-ariess/voicenote-go/pkg/playback"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("#008069")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d1f4cc")).
			Background(lipgloss.Color("#008069")).
			Padding(0, 1)

	userBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("#d9fdd3")).
			Padding(0, 1)

	assistantBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("255")).
			Padding(0, 1)

	selectedBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#25d366"))

	playedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00a884"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	timeStyle    = lipgloss.NewStyle().Faint(true)
	ticksStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderInput() + "\n" + m.renderHelp()

	var lines []string
	for _, msg := range m.messages {
		lines = append(lines, strings.Split(m.renderMessage(msg), "\n")...)
	}
	if m.busy && m.step != chat.StepIdle {
		lines = append(lines, statusStyle.Render(m.step.String()))
	}
	if m.status != "" {
		lines = append(lines, warnStyle.Render(m.status))
	}

	// Keep the newest lines when the transcript overflows
	room := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}

	return header + "\n" + strings.Join(lines, "\n") + "\n" + footer
}

// renderHeader renders the contact name and status
func (m Model) renderHeader() string {
	status := "Online • Guru Virtual SMP"
	if m.busy && m.step != chat.StepIdle {
		status = m.step.String()
	}
	title := headerStyle.Render("Pak ARIESS")
	sub := subtitleStyle.Render(status)
	return lipgloss.NewStyle().Width(m.width).Background(lipgloss.Color("#008069")).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, title, sub))
}

// renderMessage renders one bubble aligned to its sender's side
func (m Model) renderMessage(msg chat.Message) string {
	maxWidth := m.width * 85 / 100
	if maxWidth < 20 {
		maxWidth = 20
	}

	stamp := timeStyle.Render(msg.Timestamp.Format("15:04"))

	if msg.Sender == chat.SenderUser {
		body := userBubble.MaxWidth(maxWidth).Width(min(lipgloss.Width(msg.Text)+2, maxWidth)).Render(msg.Text)
		meta := stamp + " " + ticksStyle.Render("✓✓")
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, lipgloss.JoinVertical(lipgloss.Right, body, meta))
	}

	var content string
	if msg.HasAudio() {
		content = m.renderVoiceNote(msg)
	} else {
		content = assistantBubble.Width(min(lipgloss.Width(msg.Text)+2, maxWidth)).Render(msg.Text)
	}

	bubble := lipgloss.JoinVertical(lipgloss.Left, content, stamp)
	if msg.ID == m.selected {
		bubble = selectedBorder.Render(bubble)
	}
	return bubble
}

// renderVoiceNote renders the play glyph, waveform and position
func (m Model) renderVoiceNote(msg chat.Message) string {
	duration := msg.Audio.Duration()
	snap := playback.Snapshot{Duration: duration}
	if p, ok := m.players[msg.ID]; ok {
		snap = p.Snapshot()
	}

	if m.unavailable[msg.ID] {
		return assistantBubble.Render(fmt.Sprintf("%s %s  %s",
			warnStyle.Render("⚠"),
			waveform(m.peaks[msg.ID], 0, pendingStyle.Render, pendingStyle.Render),
			formatTime(duration)))
	}

	glyph := "▶"
	switch {
	case snap.Loading:
		glyph = "…"
	case snap.Playing:
		glyph = "⏸"
	}

	position := formatTime(duration)
	if snap.Playing || snap.State == playback.StatePaused && snap.Elapsed > 0 {
		position = formatTime(snap.Elapsed) + " / " + formatTime(duration)
	}

	wave := waveform(m.peaks[msg.ID], snap.Progress, playedStyle.Render, pendingStyle.Render)
	return assistantBubble.Render(fmt.Sprintf("%s %s  %s", glyph, wave, position))
}

// renderInput renders the text entry line
func (m Model) renderInput() string {
	prompt := "> "
	if m.busy {
		return helpStyle.Render(prompt + "...")
	}
	if len(m.input) == 0 {
		return prompt + helpStyle.Render("Ketik pesan...")
	}
	return prompt + truncate(string(m.input), max(m.width-4, 10)) + "█"
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("enter:Kirim  tab:Pilih  spasi/ctrl+p:Putar  ctrl+s:Simpan WAV  esc:Keluar")
}
