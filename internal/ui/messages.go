// ABOUTME: Bubbletea messages exchanged between commands and the model
// ABOUTME: Loading steps, replies, playback results and redraw ticks
package ui

import (
	"time"

	"github.com/pak-ariess/voicenote-go/internal/chat"
)

// redrawInterval paces progress redraws while a note plays
const redrawInterval = 100 * time.Millisecond

type stepMsg chat.Step

type replyMsg struct {
	reply chat.Message
	err   error
}

type toggleMsg struct {
	id  string
	err error
}

type exportMsg struct {
	path string
	err  error
}

type tickMsg time.Time
