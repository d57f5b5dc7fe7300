// ABOUTME: Transcript message and loading step types
// ABOUTME: Messages carry either text or a decoded voice note
package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/pak-ariess/voicenote-go/pkg/audio"
)

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one transcript entry. Assistant replies keep their script in
// Text even when Audio is present.
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	Audio     *audio.Buffer
	Timestamp time.Time
}

// HasAudio reports whether the message renders as a voice note
func (m Message) HasAudio() bool {
	return m.Audio != nil
}

// Kind labels the message for metrics
func (m Message) Kind() string {
	if m.HasAudio() {
		return "voice"
	}
	return "text"
}

func newMessage(sender Sender, text string, buf *audio.Buffer, now time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Text:      text,
		Audio:     buf,
		Timestamp: now,
	}
}

// Step is the loading phase of an exchange
type Step int

const (
	StepIdle Step = iota
	StepTyping
	StepRecording
)

// String returns the status line shown while the step is active
func (s Step) String() string {
	switch s {
	case StepTyping:
		return "Pak ARIESS sedang mengetik..."
	case StepRecording:
		return "Pak ARIESS sedang merekam suara..."
	default:
		return ""
	}
}
