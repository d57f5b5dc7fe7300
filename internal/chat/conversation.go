// ABOUTME: Conversation state machine
// ABOUTME: Turns user text into a spoken reply with text fallbacks on failure
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pak-ariess/voicenote-go/internal/gemini"
	"github.com/pak-ariess/voicenote-go/internal/resilience"
	"github.com/pak-ariess/voicenote-go/pkg/audio"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
)

const (
	WelcomeText  = "Halo, ini Pak ARIESS! Mau belajar apa hari ini? Tulis aja pertanyaannya santai kayak di WA ya."
	FallbackText = "Waduh, koneksi Pak ARIESS putus-putus nih. Coba tanya lagi ya?"
)

var (
	// ErrEmptyMessage is returned for blank input
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned while a previous message is still being answered
	ErrBusy = errors.New("still answering the previous message")
)

// Service produces scripts and speech
type Service interface {
	GenerateScript(ctx context.Context, s *gemini.Session, text string) (string, error)
	Synthesize(ctx context.Context, script string) (*gemini.Speech, error)
}

// Decoder turns a base64 speech payload into a buffer
type Decoder interface {
	Decode(payload string) (*audio.Buffer, error)
}

// Recorder receives conversation metrics
type Recorder interface {
	RecordDecode(codec string, seconds float64)
	RecordDecodeFailure(stage string)
	RecordMessage(sender, kind string)
}

// Config holds conversation configuration
type Config struct {
	Retry resilience.RetryConfig

	// Recorder is optional
	Recorder Recorder

	// Now overrides the clock for timestamps
	Now func() time.Time
}

// Conversation holds the transcript of one chat
type Conversation struct {
	svc     Service
	decoder Decoder
	session *gemini.Session
	config  Config

	mu       sync.Mutex
	messages []Message
	busy     bool
	step     Step
}

// New creates a conversation seeded with the welcome message
func New(svc Service, decoder Decoder, session *gemini.Session, config Config) *Conversation {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Retry.MaxAttempts < 1 {
		config.Retry = resilience.DefaultRetryConfig()
	}

	c := &Conversation{
		svc:     svc,
		decoder: decoder,
		session: session,
		config:  config,
	}
	c.append(newMessage(SenderAssistant, WelcomeText, nil, config.Now()))
	return c
}

// Messages returns a copy of the transcript
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Busy reports whether a reply is in progress
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Step returns the current loading step
func (c *Conversation) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Send appends text as a user message and answers it. The script is
// generated first and then synthesized. onStep, if set, observes each
// loading step and finally StepIdle.
//
// The returned message is the appended reply. A non-nil error alongside it
// explains why the reply is a text fallback: the apology after a remote
// failure, or the bare script when the audio could not be decoded.
func (c *Conversation) Send(ctx context.Context, text string, onStep func(Step)) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	c.append(newMessage(SenderUser, text, nil, c.config.Now()))

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		c.setStep(StepIdle, onStep)
	}()

	c.setStep(StepTyping, onStep)
	var script string
	err := resilience.Retry(ctx, c.config.Retry, resilience.IsTemporary, func(ctx context.Context) error {
		var err error
		script, err = c.svc.GenerateScript(ctx, c.session, text)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Msg("Script generation failed")
		return c.reply(FallbackText, nil), err
	}

	c.setStep(StepRecording, onStep)
	var speech *gemini.Speech
	err = resilience.Retry(ctx, c.config.Retry, resilience.IsTemporary, func(ctx context.Context) error {
		var err error
		speech, err = c.svc.Synthesize(ctx, script)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Msg("Speech synthesis failed")
		return c.reply(FallbackText, nil), err
	}

	buf, err := c.decoder.Decode(speech.Data)
	if err != nil {
		c.recordDecodeFailure(err)
		log.Warn().Err(err).Str("mime_type", speech.MimeType).Msg("Voice note decode failed, showing script")
		return c.reply(script, nil), err
	}

	if r := c.config.Recorder; r != nil {
		r.RecordDecode(buf.Format.Codec, buf.Duration())
	}
	log.Debug().
		Str("codec", buf.Format.Codec).
		Int("sample_rate", buf.SampleRate()).
		Float64("duration", buf.Duration()).
		Msg("Voice note ready")
	return c.reply(script, buf), nil
}

func (c *Conversation) reply(text string, buf *audio.Buffer) Message {
	msg := newMessage(SenderAssistant, text, buf, c.config.Now())
	c.append(msg)
	return msg
}

func (c *Conversation) append(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	if r := c.config.Recorder; r != nil {
		r.RecordMessage(string(msg.Sender), msg.Kind())
	}
}

func (c *Conversation) setStep(step Step, onStep func(Step)) {
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()

	if onStep != nil {
		onStep(step)
	}
}

func (c *Conversation) recordDecodeFailure(err error) {
	r := c.config.Recorder
	if r == nil {
		return
	}
	stage := "unknown"
	var de *decode.DecodeError
	if errors.As(err, &de) {
		stage = de.Stage
	}
	r.RecordDecodeFailure(stage)
}
