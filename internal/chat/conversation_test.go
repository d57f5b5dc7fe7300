// ABOUTME: Tests for the conversation state machine
// ABOUTME: Uses a fake service to exercise replies, fallbacks and retries
package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pak-ariess/voicenote-go/internal/gemini"
	"github.com/pak-ariess/voicenote-go/internal/resilience"
	"github.com/pak-ariess/voicenote-go/pkg/audio/decode"
)

type fakeService struct {
	mu sync.Mutex

	scriptErrs []error
	speechErrs []error
	script     string
	speech     *gemini.Speech

	scriptCalls int
	speechCalls int
	block       chan struct{}
}

func (f *fakeService) GenerateScript(ctx context.Context, s *gemini.Session, text string) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scriptCalls++
	if len(f.scriptErrs) > 0 {
		err := f.scriptErrs[0]
		f.scriptErrs = f.scriptErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.script, nil
}

func (f *fakeService) Synthesize(ctx context.Context, script string) (*gemini.Speech, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speechCalls++
	if len(f.speechErrs) > 0 {
		err := f.speechErrs[0]
		f.speechErrs = f.speechErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.speech, nil
}

type fakeRecorder struct {
	decodes  []string
	failures []string
	messages []string
}

func (r *fakeRecorder) RecordDecode(codec string, seconds float64) { r.decodes = append(r.decodes, codec) }
func (r *fakeRecorder) RecordDecodeFailure(stage string)          { r.failures = append(r.failures, stage) }
func (r *fakeRecorder) RecordMessage(sender, kind string) {
	r.messages = append(r.messages, sender+"/"+kind)
}

// pcmSpeech is four headerless samples
var pcmSpeech = &gemini.Speech{
	Data:     base64.StdEncoding.EncodeToString([]byte{0x00, 0x00, 0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F}),
	MimeType: "audio/L16;codec=pcm;rate=24000",
}

func newTestConversation(svc *fakeService, rec *fakeRecorder) *Conversation {
	fixed := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	config := Config{
		Retry: resilience.RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        time.Millisecond,
			BackoffMultiplier: 1,
		},
		Now: func() time.Time { return fixed },
	}
	// A nil *fakeRecorder stored in the interface would not compare equal to nil
	if rec != nil {
		config.Recorder = rec
	}
	return New(svc, decode.New(), gemini.NewSession("persona"), config)
}

func TestNewSeedsWelcome(t *testing.T) {
	c := newTestConversation(&fakeService{}, nil)

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected welcome message, got %d messages", len(msgs))
	}
	if msgs[0].Sender != SenderAssistant || msgs[0].Text != WelcomeText || msgs[0].HasAudio() {
		t.Errorf("unexpected welcome message %+v", msgs[0])
	}
	if msgs[0].ID == "" {
		t.Error("expected message ID")
	}
}

func TestSendVoiceReply(t *testing.T) {
	svc := &fakeService{script: "Halo, ini Pak ARIESS.", speech: pcmSpeech}
	rec := &fakeRecorder{}
	c := newTestConversation(svc, rec)

	var steps []Step
	reply, err := c.Send(context.Background(), "  Apa itu gravitasi?  ", func(s Step) { steps = append(steps, s) })
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !reply.HasAudio() || reply.Text != "Halo, ini Pak ARIESS." {
		t.Fatalf("expected voice reply with script, got %+v", reply)
	}
	if reply.Audio.Frames() != 4 || reply.Audio.SampleRate() != 24000 {
		t.Errorf("unexpected buffer %d frames at %d Hz", reply.Audio.Frames(), reply.Audio.SampleRate())
	}

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Sender != SenderUser || msgs[1].Text != "Apa itu gravitasi?" {
		t.Errorf("expected trimmed user message, got %+v", msgs[1])
	}
	if msgs[2].ID != reply.ID {
		t.Error("expected reply to be the last message")
	}

	want := []Step{StepTyping, StepRecording, StepIdle}
	if len(steps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d: expected %v, got %v", i, want[i], steps[i])
		}
	}
	if c.Busy() || c.Step() != StepIdle {
		t.Error("expected idle conversation after Send")
	}

	if len(rec.decodes) != 1 || rec.decodes[0] != "pcm" {
		t.Errorf("expected pcm decode recorded, got %v", rec.decodes)
	}
	if rec.messages[len(rec.messages)-1] != "assistant/voice" {
		t.Errorf("expected voice message recorded, got %v", rec.messages)
	}
}

func TestSendEmpty(t *testing.T) {
	c := newTestConversation(&fakeService{}, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.Send(context.Background(), text, nil); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q): expected ErrEmptyMessage, got %v", text, err)
		}
	}
	if len(c.Messages()) != 1 {
		t.Error("blank input must not be appended")
	}
}

func TestSendWhileBusy(t *testing.T) {
	svc := &fakeService{script: "ok", speech: pcmSpeech, block: make(chan struct{})}
	c := newTestConversation(svc, nil)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Send(context.Background(), "pertama", func(s Step) {
			if s == StepTyping {
				close(started)
			}
		})
	}()

	<-started
	if _, err := c.Send(context.Background(), "kedua", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(svc.block)
	<-done

	for _, m := range c.Messages() {
		if m.Text == "kedua" {
			t.Error("message sent while busy was appended")
		}
	}
}

func TestSendRemoteFailureFallsBack(t *testing.T) {
	tests := []struct {
		name       string
		svc        *fakeService
		wantScript int
		wantSpeech int
	}{
		{
			name:       "script fails permanently",
			svc:        &fakeService{scriptErrs: []error{&gemini.RemoteServiceError{Op: gemini.OpGenerateScript, StatusCode: 400, Err: errors.New("bad")}}},
			wantScript: 1,
			wantSpeech: 0,
		},
		{
			name: "speech keeps failing",
			svc: &fakeService{
				script: "naskah",
				speechErrs: []error{
					&gemini.RemoteServiceError{Op: gemini.OpSynthesize, StatusCode: 503, Err: errors.New("down")},
					&gemini.RemoteServiceError{Op: gemini.OpSynthesize, StatusCode: 503, Err: errors.New("down")},
					&gemini.RemoteServiceError{Op: gemini.OpSynthesize, StatusCode: 503, Err: errors.New("down")},
				},
			},
			wantScript: 1,
			wantSpeech: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConversation(tt.svc, nil)

			reply, err := c.Send(context.Background(), "halo", nil)
			if !gemini.IsRemoteServiceError(err) {
				t.Fatalf("expected RemoteServiceError, got %v", err)
			}
			if reply.Text != FallbackText || reply.HasAudio() {
				t.Errorf("expected apology text, got %+v", reply)
			}
			if tt.svc.scriptCalls != tt.wantScript || tt.svc.speechCalls != tt.wantSpeech {
				t.Errorf("expected %d/%d calls, got %d/%d", tt.wantScript, tt.wantSpeech, tt.svc.scriptCalls, tt.svc.speechCalls)
			}
			if c.Busy() {
				t.Error("expected conversation idle after failure")
			}
		})
	}
}

func TestSendRetriesTemporaryErrors(t *testing.T) {
	svc := &fakeService{
		script:     "naskah",
		speech:     pcmSpeech,
		scriptErrs: []error{&gemini.RemoteServiceError{Op: gemini.OpGenerateScript, StatusCode: 429, Err: errors.New("slow down")}},
	}
	c := newTestConversation(svc, nil)

	reply, err := c.Send(context.Background(), "halo", nil)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if svc.scriptCalls != 2 {
		t.Errorf("expected 2 script calls, got %d", svc.scriptCalls)
	}
	if !reply.HasAudio() {
		t.Error("expected voice reply after retry")
	}
}

func TestSendDecodeFailureShowsScript(t *testing.T) {
	svc := &fakeService{script: "Ini naskahnya.", speech: &gemini.Speech{Data: "%%%not base64%%%"}}
	rec := &fakeRecorder{}
	c := newTestConversation(svc, rec)

	reply, err := c.Send(context.Background(), "halo", nil)
	if !decode.IsDecodeError(err) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if reply.Text != "Ini naskahnya." || reply.HasAudio() {
		t.Errorf("expected script as text, got %+v", reply)
	}
	if len(rec.failures) != 1 || rec.failures[0] != "base64" {
		t.Errorf("expected base64 failure recorded, got %v", rec.failures)
	}
	if rec.messages[len(rec.messages)-1] != "assistant/text" {
		t.Errorf("expected text message recorded, got %v", rec.messages)
	}
}

func TestStepString(t *testing.T) {
	if StepTyping.String() != "Pak ARIESS sedang mengetik..." {
		t.Errorf("unexpected typing label %q", StepTyping.String())
	}
	if StepRecording.String() != "Pak ARIESS sedang merekam suara..." {
		t.Errorf("unexpected recording label %q", StepRecording.String())
	}
	if StepIdle.String() != "" {
		t.Errorf("expected empty idle label, got %q", StepIdle.String())
	}
}

func TestSendWithoutRecorder(t *testing.T) {
	svc := &fakeService{script: "naskah", speech: &gemini.Speech{Data: "%%%"}}
	c := newTestConversation(svc, nil)

	reply, err := c.Send(context.Background(), "halo", nil)
	if !decode.IsDecodeError(err) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if reply.Text != "naskah" || reply.HasAudio() {
		t.Errorf("expected text fallback, got %+v", reply)
	}
	if len(c.Messages()) != 3 {
		t.Errorf("expected welcome, user and reply, got %d messages", len(c.Messages()))
	}
}
