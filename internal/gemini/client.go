// ABOUTME: Gemini client built on google.golang.org/genai
// ABOUTME: Generates spoken scripts and synthesizes them to audio
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/pak-ariess/voicenote-go/internal/observability"
)

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/"
	DefaultChatModel = "gemini-2.5-flash"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice     = "Fenrir"
	DefaultTimeout   = 60 * time.Second

	OpGenerateScript = "generate script"
	OpSynthesize     = "synthesize speech"
)

// Config holds client configuration
type Config struct {
	APIKey    string
	BaseURL   string
	ChatModel string
	TTSModel  string
	Voice     string

	// Timeout bounds each request
	Timeout time.Duration

	// HTTPClient overrides the default client
	HTTPClient *http.Client

	// OnRequest is called after every round trip
	OnRequest func(op string, started time.Time, err error)
}

// Client calls the Gemini API
type Client struct {
	config Config
	genai  *genai.Client
}

// NewClient creates a client, filling unset fields with defaults
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.ChatModel == "" {
		config.ChatModel = DefaultChatModel
	}
	if config.TTSModel == "" {
		config.TTSModel = DefaultTTSModel
	}
	if config.Voice == "" {
		config.Voice = DefaultVoice
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  config.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		config: config,
		genai:  gc,
	}, nil
}

// GenerateScript sends text as the next user turn of s and returns the
// model's reply. The exchange is added to the session only on success.
func (c *Client) GenerateScript(ctx context.Context, s *Session, text string) (string, error) {
	var genConfig *genai.GenerateContentConfig
	if s.SystemInstruction != "" {
		genConfig = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(s.SystemInstruction, genai.RoleUser),
		}
	}

	var resp *genai.GenerateContentResponse
	err := c.call(ctx, OpGenerateScript, c.config.ChatModel, func(ctx context.Context) error {
		chat, err := c.genai.Chats.Create(ctx, c.config.ChatModel, genConfig, s.History())
		if err != nil {
			return err
		}
		resp, err = chat.Send(ctx, genai.NewPartFromText(text))
		return err
	})
	if err != nil {
		return "", err
	}

	reply := firstContent(resp)
	script := strings.TrimSpace(joinText(reply))
	if script == "" {
		return "", &RemoteServiceError{Op: OpGenerateScript, StatusCode: http.StatusOK, Err: emptyReason(resp)}
	}

	reply.Role = genai.RoleModel
	s.commit(genai.NewContentFromText(text, genai.RoleUser), reply)
	return script, nil
}

// Synthesize converts script to speech with the configured voice
func (c *Client) Synthesize(ctx context.Context, script string) (*Speech, error) {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.config.Voice},
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(script, genai.RoleUser)}

	var resp *genai.GenerateContentResponse
	err := c.call(ctx, OpSynthesize, c.config.TTSModel, func(ctx context.Context) error {
		var err error
		resp, err = c.genai.Models.GenerateContent(ctx, c.config.TTSModel, contents, genConfig)
		return err
	})
	if err != nil {
		return nil, err
	}

	if reply := firstContent(resp); reply != nil {
		for _, part := range reply.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Speech{
					Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, &RemoteServiceError{Op: OpSynthesize, StatusCode: http.StatusOK, Err: ErrNoAudio}
}

// call runs one round trip under the request timeout, reports it to
// OnRequest and converts failures to RemoteServiceError
func (c *Client) call(ctx context.Context, op, model string, fn func(context.Context) error) (err error) {
	started := time.Now()
	logger := observability.WithCorrelationID("")
	defer func() {
		if c.config.OnRequest != nil {
			c.config.OnRequest(op, started, err)
		}
		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.Str("op", op).Str("model", model).Dur("latency", time.Since(started)).Msg("Remote request finished")
	}()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		return remoteError(op, err)
	}
	log.Debug().Str("op", op).Msg("Remote response decoded")
	return nil
}

// remoteError wraps err with the HTTP status of an API error, or zero when
// no response was received
func remoteError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteServiceError{Op: op, StatusCode: apiErr.Code, Err: apiMessage(apiErr)}
	}
	return &RemoteServiceError{Op: op, Err: err}
}

func apiMessage(apiErr genai.APIError) error {
	msg := strings.TrimSpace(apiErr.Message)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty body"
	}
	if apiErr.Status != "" && !strings.Contains(apiErr.Status, " ") {
		return fmt.Errorf("%s: %s", apiErr.Status, msg)
	}
	return errors.New(msg)
}

func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	return resp.Candidates[0].Content
}

func joinText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func emptyReason(resp *genai.GenerateContentResponse) error {
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w: blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
		return fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}
	return ErrEmptyResponse
}
