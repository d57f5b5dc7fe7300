// ABOUTME: Explicit chat session state
// ABOUTME: Holds the system instruction and completed exchanges
package gemini

import (
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Session is a multi-turn chat owned by the caller
type Session struct {
	ID                string
	SystemInstruction string

	mu      sync.Mutex
	history []*genai.Content
}

// NewSession starts an empty chat with the given system instruction
func NewSession(systemInstruction string) *Session {
	return &Session{
		ID:                uuid.New().String(),
		SystemInstruction: systemInstruction,
	}
}

// History returns a copy of the completed turns
func (s *Session) History() []*genai.Content {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*genai.Content, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of recorded turns
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Reset forgets the conversation but keeps the system instruction
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// commit records a completed exchange. A failed exchange is never recorded
// so the history always alternates user and model turns.
func (s *Session) commit(user, reply *genai.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, user, reply)
}
