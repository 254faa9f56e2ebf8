package domain

import (
	"time"

	analyticsdomain "coldcall-sim/backend/internal/features/analytics/domain"
	personadomain "coldcall-sim/backend/internal/features/persona/domain"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleAgent Role = "agent"
	RoleOwner Role = "owner"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session holds the state of one simulated cold call.
type Session struct {
	ID           string                         `json:"id"`
	Persona      personadomain.PersonaConfig    `json:"persona"`
	SystemPrompt string                         `json:"-"`
	APIKey       string                         `json:"-"`
	Transcript   []Turn                         `json:"transcript"`
	Analytics    *analyticsdomain.CallAnalytics `json:"analytics,omitempty"`
	Generation   int                            `json:"generation"` // bumped on every reset
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
}

// Clone returns a copy that shares no mutable data with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Persona.AskingPrice != nil {
		price := *s.Persona.AskingPrice
		c.Persona.AskingPrice = &price
	}
	c.Transcript = append([]Turn(nil), s.Transcript...)
	if c.Transcript == nil {
		c.Transcript = []Turn{}
	}
	if s.Analytics != nil {
		a := *s.Analytics
		if s.Analytics.Suggestions != nil {
			a.Suggestions = make([]string, len(s.Analytics.Suggestions))
			copy(a.Suggestions, s.Analytics.Suggestions)
		}
		c.Analytics = &a
	}
	return &c
}

// StartRequest is the request structure for starting a new conversation.
type StartRequest struct {
	Persona personadomain.PersonaConfig `json:"persona"`
	APIKey  string                      `json:"api_key,omitempty"` // falls back to OPENAI_API_KEY
}

// MessageRequest carries one agent message.
type MessageRequest struct {
	Message string `json:"message"`
}

// AnalyticsResponse is returned once a transcript has been analysed.
type AnalyticsResponse struct {
	Session   *Session                       `json:"session"`
	Analytics *analyticsdomain.CallAnalytics `json:"analytics"`
	Report    string                         `json:"report"`
}
