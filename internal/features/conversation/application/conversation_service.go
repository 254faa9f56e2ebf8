package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	analyticsdomain "coldcall-sim/backend/internal/features/analytics/domain"
	"coldcall-sim/backend/internal/features/conversation/domain"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
	personaapp "coldcall-sim/backend/internal/features/persona/application"
)

var (
	// ErrEmptyMessage is returned when the agent sends nothing.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrAnalyticsReady means the call is over; a new conversation must be started.
	ErrAnalyticsReady = errors.New("this conversation has already been analysed; start a new conversation to continue")
	// ErrEmptyReply means the model finished without saying anything.
	ErrEmptyReply = errors.New("the home-owner did not answer")
	// ErrStaleConversation means the session changed while a remote call was in flight.
	ErrStaleConversation = errors.New("the conversation changed while the request was running; please retry")
)

// CallAnalyzer scores a finished transcript.
type CallAnalyzer interface {
	Analyze(ctx context.Context, transcript []domain.Turn) (*analyticsdomain.CallAnalytics, error)
}

// StreamerFactory builds a reply streamer for an API key.
type StreamerFactory func(apiKey string) (infrastructure.ReplyStreamer, error)

// AnalyzerFactory builds an analyzer for an API key.
type AnalyzerFactory func(apiKey string) (CallAnalyzer, error)

// ConversationService defines the interface for the conversation application service.
type ConversationService interface {
	Start(ctx context.Context, req *domain.StartRequest) (*domain.Session, error)
	Get(id string) (*domain.Session, error)
	SendMessage(ctx context.Context, id, message string, onToken func(string)) (*domain.Session, string, error)
	RequestAnalytics(ctx context.Context, id string) (*domain.Session, error)
	Reset(id string) (*domain.Session, error)
	Delete(id string) error
}

// conversationService is the implementation of ConversationService.
type conversationService struct {
	store         *sessionStore
	streamers     StreamerFactory
	analyzers     AnalyzerFactory
	defaultAPIKey string
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewConversationService creates a new instance of conversationService.
// defaultAPIKey is used for sessions started without their own key.
func NewConversationService(streamers StreamerFactory, analyzers AnalyzerFactory, defaultAPIKey string, log logrus.FieldLogger) ConversationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &conversationService{
		store:         newSessionStore(),
		streamers:     streamers,
		analyzers:     analyzers,
		defaultAPIKey: strings.TrimSpace(defaultAPIKey),
		log:           log.WithField("component", "conversation-service"),
		now:           time.Now,
	}
}

// Start validates the persona and opens a new session with an empty transcript.
func (s *conversationService) Start(_ context.Context, req *domain.StartRequest) (*domain.Session, error) {
	if err := req.Persona.Validate(); err != nil {
		return nil, err
	}
	session := &domain.Session{
		ID:         uuid.NewString(),
		Persona:    req.Persona,
		APIKey:     strings.TrimSpace(req.APIKey),
		Transcript: []domain.Turn{},
	}
	if _, err := s.credential(session); err != nil {
		return nil, err
	}
	session.SystemPrompt = personaapp.BuildSystemPrompt(req.Persona)
	session.CreatedAt = s.now()
	session.UpdatedAt = session.CreatedAt
	s.store.put(session)

	s.log.WithFields(logrus.Fields{"session": session.ID, "owner": req.Persona.OwnerName}).Info("conversation started")
	s.log.WithField("session", session.ID).Debug(session.SystemPrompt)
	return session.Clone(), nil
}

func (s *conversationService) Get(id string) (*domain.Session, error) {
	return s.store.get(id)
}

// SendMessage streams the owner's reply to message. The transcript only grows
// once the reply is complete.
func (s *conversationService) SendMessage(ctx context.Context, id, message string, onToken func(string)) (*domain.Session, string, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, "", ErrEmptyMessage
	}
	if onToken == nil {
		onToken = func(string) {}
	}
	session, err := s.store.get(id)
	if err != nil {
		return nil, "", err
	}
	if session.Analytics != nil {
		return nil, "", ErrAnalyticsReady
	}
	apiKey, err := s.credential(session)
	if err != nil {
		return nil, "", err
	}
	streamer, err := s.streamers(apiKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create reply streamer: %w", err)
	}

	reply, err := streamer.Stream(ctx, infrastructure.PromptContext{
		SystemPrompt: session.SystemPrompt,
		History:      session.Transcript,
		Input:        text,
	}, onToken)
	if err != nil {
		s.log.WithField("session", id).WithError(err).Error("owner reply failed")
		return nil, "", fmt.Errorf("failed to generate owner reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		s.log.WithField("session", id).Warn("owner reply was empty")
		return nil, "", ErrEmptyReply
	}

	updated, err := s.store.update(id, func(current *domain.Session) error {
		if !sameConversation(current, session) {
			return ErrStaleConversation
		}
		current.Transcript = append(current.Transcript,
			domain.Turn{Role: domain.RoleAgent, Content: text},
			domain.Turn{Role: domain.RoleOwner, Content: reply},
		)
		current.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, reply, nil
}

// RequestAnalytics analyses the current transcript once. On success the
// analytics replace any previous result and the transcript is cleared.
func (s *conversationService) RequestAnalytics(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.store.get(id)
	if err != nil {
		return nil, err
	}
	if session.Analytics != nil {
		return nil, ErrAnalyticsReady
	}
	apiKey, err := s.credential(session)
	if err != nil {
		return nil, err
	}
	analyzer, err := s.analyzers(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	analytics, err := analyzer.Analyze(ctx, session.Transcript)
	if err != nil {
		s.log.WithField("session", id).WithError(err).Error("analytics failed")
		return nil, err
	}

	return s.store.update(id, func(current *domain.Session) error {
		if !sameConversation(current, session) {
			return ErrStaleConversation
		}
		current.Analytics = analytics
		current.Transcript = []domain.Turn{}
		current.UpdatedAt = s.now()
		return nil
	})
}

// Reset starts a new conversation with the same persona.
func (s *conversationService) Reset(id string) (*domain.Session, error) {
	session, err := s.store.update(id, func(current *domain.Session) error {
		current.Transcript = []domain.Turn{}
		current.Analytics = nil
		current.Generation++
		current.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"session": id, "generation": session.Generation}).Info("conversation reset")
	return session, nil
}

func (s *conversationService) Delete(id string) error {
	return s.store.delete(id)
}

// credential resolves the API key for a session: its own key, else the default.
func (s *conversationService) credential(session *domain.Session) (string, error) {
	if session.APIKey != "" {
		return session.APIKey, nil
	}
	if s.defaultAPIKey != "" {
		return s.defaultAPIKey, nil
	}
	return "", infrastructure.ErrMissingCredential
}

// sameConversation reports whether current is still the conversation snapshot was taken from.
func sameConversation(current, snapshot *domain.Session) bool {
	return current.Generation == snapshot.Generation &&
		len(current.Transcript) == len(snapshot.Transcript) &&
		(current.Analytics == nil) == (snapshot.Analytics == nil)
}
