package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/content"
	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session has a message in flight")
	ErrEmptyMessage    = errors.New("message content is required")
	ErrNoDocument      = errors.New("session has no document yet")
)

const (
	msgErrorPrefix      = "Desculpe, ocorreu um erro: "
	msgInitialErrorHint = ". Verifique se a chave da API do OpenAI está configurada corretamente."
)

// ChatSender is the interface that wraps a conversation with the assistant
type ChatSender interface {
	// Method SendMessage sends text making at most maxAttempts attempts; it always returns a response.
	SendMessage(ctx context.Context, text string, maxAttempts int) *models.AssistantResponse
	// Method ThreadID returns the current conversation thread, or "".
	ThreadID() string
	// Method InFlight reports whether a message is being sent.
	InFlight() bool
}

// PromptCompiler is the interface that wraps the lesson wizard
type PromptCompiler interface {
	CompilePrompt(req models.LessonRequest) (string, error)
}

// SessionStore is the interface that wraps the in-memory session storage
type SessionStore interface {
	Put(id string, s *EditorSession)
	Get(id string) (*EditorSession, bool)
	Len() int
}

// EditorSession is one editing conversation: its messages and the current lesson document
type EditorSession struct {
	id        string
	chat      ChatSender
	createdAt time.Time

	mu        sync.Mutex
	busy      bool
	messages  []models.ConversationMessage
	document  string
	updatedAt time.Time
}

// Busy reports whether a message exchange is running
func (s *EditorSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy || s.chat.InFlight()
}

func (s *EditorSession) snapshot() *models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]models.ConversationMessage, len(s.messages))
	copy(messages, s.messages)

	return &models.SessionSnapshot{
		ID:          s.id,
		ThreadID:    s.chat.ThreadID(),
		Messages:    messages,
		Busy:        s.busy || s.chat.InFlight(),
		HasDocument: s.document != "",
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

type sessionService struct {
	store   SessionStore
	lessons PromptCompiler
	newChat func() ChatSender
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewSessionService creates a new editor session service.
// newChat is called once per session to create its own conversation.
func NewSessionService(store SessionStore, lessons PromptCompiler, newChat func() ChatSender, m *metrics.Metrics, logger *zap.Logger) *sessionService {
	return &sessionService{
		store:   store,
		lessons: lessons,
		newChat: newChat,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Create compiles the lesson request into a prompt, opens a session and sends the prompt
// with the initial attempt budget. Validation failures are returned before a session exists.
func (s *sessionService) Create(ctx context.Context, req models.LessonRequest) (*models.SessionSnapshot, error) {
	prompt, err := s.lessons.CompilePrompt(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &EditorSession{
		id:        s.newID(),
		chat:      s.newChat(),
		createdAt: now,
		updatedAt: now,
		busy:      true,
	}
	s.store.Put(session.id, session)
	s.metrics.SetActiveSessions(s.store.Len())

	s.logger.Info("created editor session", zap.String("session_id", session.id))

	s.exchange(ctx, session, prompt, InitialPromptAttempts, msgInitialErrorHint)
	return session.snapshot(), nil
}

// Evicted is the store eviction hook; it keeps the active sessions gauge in step with the store
func (s *sessionService) Evicted(id string, _ *EditorSession) {
	s.metrics.SetActiveSessions(s.store.Len())
	s.logger.Debug("session evicted", zap.String("session_id", id))
}

// Get returns the current view of a session
func (s *sessionService) Get(id string) (*models.SessionSnapshot, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// SendMessage runs one chat turn. ErrSessionBusy is returned while another turn is running.
func (s *sessionService) SendMessage(ctx context.Context, id, text string) (*models.SessionSnapshot, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	session, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.Lock()
	if session.busy || session.chat.InFlight() {
		session.mu.Unlock()
		return nil, ErrSessionBusy
	}
	session.busy = true
	session.mu.Unlock()

	s.exchange(ctx, session, text, ChatTurnAttempts, "")
	return session.snapshot(), nil
}

// Document returns the current lesson document of a session
func (s *sessionService) Document(id string) (string, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return "", ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.document == "" {
		return "", ErrNoDocument
	}
	return session.document, nil
}

// exchange appends the user message, talks to the assistant and records the outcome.
// The caller must have marked the session busy; exchange clears the flag.
func (s *sessionService) exchange(ctx context.Context, session *EditorSession, text string, attempts int, errorHint string) {
	s.appendMessage(session, models.RoleUser, text)

	resp := session.chat.SendMessage(ctx, text, attempts)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.busy = false

	if !resp.Succeeded() {
		s.logger.Warn("assistant exchange failed",
			zap.String("session_id", session.id),
			zap.String("error_type", string(resp.ErrorType)),
			zap.String("error", resp.Error),
		)
		s.appendLocked(session, models.RoleAssistant, msgErrorPrefix+orDefault(resp.Error, "Erro desconhecido")+errorHint)
		return
	}

	doc, matcher := content.Extract(resp.Message)
	s.metrics.RecordExtraction(matcher)
	if doc != session.document {
		session.document = doc
		s.logger.Info("session document updated",
			zap.String("session_id", session.id),
			zap.String("matcher", matcher),
			zap.Int("bytes", len(doc)),
		)
	}
	s.appendLocked(session, models.RoleAssistant, content.CleanChatMessage(resp.Message))
}

func (s *sessionService) appendMessage(session *EditorSession, role models.Role, text string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	s.appendLocked(session, role, text)
}

func (s *sessionService) appendLocked(session *EditorSession, role models.Role, text string) {
	now := s.now()
	session.messages = append(session.messages, models.ConversationMessage{
		ID:        s.newID(),
		Role:      role,
		Content:   text,
		Timestamp: now,
	})
	session.updatedAt = now
}
