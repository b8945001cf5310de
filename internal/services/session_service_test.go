package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/VictorTadashi/AnimaFlow/internal/metrics"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/repositories"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockChatSender returns scripted responses and records what it was asked
type mockChatSender struct {
	mu        sync.Mutex
	responses []*models.AssistantResponse
	texts     []string
	attempts  []int
	threadID  string
	inFlight  bool
	release   chan struct{}
	started   chan struct{}
}

func (m *mockChatSender) SendMessage(ctx context.Context, text string, maxAttempts int) *models.AssistantResponse {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.attempts = append(m.attempts, maxAttempts)
	resp := m.responses[len(m.responses)-1]
	if len(m.texts) <= len(m.responses) {
		resp = m.responses[len(m.texts)-1]
	}
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if resp.Succeeded() {
		m.threadID = resp.ThreadID
	}
	return resp
}

func (m *mockChatSender) ThreadID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threadID
}

func (m *mockChatSender) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// mockPromptCompiler returns a fixed prompt or error
type mockPromptCompiler struct {
	prompt string
	err    error
}

func (m *mockPromptCompiler) CompilePrompt(req models.LessonRequest) (string, error) {
	return m.prompt, m.err
}

func newTestSessionService(chat *mockChatSender, compiler PromptCompiler) *sessionService {
	store := repositories.NewSessionRepository[*EditorSession](time.Hour, zap.NewNop())
	svc := NewSessionService(store, compiler, func() ChatSender { return chat }, nil, zap.NewNop())

	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	svc.now = func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func okResponse(message string) *models.AssistantResponse {
	return &models.AssistantResponse{ThreadID: "thread_1", Message: message, Status: models.StatusSuccess}
}

func errResponse(message string) *models.AssistantResponse {
	return &models.AssistantResponse{Status: models.StatusError, Error: message, ErrorType: models.ErrorClient}
}

func TestNewSessionService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := repositories.NewSessionRepository[*EditorSession](time.Hour, logger)
	compiler := &mockPromptCompiler{}

	svc := NewSessionService(store, compiler, nil, nil, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, store, svc.store)
	assert.Equal(t, compiler, svc.lessons)
	assert.Equal(t, logger, svc.logger)
}

func TestSessionService_EvictedUpdatesActiveSessions(t *testing.T) {
	m := metrics.NewMetrics()
	store := repositories.NewSessionRepository[*EditorSession](time.Millisecond, zap.NewNop())
	chat := &mockChatSender{responses: []*models.AssistantResponse{okResponse("um"), okResponse("dois")}}
	svc := NewSessionService(store, &mockPromptCompiler{prompt: "Crie um roteiro"}, func() ChatSender { return chat }, m, zap.NewNop())
	store.OnEvict(svc.Evicted)

	_, err := svc.Create(context.Background(), validLessonRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validLessonRequest())
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ActiveSessions))

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, store.EvictIdle(nil))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveSessions))
}

func TestSessionService_Create(t *testing.T) {
	chat := &mockChatSender{responses: []*models.AssistantResponse{
		okResponse("Aqui está:\n```html\n<h1>Aula</h1>\n```"),
	}}
	svc := newTestSessionService(chat, &mockPromptCompiler{prompt: "Crie um roteiro"})

	snap, err := svc.Create(context.Background(), validLessonRequest())

	require.NoError(t, err)
	assert.Equal(t, "id-1", snap.ID)
	assert.Equal(t, "thread_1", snap.ThreadID)
	assert.False(t, snap.Busy)
	assert.True(t, snap.HasDocument)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, models.RoleUser, snap.Messages[0].Role)
	assert.Equal(t, "Crie um roteiro", snap.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, snap.Messages[1].Role)
	assert.Equal(t, "Aqui está:", snap.Messages[1].Content)
	assert.Equal(t, []int{InitialPromptAttempts}, chat.attempts)

	doc, err := svc.Document(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Aula</h1>", doc)
}

func TestSessionService_Create_InvalidRequest(t *testing.T) {
	chat := &mockChatSender{}
	vErr := &models.ValidationError{Fields: map[string]string{"topic": "O tema da aula é obrigatório"}}
	svc := newTestSessionService(chat, &mockPromptCompiler{err: vErr})

	snap, err := svc.Create(context.Background(), models.LessonRequest{})

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, vErr)
	assert.Empty(t, chat.texts)
	assert.Equal(t, 0, svc.store.Len())
}

func TestSessionService_Create_AssistantFailure(t *testing.T) {
	chat := &mockChatSender{responses: []*models.AssistantResponse{errResponse("Erro de conexão")}}
	svc := newTestSessionService(chat, &mockPromptCompiler{prompt: "p"})

	snap, err := svc.Create(context.Background(), validLessonRequest())

	require.NoError(t, err)
	assert.False(t, snap.HasDocument)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t,
		"Desculpe, ocorreu um erro: Erro de conexão. Verifique se a chave da API do OpenAI está configurada corretamente.",
		snap.Messages[1].Content)

	_, err = svc.Document(snap.ID)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestSessionService_SendMessage(t *testing.T) {
	tests := []struct {
		name             string
		responses        []*models.AssistantResponse
		expectedDocument string
		expectedReply    string
	}{
		{
			name: "new document replaces old one",
			responses: []*models.AssistantResponse{
				okResponse("```html\n<p>v1</p>\n```"),
				okResponse("Ajustei.\n```html\n<p>v2</p>\n```"),
			},
			expectedDocument: "<p>v2</p>",
			expectedReply:    "Ajustei.",
		},
		{
			name: "same document kept",
			responses: []*models.AssistantResponse{
				okResponse("```html\n<p>v1</p>\n```"),
				okResponse("```html\n<p>v1</p>\n```"),
			},
			expectedDocument: "<p>v1</p>",
			expectedReply:    "Roteiro de aula gerado com sucesso! Você pode visualizar o resultado no painel à direita.",
		},
		{
			name: "failure keeps document",
			responses: []*models.AssistantResponse{
				okResponse("```html\n<p>v1</p>\n```"),
				errResponse("Limite de uso atingido."),
			},
			expectedDocument: "<p>v1</p>",
			expectedReply:    "Desculpe, ocorreu um erro: Limite de uso atingido.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChatSender{responses: tt.responses}
			svc := newTestSessionService(chat, &mockPromptCompiler{prompt: "p"})
			created, err := svc.Create(context.Background(), validLessonRequest())
			require.NoError(t, err)

			snap, err := svc.SendMessage(context.Background(), created.ID, "  mude o título  ")

			require.NoError(t, err)
			require.Len(t, snap.Messages, 4)
			assert.Equal(t, "mude o título", snap.Messages[2].Content)
			assert.Equal(t, tt.expectedReply, snap.Messages[3].Content)
			assert.Equal(t, []int{InitialPromptAttempts, ChatTurnAttempts}, chat.attempts)

			doc, err := svc.Document(created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDocument, doc)
		})
	}
}

func TestSessionService_SendMessage_Errors(t *testing.T) {
	chat := &mockChatSender{responses: []*models.AssistantResponse{okResponse("oi")}}
	svc := newTestSessionService(chat, &mockPromptCompiler{prompt: "p"})
	created, err := svc.Create(context.Background(), validLessonRequest())
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), "missing", "oi")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SendMessage(context.Background(), created.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Document("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_SendMessage_Busy(t *testing.T) {
	chat := &mockChatSender{responses: []*models.AssistantResponse{okResponse("oi")}}
	svc := newTestSessionService(chat, &mockPromptCompiler{prompt: "p"})
	created, err := svc.Create(context.Background(), validLessonRequest())
	require.NoError(t, err)

	chat.started = make(chan struct{})
	chat.release = make(chan struct{})

	done := make(chan error)
	go func() {
		_, err := svc.SendMessage(context.Background(), created.ID, "primeira")
		done <- err
	}()
	<-chat.started

	snap, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, snap.Busy)

	_, err = svc.SendMessage(context.Background(), created.ID, "segunda")
	assert.True(t, errors.Is(err, ErrSessionBusy))

	close(chat.release)
	require.NoError(t, <-done)

	snap, err = svc.Get(created.ID)
	require.NoError(t, err)
	assert.False(t, snap.Busy)
	assert.Len(t, snap.Messages, 4)
}
