package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/export"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/VictorTadashi/AnimaFlow/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLessonService struct {
	prompt string
	err    error
	got    models.LessonRequest
}

func (m *mockLessonService) Options() *catalog.Catalog {
	return catalog.Default()
}

func (m *mockLessonService) CompilePrompt(req models.LessonRequest) (string, error) {
	m.got = req
	return m.prompt, m.err
}

func (m *mockLessonService) Rebalance(t models.TimeAllocation) models.TimeAllocation {
	return services.Rebalance(t)
}

type mockGateway struct {
	resp *models.AssistantResponse
	err  error
	ctx  context.Context
	got  models.AssistantRequest
}

func (m *mockGateway) Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	m.ctx = ctx
	m.got = req
	return m.resp, m.err
}

type mockSessionService struct {
	snap    *models.SessionSnapshot
	doc     string
	err     error
	docErr  error
	gotID   string
	gotText string
}

func (m *mockSessionService) Create(ctx context.Context, req models.LessonRequest) (*models.SessionSnapshot, error) {
	return m.snap, m.err
}

func (m *mockSessionService) Get(id string) (*models.SessionSnapshot, error) {
	m.gotID = id
	return m.snap, m.err
}

func (m *mockSessionService) SendMessage(ctx context.Context, id, text string) (*models.SessionSnapshot, error) {
	m.gotID = id
	m.gotText = text
	return m.snap, m.err
}

func (m *mockSessionService) Document(id string) (string, error) {
	m.gotID = id
	return m.doc, m.docErr
}

type mockExporter struct {
	file      *export.File
	err       error
	gotFormat export.Format
	gotHTML   string
	gotOpts   export.Options
}

func (m *mockExporter) Export(ctx context.Context, format export.Format, html string, opts export.Options) (*export.File, error) {
	m.gotFormat = format
	m.gotHTML = html
	m.gotOpts = opts
	return m.file, m.err
}

type mockImageService struct {
	images      []models.BackgroundImage
	err         error
	gotFilename string
	gotData     string
}

func (m *mockImageService) List(ctx context.Context) ([]models.BackgroundImage, error) {
	return m.images, m.err
}

func (m *mockImageService) Upload(ctx context.Context, filename string, r io.Reader) (*models.ImageUploadResponse, error) {
	m.gotFilename = filename
	data, _ := io.ReadAll(r)
	m.gotData = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return &models.ImageUploadResponse{Filename: filename, ContentType: "image/png", Size: int64(len(data))}, nil
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func serve(h routeRegistrar, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)

	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLessonHandler_GetOptions(t *testing.T) {
	h := NewLessonHandler(&mockLessonService{}, zap.NewNop())

	w := serve(h, http.MethodGet, "/api/v1/lessons/options", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Contains(t, body, "durations")
	assert.Contains(t, body, "strategies")
	assert.NotContains(t, body, "BackgroundImages")
}

func TestLessonHandler_CompilePrompt(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		svcErr         error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success",
			body:           `{"topic":"Marketing Digital"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"prompt":"Crie um roteiro"}`,
		},
		{
			name:           "invalid json",
			body:           `{"topic":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request body"}`,
		},
		{
			name:           "validation error",
			body:           `{}`,
			svcErr:         &models.ValidationError{Fields: map[string]string{"topic": "O tema da aula é obrigatório"}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"error":"validation failed","fields":{"topic":"O tema da aula é obrigatório"}}`,
		},
		{
			name:           "unexpected error",
			body:           `{}`,
			svcErr:         errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"failed to compile prompt"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLessonService{prompt: "Crie um roteiro", err: tt.svcErr}
			h := NewLessonHandler(svc, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/lessons/prompt", strings.NewReader(tt.body), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestLessonHandler_Rebalance(t *testing.T) {
	h := NewLessonHandler(&mockLessonService{}, zap.NewNop())

	w := serve(h, http.MethodPost, "/api/v1/lessons/rebalance", strings.NewReader(`{"ativar":40,"aplicar":60,"avaliar":40}`), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ativar":29,"aplicar":42,"avaliar":29}`, w.Body.String())

	w = serve(h, http.MethodPost, "/api/v1/lessons/rebalance", strings.NewReader(`{"ativar":4611686018427387904,"aplicar":4611686018427387904,"avaliar":0}`), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ativar":49,"aplicar":50,"avaliar":1}`, w.Body.String())
}

func TestAssistantHandler_Chat(t *testing.T) {
	thread := "thread_1"
	tests := []struct {
		name           string
		body           string
		resp           *models.AssistantResponse
		err            error
		expectedStatus int
		expectedType   models.ErrorType
	}{
		{
			name:           "success",
			body:           `{"message":"Olá","threadId":"thread_1"}`,
			resp:           &models.AssistantResponse{ThreadID: thread, Message: "Oi", Status: models.StatusSuccess},
			expectedStatus: http.StatusOK,
		},
		{
			name: "classified failure",
			body: `{"message":"Olá","threadId":null}`,
			err: &models.GatewayError{StatusCode: http.StatusRequestTimeout, Response: &models.AssistantResponse{
				Status: models.StatusError, Error: "demorou", ErrorType: models.ErrorTimeout,
			}},
			expectedStatus: http.StatusRequestTimeout,
			expectedType:   models.ErrorTimeout,
		},
		{
			name:           "unclassified failure",
			body:           `{"message":"Olá"}`,
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   models.ErrorInternal,
		},
		{
			name:           "invalid json",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   models.ErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{resp: tt.resp, err: tt.err}
			h := NewAssistantHandler(gw, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/chat-with-assistant", strings.NewReader(tt.body), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeBody[models.AssistantResponse](t, w)
			assert.Equal(t, tt.expectedType, resp.ErrorType)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "Oi", resp.Message)
				require.NotNil(t, gw.got.ThreadID)
				assert.Equal(t, thread, *gw.got.ThreadID)
			}
		})
	}
}

func TestAssistantHandler_Chat_DetachesFromClient(t *testing.T) {
	gw := &mockGateway{resp: &models.AssistantResponse{Status: models.StatusSuccess}}
	h := NewAssistantHandler(gw, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/v1", h.RegisterRoutes)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat-with-assistant", strings.NewReader(`{"message":"x"}`)).WithContext(ctx)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, gw.ctx)
	assert.NoError(t, gw.ctx.Err())
}

func TestAssistantHandler_Extract(t *testing.T) {
	h := NewAssistantHandler(&mockGateway{}, zap.NewNop())
	body := `{"message":"Aqui está:\n` + "```html" + `\n<h1>Aula</h1>\n` + "```" + `"}`

	w := serve(h, http.MethodPost, "/api/v1/content/extract", strings.NewReader(body), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[models.ExtractResponse](t, w)
	assert.Equal(t, "<h1>Aula</h1>", resp.HTML)
	assert.Equal(t, "Aqui está:", resp.ChatMessage)
}

func TestSessionHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{name: "created", body: `{}`, expectedStatus: http.StatusCreated},
		{name: "invalid json", body: `[`, expectedStatus: http.StatusBadRequest},
		{name: "validation", body: `{}`, err: &models.ValidationError{Fields: map[string]string{"topic": "x"}}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "unexpected", body: `{}`, err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSessionService{snap: &models.SessionSnapshot{ID: "s1"}, err: tt.err}
			h := NewSessionHandler(svc, &mockExporter{}, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/sessions", strings.NewReader(tt.body), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, "s1", decodeBody[models.SessionSnapshot](t, w).ID)
			}
		})
	}
}

func TestSessionHandler_SendMessage(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "ok", expectedStatus: http.StatusOK},
		{name: "not found", err: services.ErrSessionNotFound, expectedStatus: http.StatusNotFound, expectedBody: `{"error":"session not found"}`},
		{name: "busy", err: services.ErrSessionBusy, expectedStatus: http.StatusConflict, expectedBody: `{"error":"a message is already being processed"}`},
		{name: "empty", err: services.ErrEmptyMessage, expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"message content is required"}`},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedBody: `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSessionService{snap: &models.SessionSnapshot{ID: "s1"}, err: tt.err}
			h := NewSessionHandler(svc, &mockExporter{}, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/sessions/s1/messages", strings.NewReader(`{"content":"mude o título"}`), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "s1", svc.gotID)
			assert.Equal(t, "mude o título", svc.gotText)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestSessionHandler_Get(t *testing.T) {
	svc := &mockSessionService{snap: &models.SessionSnapshot{ID: "s1", Busy: true}}
	h := NewSessionHandler(svc, &mockExporter{}, zap.NewNop())

	w := serve(h, http.MethodGet, "/api/v1/sessions/s1", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeBody[models.SessionSnapshot](t, w)
	assert.True(t, snap.Busy)
	assert.Equal(t, "s1", svc.gotID)
}

func TestSessionHandler_GetDocument(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		docErr         error
		expectedStatus int
		expectedType   string
		expectedCSP    string
	}{
		{name: "sandboxed html", expectedStatus: http.StatusOK, expectedType: "text/html; charset=utf-8", expectedCSP: "sandbox"},
		{name: "raw source", query: "?raw=true", expectedStatus: http.StatusOK, expectedType: "text/plain; charset=utf-8"},
		{name: "no document", docErr: services.ErrNoDocument, expectedStatus: http.StatusNotFound, expectedType: "application/json"},
		{name: "no session", docErr: services.ErrSessionNotFound, expectedStatus: http.StatusNotFound, expectedType: "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSessionService{doc: "<h1>Aula</h1>", docErr: tt.docErr}
			h := NewSessionHandler(svc, &mockExporter{}, zap.NewNop())

			w := serve(h, http.MethodGet, "/api/v1/sessions/s1/document"+tt.query, nil, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedCSP, w.Header().Get("Content-Security-Policy"))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "<h1>Aula</h1>", w.Body.String())
			}
		})
	}
}

func TestSessionHandler_Export(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		docErr         error
		exportErr      error
		expectedStatus int
		expectedLayout export.Layout
	}{
		{name: "pptx a4", target: "/api/v1/sessions/s1/export/pptx?layout=a4&filename=aula", expectedStatus: http.StatusOK, expectedLayout: export.LayoutA4},
		{name: "pdf default layout", target: "/api/v1/sessions/s1/export/pdf", expectedStatus: http.StatusOK, expectedLayout: export.Layout16x9},
		{name: "unknown format", target: "/api/v1/sessions/s1/export/docx", expectedStatus: http.StatusBadRequest},
		{name: "unknown layout", target: "/api/v1/sessions/s1/export/pptx?layout=4x3", expectedStatus: http.StatusBadRequest},
		{name: "no document", target: "/api/v1/sessions/s1/export/pdf", docErr: services.ErrNoDocument, expectedStatus: http.StatusNotFound},
		{name: "export failure", target: "/api/v1/sessions/s1/export/pdf", exportErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSessionService{doc: "<h1>Aula</h1>", docErr: tt.docErr}
			exp := &mockExporter{
				file: &export.File{Filename: "aula.pptx", ContentType: "application/octet-stream", Data: []byte("deck")},
				err:  tt.exportErr,
			}
			h := NewSessionHandler(svc, exp, zap.NewNop())

			w := serve(h, http.MethodGet, tt.target, nil, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			assert.Equal(t, "deck", w.Body.String())
			assert.Equal(t, `attachment; filename=aula.pptx`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, "<h1>Aula</h1>", exp.gotHTML)
			assert.Equal(t, tt.expectedLayout, exp.gotOpts.Layout)
		})
	}
}

func TestExportHandler_Export(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		body           string
		exportErr      error
		expectedStatus int
		expectedBody   string
	}{
		{name: "html", format: "html", body: `{"html":"<p>x</p>","filename":"aula"}`, expectedStatus: http.StatusOK},
		{name: "unknown format", format: "docx", body: `{"html":"<p>x</p>"}`, expectedStatus: http.StatusBadRequest},
		{name: "invalid json", format: "pdf", body: `{`, expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"invalid request body"}`},
		{name: "unknown layout", format: "pptx", body: `{"html":"<p>x</p>","layout":"wide"}`, expectedStatus: http.StatusBadRequest},
		{name: "empty document", format: "pdf", body: `{"html":" "}`, exportErr: export.ErrEmptyDocument, expectedStatus: http.StatusBadRequest, expectedBody: `{"error":"html is required"}`},
		{name: "failure", format: "pdf", body: `{"html":"<p>x</p>"}`, exportErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedBody: `{"error":"export failed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &mockExporter{
				file: &export.File{Filename: "aula.html", ContentType: "text/html; charset=utf-8", Data: []byte("<p>x</p>")},
				err:  tt.exportErr,
			}
			h := NewExportHandler(exp, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/exports/"+tt.format, strings.NewReader(tt.body), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, export.FormatHTML, exp.gotFormat)
				assert.Equal(t, "aula", exp.gotOpts.Filename)
				assert.Equal(t, "<p>x</p>", w.Body.String())
			}
		})
	}
}

func TestImageHandler_List(t *testing.T) {
	svc := &mockImageService{images: []models.BackgroundImage{{Filename: "HomeCapa.jpg", ContentType: "image/jpeg", Data: []byte{1}}}}
	h := NewImageHandler(svc, zap.NewNop())

	w := serve(h, http.MethodGet, "/api/v1/images", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"filename":"HomeCapa.jpg","contentType":"image/jpeg"}]`, w.Body.String())

	svc.err = errors.New("db down")
	w = serve(h, http.MethodGet, "/api/v1/images", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImageHandler_Upload(t *testing.T) {
	tests := []struct {
		name           string
		withFile       bool
		svcErr         error
		expectedStatus int
	}{
		{name: "stored", withFile: true, expectedStatus: http.StatusCreated},
		{name: "missing file", expectedStatus: http.StatusBadRequest},
		{name: "unsupported", withFile: true, svcErr: services.ErrUnsupportedImage, expectedStatus: http.StatusBadRequest},
		{name: "failure", withFile: true, svcErr: errors.New("disk full"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			if tt.withFile {
				fw, err := mw.CreateFormFile("file", "Capa.png")
				require.NoError(t, err)
				fw.Write([]byte("png"))
			} else {
				require.NoError(t, mw.WriteField("other", "x"))
			}
			require.NoError(t, mw.Close())

			svc := &mockImageService{err: tt.svcErr}
			h := NewImageHandler(svc, zap.NewNop())

			w := serve(h, http.MethodPost, "/api/v1/images", &body, http.Header{"Content-Type": {mw.FormDataContentType()}})

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.withFile {
				assert.Equal(t, "Capa.png", svc.gotFilename)
				assert.Equal(t, "png", svc.gotData)
			}
		})
	}
}
