package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	conversationRepo "staybot/database/repository/conversation"
	"staybot/handlers"
	"staybot/middleware"
	"staybot/routes"
	"staybot/services/booking"
	"staybot/services/chat"
	"staybot/services/intelligence"
	"staybot/utils"
)

type scriptedLLM struct {
	replies []*intelligence.Reply
	err     error
}

func (l *scriptedLLM) Complete(_ context.Context, req intelligence.CompletionRequest) (*intelligence.Reply, error) {
	if l.err != nil {
		return nil, l.err
	}
	if len(l.replies) == 0 {
		return &intelligence.Reply{Content: req.Messages[len(req.Messages)-1].Content}, nil
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r, nil
}

type testServer struct {
	router *gin.Engine
	repo   *conversationRepo.MemoryConversationRepo
	llm    *scriptedLLM
}

func newTestServer(t *testing.T, hotel http.HandlerFunc) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hotelSrv := httptest.NewServer(hotel)
	t.Cleanup(hotelSrv.Close)

	logger := zap.NewNop()
	repo := conversationRepo.NewMemoryConversationRepo()
	llm := &scriptedLLM{}
	svc := chat.NewDefaultChatService(repo, llm, booking.NewClient(hotelSrv.URL+"/rooms", hotelSrv.URL+"/book"), logger)

	bundle := handlers.NewHandlerBundle(
		handlers.NewChatHandler(svc, logger),
		&handlers.HealthHandler{Monitor: utils.NewHealthMonitor(0, logger)},
	)

	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, bundle)

	return &testServer{router: router, repo: repo, llm: llm}
}

func (s *testServer) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func hotelOK(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/rooms":
		_, _ = io.WriteString(w, `[{"id":1,"name":"Deluxe","price":120}]`)
	case "/book":
		_, _ = io.WriteString(w, `{"bookingId":"B-7","message":"Booking confirmed"}`)
	default:
		http.NotFound(w, r)
	}
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t, hotelOK)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to my hotel booking chatbot API.", w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, hotelOK)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestChatMissingFields(t *testing.T) {
	s := newTestServer(t, hotelOK)

	for _, body := range []string{`{}`, `{"userId":"u1"}`, `{"message":"hi"}`, `{"userId":"","message":"hi"}`, `not json`} {
		w := s.post(t, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Missing required fields", decode(t, w)["error"], body)
	}
}

func TestChatPlainTextReply(t *testing.T) {
	s := newTestServer(t, hotelOK)

	w := s.post(t, `{"userId":"u1","message":"My name is Jane Doe"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "My name is Jane Doe", decode(t, w)["reply"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	conv, err := s.repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, conv.BookingState.FullName)
	assert.Equal(t, "Jane Doe", *conv.BookingState.FullName)
}

func TestChatBookingReplyIsPayload(t *testing.T) {
	s := newTestServer(t, hotelOK)
	s.llm.replies = []*intelligence.Reply{{FunctionCall: &intelligence.FunctionCall{
		Name:      intelligence.FuncBookRoom,
		Arguments: json.RawMessage(`{"roomId":1,"fullName":"Jane Doe","email":"jane@example.com","checkInDate":"2024-05-01","nights":3}`),
	}}}

	w := s.post(t, `{"userId":"u1","message":"book it"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `{"bookingId":"B-7","message":"Booking confirmed"}`, decode(t, w)["reply"])
}

func TestChatDownstreamRejection(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"Invalid room"}`)
	})
	s.llm.replies = []*intelligence.Reply{{FunctionCall: &intelligence.FunctionCall{
		Name:      intelligence.FuncBookRoom,
		Arguments: json.RawMessage(`{"roomId":99}`),
	}}}

	w := s.post(t, `{"userId":"u1","message":"book room 99"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"message": "Invalid room"}, decode(t, w)["error"])

	conv, err := s.repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
}

func TestChatDownstreamUnavailable(t *testing.T) {
	s := newTestServer(t, hotelOK)
	s.llm.err = &utils.DownstreamUnavailableError{Service: "openai", Err: io.ErrUnexpectedEOF}

	w := s.post(t, `{"userId":"u1","message":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service unavailable", decode(t, w)["error"])
}

func TestChatInternalError(t *testing.T) {
	s := newTestServer(t, hotelOK)
	s.llm.replies = []*intelligence.Reply{{FunctionCall: &intelligence.FunctionCall{Name: "delete_everything"}}}

	w := s.post(t, `{"userId":"u1","message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, hotelOK)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	// Must differ from the request host or the preflight is treated as same-origin.
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
