package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/docstore"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/repository/implementation"
	"ai-assistant-be/internal/service"
	ws "ai-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, history []entity.Message, text string, attachments []entity.Attachment) (string, error) {
	return "בטח, הנה התשובה", nil
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestApp wires the chat API over the in-memory document store, no
// database or upstream model needed.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	log := logger.NewNopLogger()
	chatRepo := implementation.NewChatRepository(docstore.NewMemoryStore())
	chatService := service.NewChatService(chatRepo, stubGenerator{}, log, time.Minute)
	hub := ws.NewHub(chatService, nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	controller.NewChatController(chatService, hub).RegisterRoutes(app.Group("/api"))
	return app
}

func issueToken(t *testing.T, email string) string {
	t.Helper()

	os.Setenv("JWT_SECRET", "default_secret")
	claims := jwt.MapClaims{
		"user_id": "00000000-0000-0000-0000-000000000001",
		"email":   email,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("default_secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, apiEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("%s %s: bad response body: %v", method, path, err)
	}
	return resp.StatusCode, envelope
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t)
	token := issueToken(t, "flow@example.com")

	// 1. Send without a session id creates one.
	status, envelope := doJSON(t, app, "POST", "/api/chat/v1/send", token, `{"text":"טיול לרומא"}`)
	assert.Equal(t, 200, status)
	assert.True(t, envelope.Success)

	var sent struct {
		SessionId string `json:"session_id"`
		Title     string `json:"title"`
		Reply     struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"reply"`
	}
	assert.NoError(t, json.Unmarshal(envelope.Data, &sent))
	assert.NotEmpty(t, sent.SessionId)
	assert.Equal(t, "טיול לרומא", sent.Title)
	assert.Equal(t, "model", sent.Reply.Role)
	assert.Equal(t, "בטח, הנה התשובה", sent.Reply.Text)

	// 2. The session shows up in the list with both messages.
	status, envelope = doJSON(t, app, "GET", "/api/chat/v1/sessions", token, "")
	assert.Equal(t, 200, status)

	var sessions []struct {
		Id        string  `json:"id"`
		DeletedAt *string `json:"deletedAt"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal(envelope.Data, &sessions))
	assert.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, 2)

	// 3. Trash, then verify deletedAt is set.
	status, _ = doJSON(t, app, "POST", "/api/chat/v1/trash", token, fmt.Sprintf(`{"session_id":%q}`, sent.SessionId))
	assert.Equal(t, 200, status)

	_, envelope = doJSON(t, app, "GET", "/api/chat/v1/sessions", token, "")
	assert.NoError(t, json.Unmarshal(envelope.Data, &sessions))
	assert.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].DeletedAt)

	// 4. Restore clears deletedAt again.
	status, _ = doJSON(t, app, "POST", "/api/chat/v1/restore", token, fmt.Sprintf(`{"session_id":%q}`, sent.SessionId))
	assert.Equal(t, 200, status)

	_, envelope = doJSON(t, app, "GET", "/api/chat/v1/sessions", token, "")
	sessions = nil // a fresh decode target, so step 3's DeletedAt can't linger
	assert.NoError(t, json.Unmarshal(envelope.Data, &sessions))
	assert.Nil(t, sessions[0].DeletedAt)
}

func TestEmptyTrashNeedsConfirmation(t *testing.T) {
	app := newTestApp(t)
	token := issueToken(t, "trash@example.com")

	_, envelope := doJSON(t, app, "POST", "/api/chat/v1/send", token, `{"text":"למחיקה"}`)
	var sent struct {
		SessionId string `json:"session_id"`
	}
	assert.NoError(t, json.Unmarshal(envelope.Data, &sent))

	status, _ := doJSON(t, app, "POST", "/api/chat/v1/trash", token, fmt.Sprintf(`{"session_id":%q}`, sent.SessionId))
	assert.Equal(t, 200, status)

	// Without the confirm flag the trash must stay put.
	status, _ = doJSON(t, app, "POST", "/api/chat/v1/empty-trash", token, `{}`)
	assert.Equal(t, 400, status)

	status, envelope = doJSON(t, app, "POST", "/api/chat/v1/empty-trash", token, `{"confirm":true}`)
	assert.Equal(t, 200, status)
	var result struct {
		Deleted int `json:"deleted"`
	}
	assert.NoError(t, json.Unmarshal(envelope.Data, &result))
	assert.Equal(t, 1, result.Deleted)

	_, envelope = doJSON(t, app, "GET", "/api/chat/v1/sessions", token, "")
	var sessions []json.RawMessage
	assert.NoError(t, json.Unmarshal(envelope.Data, &sessions))
	assert.Len(t, sessions, 0)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/chat/v1/sessions", nil)
	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}

func TestUsersAreIsolated(t *testing.T) {
	app := newTestApp(t)
	alice := issueToken(t, "alice@example.com")
	bob := issueToken(t, "bob@example.com")

	status, _ := doJSON(t, app, "POST", "/api/chat/v1/send", alice, `{"text":"סודי"}`)
	assert.Equal(t, 200, status)

	_, envelope := doJSON(t, app, "GET", "/api/chat/v1/sessions", bob, "")
	var sessions []json.RawMessage
	assert.NoError(t, json.Unmarshal(envelope.Data, &sessions))
	assert.Len(t, sessions, 0)
}

func TestPermanentDeleteUnknownSessionConfirmed(t *testing.T) {
	app := newTestApp(t)
	token := issueToken(t, "gone@example.com")

	// Deleting a document that never existed is not an error.
	status, _ := doJSON(t, app, "POST", "/api/chat/v1/delete", token, `{"session_id":"nope","confirm":true}`)
	assert.Equal(t, 200, status)
}

func TestSendUnknownSessionIs404(t *testing.T) {
	app := newTestApp(t)
	token := issueToken(t, "missing@example.com")

	status, envelope := doJSON(t, app, "POST", "/api/chat/v1/send", token, `{"session_id":"1234","text":"היי"}`)
	assert.Equal(t, 404, status)
	assert.False(t, envelope.Success)
}
