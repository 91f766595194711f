package chatbot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newServer() *echo.Echo {
	e := echo.New()
	NewHandler(NewService(newMockRepo(DefaultEntries), nil, zerolog.Nop()), nil).RegisterRoutes(e)
	return e
}

func TestResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chatbot/response", strings.NewReader(`{"message":"Visitor Policy"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.HasPrefix(body["response"], "Visiting hours are") {
		t.Errorf("unexpected response %q", body["response"])
	}
}

func TestResponse_MissingMessageIsEmptyPrompt(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chatbot/response", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, req)

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["response"] != EmptyPrompt {
		t.Errorf("expected empty prompt, got %q", body["response"])
	}
}

func TestResponse_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chatbot/response", strings.NewReader(`{"message":`))
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chatbot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"page":"chatbot"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
