package vapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bencullenn/chronicle-voice/internal/models"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}, zap.NewNop()); err == nil {
		t.Error("NewClient accepted an empty API key")
	}
}

func TestListCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`[
			{"id": "call-1", "name": "Morning check-in", "createdAt": "2025-03-01T09:00:00Z"},
			{"id": "call-2", "transcript": "AI: Hello.", "createdAt": "2025-03-02T10:00:00Z"}
		]`))
	})

	calls, err := client.ListCalls(context.Background())
	if err != nil {
		t.Fatalf("ListCalls() error: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].ID != "call-1" || calls[0].Title != "Morning check-in" {
		t.Errorf("calls[0] = %+v", calls[0])
	}
	if calls[1].Transcript != "AI: Hello." {
		t.Errorf("calls[1].Transcript = %q", calls[1].Transcript)
	}
}

func TestListCalls_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	})

	_, err := client.ListCalls(context.Background())
	if err == nil {
		t.Fatal("ListCalls() succeeded against a 401")
	}

	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("error %v is not a ProviderError", err)
	}
}

func TestGetCall_ArtifactTranscriptFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/call-7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id": "call-7",
			"createdAt": "2025-03-05T14:00:00Z",
			"artifact": {"transcript": "User: It was a long day."}
		}`))
	})

	call, err := client.GetCall(context.Background(), "call-7")
	if err != nil {
		t.Fatalf("GetCall() error: %v", err)
	}

	if call.Transcript != "User: It was a long day." {
		t.Errorf("Transcript = %q, want artifact transcript", call.Transcript)
	}
}

func TestGetCall_TopLevelTranscriptWins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "call-8",
			"transcript": "top-level",
			"artifact": {"transcript": "artifact"}
		}`))
	})

	call, err := client.GetCall(context.Background(), "call-8")
	if err != nil {
		t.Fatalf("GetCall() error: %v", err)
	}
	if call.Transcript != "top-level" {
		t.Errorf("Transcript = %q, want top-level to take precedence", call.Transcript)
	}
}

func TestCreateCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "call-9", "status": "queued"}`))
	})

	status, err := client.CreateCall(context.Background(), "assistant-1", "phone-1", "+15555550123")
	if err != nil {
		t.Fatalf("CreateCall() error: %v", err)
	}

	if status.CallID != "call-9" || status.Status != "queued" {
		t.Errorf("CreateCall() = %+v", status)
	}
	if status.AssistantID != "assistant-1" {
		t.Errorf("AssistantID = %q", status.AssistantID)
	}
}

func TestListCalls_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	})

	if _, err := client.ListCalls(context.Background()); err == nil {
		t.Error("ListCalls() accepted a non-array body")
	}
}
