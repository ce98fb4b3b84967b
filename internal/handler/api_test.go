package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bencullenn/chronicle-voice/internal/models"
	"github.com/bencullenn/chronicle-voice/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stubVoice covers both the sync listing surface and outbound dialing.
type stubVoice struct {
	calls   []models.Call
	listErr error
}

func (s *stubVoice) ListCalls(ctx context.Context) ([]models.Call, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.calls, nil
}

func (s *stubVoice) GetCall(ctx context.Context, id string) (*models.Call, error) {
	for _, c := range s.calls {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, &models.ProviderError{Op: "get call " + id, Err: errors.New("not found")}
}

func (s *stubVoice) CreateCall(ctx context.Context, assistantID, phoneNumberID, number string) (*models.CallStatus, error) {
	return &models.CallStatus{
		CallID:      "outbound-1",
		Status:      "queued",
		AssistantID: assistantID,
		Timestamp:   time.Now(),
	}, nil
}

type stubRepo struct {
	entries map[string]models.Entry
}

func newStubRepo() *stubRepo { return &stubRepo{entries: make(map[string]models.Entry)} }

func (r *stubRepo) ListCallIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *stubRepo) ListEntries(ctx context.Context) ([]models.Entry, error) {
	entries := make([]models.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *stubRepo) UpsertEntry(ctx context.Context, entry *models.Entry) error {
	r.entries[entry.CallID] = *entry
	return nil
}

func (r *stubRepo) SaveNarrative(ctx context.Context, callID, narrative string) error {
	e := r.entries[callID]
	e.CleanedNarrative = narrative
	r.entries[callID] = e
	return nil
}

func (r *stubRepo) Close() error { return nil }

type stubGenerator struct{}

func (stubGenerator) CleanTranscript(ctx context.Context, transcript string) (string, error) {
	return "cleaned: " + transcript, nil
}

func newTestRouter(voice *stubVoice, repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	syncer := service.NewSyncer(voice, repo, stubGenerator{}, logger)
	dialer := service.NewDialer(voice, service.DialerConfig{
		NormalAssistantID:    "assistant-normal",
		SeveranceAssistantID: "assistant-severance",
		DefaultNumber:        "+15555550100",
	}, logger)

	router := gin.New()
	NewHandler(syncer, dialer, logger).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return w, decoded
}

func TestRunSync(t *testing.T) {
	voice := &stubVoice{
		calls: []models.Call{
			{ID: "a", Transcript: "transcript a", CreatedAt: "2025-03-01T09:00:00Z"},
		},
	}
	router := newTestRouter(voice, newStubRepo())

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/sync", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if resp["success"] != true {
		t.Errorf("success = %v", resp["success"])
	}
	entries, ok := resp["entries"].([]interface{})
	if !ok || len(entries) != 1 {
		t.Errorf("entries = %v", resp["entries"])
	}
}

func TestRunSync_ListingFailure(t *testing.T) {
	voice := &stubVoice{listErr: &models.ProviderError{Op: "list calls", Err: errors.New("503")}}
	router := newTestRouter(voice, newStubRepo())

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/sync", "")

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if resp["success"] != false {
		t.Errorf("success = %v", resp["success"])
	}
}

func TestCheckCalls(t *testing.T) {
	repo := newStubRepo()
	repo.entries["a"] = models.Entry{CallID: "a", CreatedAt: time.Now()}
	router := newTestRouter(&stubVoice{}, repo)

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/calls/check", `{"callIds": ["a", "b"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	existing, _ := resp["existingCallIds"].([]interface{})
	missing, _ := resp["missingCallIds"].([]interface{})
	if len(existing) != 1 || existing[0] != "a" {
		t.Errorf("existingCallIds = %v", existing)
	}
	if len(missing) != 1 || missing[0] != "b" {
		t.Errorf("missingCallIds = %v", missing)
	}
}

func TestCheckCalls_EmptyBatch(t *testing.T) {
	router := newTestRouter(&stubVoice{}, newStubRepo())

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/calls/check", `{"callIds": []}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFetchTranscripts(t *testing.T) {
	voice := &stubVoice{
		calls: []models.Call{
			{ID: "a", Transcript: "transcript a", CreatedAt: "2025-03-01T09:00:00Z"},
		},
	}
	repo := newStubRepo()
	router := newTestRouter(voice, repo)

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/transcripts", `{"callIds": ["a", "missing"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	results, _ := resp["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}

	first, _ := results[0].(map[string]interface{})
	second, _ := results[1].(map[string]interface{})
	if first["success"] != true {
		t.Errorf("result for a = %v", first)
	}
	if second["success"] != false {
		t.Errorf("result for missing = %v", second)
	}

	if _, ok := repo.entries["a"]; !ok {
		t.Error("entry a was not persisted")
	}
}

func TestGetEntries(t *testing.T) {
	repo := newStubRepo()
	repo.entries["a"] = models.Entry{CallID: "a", Transcript: "t", CreatedAt: time.Now()}
	router := newTestRouter(&stubVoice{}, repo)

	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/entries", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	entries, _ := resp["entries"].([]interface{})
	if len(entries) != 1 {
		t.Errorf("entries = %v", entries)
	}
}

func TestStartCall(t *testing.T) {
	router := newTestRouter(&stubVoice{}, newStubRepo())

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/call", `{"phoneNumber": "+15555550123", "mode": "Severance"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if resp["callId"] != "outbound-1" {
		t.Errorf("callId = %v", resp["callId"])
	}
	if resp["mode"] != "Severance" {
		t.Errorf("mode = %v", resp["mode"])
	}
	if resp["assistantId"] != "assistant-severance" {
		t.Errorf("assistantId = %v", resp["assistantId"])
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubVoice{}, newStubRepo())

	w, resp := doRequest(t, router, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v", resp["status"])
	}
}
