package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ingest-console/internal/config"
	"ingest-console/internal/pkg/apperr"
)

func TestWorkflowListRequiresAPIKey(t *testing.T) {
	svc := NewWorkflowService(config.N8NConfig{APIBaseURL: "http://n8n:5678/api/v1"})

	_, err := svc.List()
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("Expected ErrAPIKeyMissing, got %v", err)
	}
	if apperr.HTTPStatus(err) != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 for missing api key, got %d", apperr.HTTPStatus(err))
	}
}

func TestWorkflowList(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-N8N-API-KEY")
		if r.URL.Path != "/workflows" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"wf1","name":"RSS Poller","active":true,"tags":[{"id":"t1","name":"ingest"}]}]}`))
	}))
	defer srv.Close()

	svc := NewWorkflowService(config.N8NConfig{APIBaseURL: srv.URL, APIKey: "key-123"})

	workflows, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if gotKey != "key-123" {
		t.Errorf("API key header not sent, got %q", gotKey)
	}
	if len(workflows) != 1 {
		t.Fatalf("Expected 1 workflow, got %d", len(workflows))
	}
	if workflows[0].ID != "wf1" || !workflows[0].Active {
		t.Errorf("Unexpected workflow: %+v", workflows[0])
	}
	if len(workflows[0].Tags) != 1 || workflows[0].Tags[0].Name != "ingest" {
		t.Errorf("Tags not mapped: %+v", workflows[0].Tags)
	}
}

func TestWorkflowListUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewWorkflowService(config.N8NConfig{APIBaseURL: srv.URL, APIKey: "key-123"})

	_, err := svc.List()
	if err == nil {
		t.Fatal("Expected error on upstream failure")
	}
	// 网络/上游故障与缺少 API Key 必须可区分
	if errors.Is(err, ErrAPIKeyMissing) {
		t.Error("Upstream failure must not be reported as missing api key")
	}
	if apperr.KindOf(err) != apperr.KindUpstreamUnavailable {
		t.Errorf("Expected upstream kind, got %v", apperr.KindOf(err))
	}
}

func TestWorkflowTriggerNoAPIKeyNeeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhook/rss-poller" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("Unexpected method %s", r.Method)
		}
		w.Write([]byte(`{"started":true}`))
	}))
	defer srv.Close()

	svc := NewWorkflowService(config.N8NConfig{WebhookBaseURL: srv.URL})

	result, err := svc.Trigger("rss-poller", map[string]interface{}{"reason": "test"})
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if started, ok := result["started"].(bool); !ok || !started {
		t.Errorf("Unexpected trigger result: %v", result)
	}
}

func TestWorkflowTriggerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewWorkflowService(config.N8NConfig{WebhookBaseURL: srv.URL})

	_, err := svc.Trigger("missing", nil)
	if err == nil {
		t.Fatal("Expected error on 404 trigger")
	}
	if apperr.KindOf(err) != apperr.KindDispatchFailure {
		t.Errorf("Expected dispatch failure kind, got %v", apperr.KindOf(err))
	}
}

func TestWorkflowActivate(t *testing.T) {
	var calledPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calledPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc := NewWorkflowService(config.N8NConfig{APIBaseURL: srv.URL, APIKey: "key"})

	if err := svc.Activate("wf1"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if calledPath != "/workflows/wf1/activate" {
		t.Errorf("Unexpected path %s", calledPath)
	}
}
