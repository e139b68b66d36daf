package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ingest-console/internal/model"
)

func testWebhook(url string) *model.WebhookConfig {
	return &model.WebhookConfig{
		Name:           "test",
		URL:            url,
		Method:         "POST",
		ContentType:    "application/json",
		TimeoutSeconds: 5,
		IsActive:       true,
	}
}

func TestDispatchSuccess(t *testing.T) {
	var receivedBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	webhook := testWebhook(srv.URL)
	history := &model.WebhookHistory{
		RequestMethod: webhook.Method,
		RequestURL:    webhook.URL,
		RequestBody:   `{"event":"test"}`,
		Status:        model.WebhookStatusPending,
	}

	dispatch(webhook, history, nil)

	if history.Status != model.WebhookStatusSuccess {
		t.Errorf("Expected status %q, got %q", model.WebhookStatusSuccess, history.Status)
	}
	if history.ResponseCode != 200 {
		t.Errorf("Expected response code 200, got %d", history.ResponseCode)
	}
	if history.ResponseBody != `{"ok":true}` {
		t.Errorf("Unexpected response body: %s", history.ResponseBody)
	}
	if receivedBody != `{"event":"test"}` {
		t.Errorf("Server received wrong body: %s", receivedBody)
	}
	if history.ErrorMessage != "" {
		t.Errorf("Unexpected error message: %s", history.ErrorMessage)
	}
}

func TestDispatchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	webhook := testWebhook(srv.URL)
	history := &model.WebhookHistory{
		RequestMethod: webhook.Method,
		RequestURL:    webhook.URL,
		Status:        model.WebhookStatusPending,
	}

	dispatch(webhook, history, nil)

	if history.Status != model.WebhookStatusFailure {
		t.Errorf("Expected status %q, got %q", model.WebhookStatusFailure, history.Status)
	}
	if history.ResponseCode != 500 {
		t.Errorf("Expected response code 500, got %d", history.ResponseCode)
	}
	if history.ErrorMessage == "" {
		t.Error("Error message should not be empty on failure")
	}
}

func TestDispatchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	webhook := testWebhook(srv.URL)
	webhook.TimeoutSeconds = 1
	history := &model.WebhookHistory{
		RequestMethod: webhook.Method,
		RequestURL:    webhook.URL,
		Status:        model.WebhookStatusPending,
	}

	dispatch(webhook, history, nil)

	if history.Status != model.WebhookStatusFailure {
		t.Errorf("Expected status %q on timeout, got %q", model.WebhookStatusFailure, history.Status)
	}
	if history.ResponseCode != 0 {
		t.Errorf("Expected response code 0 on timeout, got %d", history.ResponseCode)
	}
	if history.ErrorMessage == "" {
		t.Error("Error message should not be empty on timeout")
	}
	if history.DurationMs < 1000 {
		t.Errorf("Duration should reflect the waited timeout, got %dms", history.DurationMs)
	}
}

func TestDispatchCustomHeaders(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	webhook := testWebhook(srv.URL)
	webhook.Headers = []byte(`{"X-Token":"{{token}}"}`)
	history := &model.WebhookHistory{
		RequestMethod: webhook.Method,
		RequestURL:    webhook.URL,
		Status:        model.WebhookStatusPending,
	}

	dispatch(webhook, history, map[string]string{"token": "secret-123"})

	if gotHeader != "secret-123" {
		t.Errorf("Expected rendered header value, got %q", gotHeader)
	}
}

func TestBuildRequestBodyTemplateOnly(t *testing.T) {
	body, err := buildRequestBody(`{"event":"manual"}`, nil)
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}
	if body != `{"event":"manual"}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestBuildRequestBodyPayloadOnly(t *testing.T) {
	body, err := buildRequestBody("", map[string]interface{}{"event": "push"})
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}
	if !strings.Contains(body, `"event":"push"`) {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestBuildRequestBodyPayloadOverridesTemplate(t *testing.T) {
	body, err := buildRequestBody(`{"event":"manual","source":"console"}`, map[string]interface{}{"event": "push"})
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}
	if !strings.Contains(body, `"event":"push"`) {
		t.Errorf("Payload should override template field, got: %s", body)
	}
	if !strings.Contains(body, `"source":"console"`) {
		t.Errorf("Template-only field should survive merge, got: %s", body)
	}
}

func TestBuildRequestBodyRejectsNonObjectTemplate(t *testing.T) {
	_, err := buildRequestBody(`[1,2,3]`, map[string]interface{}{"event": "push"})
	if err == nil {
		t.Error("Expected error merging payload into non-object template")
	}
}

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{"webhook_name": "daily-digest", "date": "2026-08-31"}

	out := renderTemplate(`{"name":"{{webhook_name}}","on":"{{ date }}","keep":"{{unknown}}"}`, vars)

	if !strings.Contains(out, `"name":"daily-digest"`) {
		t.Errorf("Variable not rendered: %s", out)
	}
	if !strings.Contains(out, `"on":"2026-08-31"`) {
		t.Errorf("Spaced variable not rendered: %s", out)
	}
	if !strings.Contains(out, `"keep":"{{unknown}}"`) {
		t.Errorf("Unknown variable should stay as-is: %s", out)
	}
}

func TestBuildVariables(t *testing.T) {
	webhook := &model.WebhookConfig{Name: "digest"}
	payload := map[string]interface{}{"article_url": "https://example.com/post"}
	custom := map[string]string{"date": "override"}

	vars := buildVariables(webhook, payload, custom)

	if vars["webhook_name"] != "digest" {
		t.Errorf("Expected webhook_name digest, got %q", vars["webhook_name"])
	}
	if vars["article_url"] != "https://example.com/post" {
		t.Errorf("Expected article_url from payload, got %q", vars["article_url"])
	}
	if vars["date"] != "override" {
		t.Errorf("Custom variable should win, got %q", vars["date"])
	}
	if vars["timestamp"] == "" {
		t.Error("timestamp should be set")
	}
}
