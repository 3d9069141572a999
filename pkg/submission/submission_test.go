package submission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSubmission(t *testing.T) {
	t.Parallel()

	answers := model.Answers{"tags": []string{"a"}}
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.FixedZone("IST", 3600))

	sub := NewSubmission("contact", answers, now)
	answers["tags"].([]string)[0] = "changed"

	id, err := uuid.Parse(sub.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if id.Version() != uuid.Version(7) {
		t.Fatalf("expected a v7 id, got v%d", id.Version())
	}
	if sub.SubmittedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %s", sub.SubmittedAt.Location())
	}
	if diff := cmp.Diff([]string{"a"}, sub.Answers["tags"]); diff != "" {
		t.Fatalf("answers were not copied (-want +got):\n%s", diff)
	}
}

func TestWebhookPostsJSON(t *testing.T) {
	t.Parallel()

	type request struct {
		method      string
		header      string
		contentType string
		body        Submission
		decodeErr   error
	}
	got := make(chan request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := request{
			method:      r.Method,
			header:      r.Header.Get("X-Form"),
			contentType: r.Header.Get("Content-Type"),
		}
		req.decodeErr = json.NewDecoder(r.Body).Decode(&req.body)
		got <- req
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	hook, err := NewWebhook(model.SubmissionConfig{
		Type:     model.SubmissionWebhook,
		Endpoint: server.URL,
		Method:   "put",
		Headers:  map[string]string{"X-Form": "contact"},
	}, WithHTTPClient(server.Client()), WithWebhookLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}

	sub := NewSubmission("contact", model.Answers{"name": "Ada"}, time.Now())
	if err := hook.Submit(context.Background(), sub); err != nil {
		t.Fatalf("submit: %v", err)
	}

	req := <-got
	if req.decodeErr != nil {
		t.Fatalf("decode body: %v", req.decodeErr)
	}
	if req.method != http.MethodPut || req.header != "contact" || req.contentType != "application/json" {
		t.Fatalf("unexpected request: method=%s X-Form=%q content-type=%q", req.method, req.header, req.contentType)
	}
	if req.body.ID != sub.ID || req.body.Answers["name"] != "Ada" {
		t.Fatalf("unexpected body: %+v", req.body)
	}
}

func TestWebhookStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	hook, err := NewWebhook(model.SubmissionConfig{Endpoint: server.URL}, WithWebhookLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}

	err = hook.Submit(context.Background(), NewSubmission("f", nil, time.Now()))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadGateway || statusErr.Body != "nope" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestNewWebhookRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhook(model.SubmissionConfig{Type: model.SubmissionWebhook}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	store := SubmitterFunc(func(context.Context, Submission) error { return nil })

	got, err := FromConfig(model.SubmissionConfig{}, nil)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if err := got.Submit(context.Background(), Submission{}); err != nil {
		t.Fatalf("none submitter should accept everything: %v", err)
	}

	got, err = FromConfig(model.SubmissionConfig{Type: model.SubmissionStore}, store)
	if err != nil || got == nil {
		t.Fatalf("store: got=%v err=%v", got, err)
	}

	if _, err := FromConfig(model.SubmissionConfig{Type: model.SubmissionStore}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("store without a backend: expected ErrNotConfigured, got %v", err)
	}
	if _, err := FromConfig(model.SubmissionConfig{Type: "carrier-pigeon"}, store); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("unknown type: expected ErrNotConfigured, got %v", err)
	}

	got, err = FromConfig(model.SubmissionConfig{Type: model.SubmissionWebhook, Endpoint: "https://example.com/hook"}, nil)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if _, ok := got.(*Webhook); !ok {
		t.Fatalf("expected *Webhook, got %T", got)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	t.Parallel()

	var calls []string
	boom := errors.New("boom")
	multi := Multi(
		SubmitterFunc(func(context.Context, Submission) error { calls = append(calls, "a"); return nil }),
		nil,
		SubmitterFunc(func(context.Context, Submission) error { calls = append(calls, "b"); return boom }),
		SubmitterFunc(func(context.Context, Submission) error { calls = append(calls, "c"); return nil }),
	)
	if err := multi.Submit(context.Background(), Submission{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}
