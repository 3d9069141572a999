package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultWebhookTimeout bounds a webhook call when the client has no timeout.
const DefaultWebhookTimeout = 10 * time.Second

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submission: webhook responded %d", e.Code)
	}
	return fmt.Sprintf("submission: webhook responded %d: %s", e.Code, e.Body)
}

// Webhook posts submissions as JSON to an HTTP endpoint.
type Webhook struct {
	endpoint string
	method   string
	headers  map[string]string
	client   *http.Client
	logger   *slog.Logger
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(w *Webhook) {
		if client != nil {
			w.client = client
		}
	}
}

// WithWebhookLogger sets the logger used for delivery diagnostics.
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWebhook builds a webhook submitter from a form's submission config.
func NewWebhook(cfg model.SubmissionConfig, opts ...WebhookOption) (*Webhook, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: webhook endpoint is empty", ErrNotConfigured)
	}
	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodPost
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	w := &Webhook{
		endpoint: endpoint,
		method:   method,
		headers:  headers,
		client:   &http.Client{Timeout: DefaultWebhookTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Submit sends sub as the JSON request body. Responses outside 2xx are
// returned as *StatusError.
func (w *Webhook) Submit(ctx context.Context, sub Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("submission: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, w.method, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("webhook delivery failed", "endpoint", w.endpoint, "submission", sub.ID, "error", err)
		return fmt.Errorf("submission: deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		w.logger.Warn("webhook rejected submission",
			"endpoint", w.endpoint, "submission", sub.ID, "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	w.logger.Debug("webhook delivered", "endpoint", w.endpoint, "submission", sub.ID, "status", resp.StatusCode)
	return nil
}

// FromConfig picks the submitter for a form. store serves the "store" type;
// "none" and an empty type discard submissions.
func FromConfig(cfg model.SubmissionConfig, store Submitter, opts ...WebhookOption) (Submitter, error) {
	switch cfg.Type {
	case "", model.SubmissionNone:
		return Discard, nil
	case model.SubmissionWebhook:
		return NewWebhook(cfg, opts...)
	case model.SubmissionStore:
		if store == nil {
			return nil, fmt.Errorf("%w: no submission store", ErrNotConfigured)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown submission type %q", ErrNotConfigured, cfg.Type)
	}
}
