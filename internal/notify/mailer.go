package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Mailer delivers a templated email. Implementations must bound their own
// timeouts; a send failure is tolerated by callers and never retried within
// the same pass.
type Mailer interface {
	Send(ctx context.Context, to string, template Kind, vars map[string]string) error
}

// HTTPMailer posts send requests to a transactional mail relay.
type HTTPMailer struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPMailer creates a mail relay client with a bounded request timeout.
func NewHTTPMailer(endpoint, apiKey string) *HTTPMailer {
	return &HTTPMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (m *HTTPMailer) Send(ctx context.Context, to string, template Kind, vars map[string]string) error {
	payload, err := json.Marshal(map[string]any{
		"to":       to,
		"template": string(template),
		"vars":     vars,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send %s to %s: %w", template, to, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailer: send %s to %s: status %d", template, to, resp.StatusCode)
	}
	return nil
}

// LogMailer logs sends instead of delivering them (development mode).
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, to string, template Kind, vars map[string]string) error {
	m.Logger.Info("mail send (dev mode)", "to", to, "template", template, "vars", vars)
	return nil
}

var (
	_ Mailer = (*HTTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
