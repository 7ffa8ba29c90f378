// Package messenger provides the WhatsApp provider client used to tear down
// per-tenant messaging endpoints before local deletion.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider is the teardown surface the sweeper depends on.
type Provider interface {
	// DeleteInstance removes a messaging endpoint at the provider. A provider
	// failure must never block local deletion; callers log and continue.
	DeleteInstance(ctx context.Context, token, proxyURL string) error
}

// Client talks to the WhatsApp provider's management API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a provider client with a bounded request timeout.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) DeleteInstance(ctx context.Context, token, proxyURL string) error {
	payload, err := json.Marshal(map[string]string{
		"token": token,
		"proxy": proxyURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/instance/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger: delete instance: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("messenger: delete instance: status %d: %s", resp.StatusCode, body)
	}

	var dr deleteResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return fmt.Errorf("messenger: delete instance: decode: %w", err)
	}
	if !dr.Success {
		return fmt.Errorf("messenger: delete instance: provider error: %s", dr.Error)
	}
	return nil
}

var _ Provider = (*Client)(nil)
