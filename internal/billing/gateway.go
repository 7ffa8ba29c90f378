package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zapdesk/zapdesk/internal/retry"
)

// Gateway is the payment provider surface the engine depends on.
type Gateway interface {
	// GetPaymentStatus fetches the current charge status by gateway payment ID.
	GetPaymentStatus(ctx context.Context, paymentID string) (PaymentStatus, error)

	// CancelPayment cancels a pending charge.
	CancelPayment(ctx context.Context, paymentID string) error

	// CreateCharge creates a boleto/PIX charge for a customer.
	CreateCharge(ctx context.Context, customerID string, amountCents int64, dueDate time.Time) (*Payment, error)
}

// AsaasClient talks to the Asaas billing API.
type AsaasClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAsaasClient creates a gateway client with a bounded request timeout.
func NewAsaasClient(baseURL, apiKey string) *AsaasClient {
	return &AsaasClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type asaasPayment struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Value    float64 `json:"value"`
	DueDate  string  `json:"dueDate"`
	Customer string  `json:"customer"`
}

// statusFromAsaas maps the gateway's charge states onto the local ones.
// RECEIVED covers both RECEIVED and RECEIVED_IN_CASH.
func statusFromAsaas(s string) PaymentStatus {
	switch s {
	case "CONFIRMED":
		return StatusConfirmed
	case "RECEIVED", "RECEIVED_IN_CASH":
		return StatusReceived
	case "REFUNDED", "DELETED":
		return StatusCancelled
	default:
		return StatusPending
	}
}

func (c *AsaasClient) GetPaymentStatus(ctx context.Context, paymentID string) (PaymentStatus, error) {
	var pay asaasPayment
	// Reads are safe to retry; a timeout here is a recoverable per-tenant failure.
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		return c.doRequest(ctx, http.MethodGet, "/payments/"+paymentID, nil, &pay)
	})
	if err != nil {
		return "", fmt.Errorf("asaas: get payment %s: %w", paymentID, err)
	}
	return statusFromAsaas(pay.Status), nil
}

func (c *AsaasClient) CancelPayment(ctx context.Context, paymentID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/payments/"+paymentID, nil, nil); err != nil {
		return fmt.Errorf("asaas: cancel payment %s: %w", paymentID, err)
	}
	return nil
}

func (c *AsaasClient) CreateCharge(ctx context.Context, customerID string, amountCents int64, dueDate time.Time) (*Payment, error) {
	body := map[string]any{
		"customer":    customerID,
		"billingType": "BOLETO",
		"value":       float64(amountCents) / 100,
		"dueDate":     dueDate.Format("2006-01-02"),
	}
	var pay asaasPayment
	if err := c.doRequest(ctx, http.MethodPost, "/payments", body, &pay); err != nil {
		return nil, fmt.Errorf("asaas: create charge for %s: %w", customerID, err)
	}
	return &Payment{
		GatewayPaymentID: pay.ID,
		Status:           statusFromAsaas(pay.Status),
		AmountCents:      amountCents,
		DueDate:          dueDate,
		CreatedAt:        time.Now(),
	}, nil
}

func (c *AsaasClient) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return retry.Permanent(ErrPaymentNotFound)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("asaas: %s %s: status %d: %s", method, path, resp.StatusCode, respBody)
		if resp.StatusCode < 500 {
			return retry.Permanent(err)
		}
		return err
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

var _ Gateway = (*AsaasClient)(nil)
