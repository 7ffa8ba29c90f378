// Package billing provides payment records and the payment gateway client.
//
// The lifecycle engine only reads payment state (the deletion safety gate) and
// creates renewal charges; gateway reconciliation is a separate flow.
package billing

import (
	"errors"
	"time"
)

// Errors
var (
	ErrPaymentNotFound = errors.New("billing: payment not found")
)

// PaymentStatus mirrors the gateway's charge states.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusConfirmed PaymentStatus = "confirmed"
	StatusReceived  PaymentStatus = "received"
	StatusCancelled PaymentStatus = "cancelled"
)

// Settled reports whether the status proves money changed hands. A tenant with
// a settled payment must never be purged.
func (s PaymentStatus) Settled() bool {
	return s == StatusConfirmed || s == StatusReceived
}

// Payment is a local record of a gateway charge.
type Payment struct {
	ID               string        `json:"id"`
	TenantID         string        `json:"tenantId"`
	GatewayPaymentID string        `json:"gatewayPaymentId,omitempty"`
	Status           PaymentStatus `json:"status"`
	AmountCents      int64         `json:"amountCents"`
	DueDate          time.Time     `json:"dueDate"`
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}
