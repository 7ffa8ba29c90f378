package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zapdesk/zapdesk/internal/billing"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/plan"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

// Test fixture shared by the pass tests.

type sentMail struct {
	To       string
	Template notify.Kind
	Vars     map[string]string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, to string, template notify.Kind, vars map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp relay unreachable")
	}
	f.sent = append(f.sent, sentMail{To: to, Template: template, Vars: vars})
	return nil
}

func (f *fakeMailer) Sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakeProvider struct {
	mu      sync.Mutex
	deleted []string // tokens
	fail    bool
}

func (f *fakeProvider) DeleteInstance(_ context.Context, token, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("provider timeout")
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeGateway struct {
	mu      sync.Mutex
	charges []*billing.Payment
	fail    bool
}

func (f *fakeGateway) GetPaymentStatus(_ context.Context, _ string) (billing.PaymentStatus, error) {
	return billing.StatusPending, nil
}

func (f *fakeGateway) CancelPayment(_ context.Context, _ string) error { return nil }

func (f *fakeGateway) CreateCharge(_ context.Context, customerID string, amountCents int64, dueDate time.Time) (*billing.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("gateway unavailable")
	}
	p := &billing.Payment{
		GatewayPaymentID: "asaas_" + customerID,
		Status:           billing.StatusPending,
		AmountCents:      amountCents,
		DueDate:          dueDate,
		CreatedAt:        time.Now(),
	}
	f.charges = append(f.charges, p)
	return p, nil
}

type fixture struct {
	engine   *Engine
	tenants  *tenant.MemoryStore
	plans    *plan.MemoryStore
	payments *billing.MemoryStore
	ledger   *notify.MemoryStore
	mailer   *fakeMailer
	provider *fakeProvider
	gateway  *fakeGateway
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		tenants:  tenant.NewMemoryStore(),
		plans:    plan.NewMemoryStore(),
		payments: billing.NewMemoryStore(),
		ledger:   notify.NewMemoryStore(),
		mailer:   &fakeMailer{},
		provider: &fakeProvider{},
		gateway:  &fakeGateway{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.NewService(f.ledger, f.mailer, 12*time.Hour)
	f.engine = NewEngine(f.tenants, f.plans, f.payments, f.gateway, notifier, f.provider, logger, opts)
	return f
}

func (f *fixture) addTenant(t *tenant.Tenant) {
	if t.Email == "" {
		t.Email = t.ID + "@example.com"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_ = f.tenants.Create(context.Background(), t)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
