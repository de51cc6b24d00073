package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/billing"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/middleware"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/token"
)

type mockIntentCreator struct {
	enabled  bool
	createFn func(ctx context.Context, email string, amount float64, currency string) (*billing.PaymentIntent, error)
}

func (m *mockIntentCreator) Enabled() bool { return m.enabled }
func (m *mockIntentCreator) CreatePaymentIntent(ctx context.Context, email string, amount float64, currency string) (*billing.PaymentIntent, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, amount, currency)
	}
	return nil, fmt.Errorf("not configured")
}

type mockRecordLister struct {
	records []*models.BillingRecord
	err     error
}

func (m *mockRecordLister) ListByCustomer(email string) ([]*models.BillingRecord, error) {
	return m.records, m.err
}

func newBillingTestRouter(t *testing.T, intents IntentCreator, records RecordLister, tokens *token.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBillingHandler(intents, records)
	requireAuth := middleware.AuthMiddleware(tokens)
	grp := r.Group("/v1/billing", requireAuth)
	grp.POST("/checkout", h.Checkout)
	grp.GET("/records", h.ListRecords)
	return r
}

func bearerFor(t *testing.T, tokens *token.Manager) map[string]string {
	t.Helper()
	user := &models.User{ID: "usr-abc123", Username: "alice", Email: "alice@example.com", SubscriptionTier: models.TierBasic}
	signed, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + signed}
}

func TestCheckout(t *testing.T) {
	tokens := testTokenManager(t)
	okBody := map[string]any{"amount": 9.99, "currency": "EUR"}

	tests := []struct {
		name           string
		body           interface{}
		intents        *mockIntentCreator
		expectedStatus int
	}{
		{
			name: "created - intent opened for the caller's email",
			body: okBody,
			intents: &mockIntentCreator{enabled: true, createFn: func(_ context.Context, email string, amount float64, currency string) (*billing.PaymentIntent, error) {
				if email != "alice@example.com" {
					return nil, fmt.Errorf("unexpected email %q", email)
				}
				return &billing.PaymentIntent{PaymentIntentID: "pi_123", Status: "requires_payment_method", Amount: amount, Currency: currency}, nil
			}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "service unavailable - billing not configured",
			body:           okBody,
			intents:        &mockIntentCreator{enabled: false},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "service unavailable - breaker open",
			body: okBody,
			intents: &mockIntentCreator{enabled: true, createFn: func(context.Context, string, float64, string) (*billing.PaymentIntent, error) {
				return nil, gobreaker.ErrOpenState
			}},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "bad gateway - billing API failure",
			body: okBody,
			intents: &mockIntentCreator{enabled: true, createFn: func(context.Context, string, float64, string) (*billing.PaymentIntent, error) {
				return nil, fmt.Errorf("boom")
			}},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "bad request - zero amount",
			body:           map[string]any{"amount": 0, "currency": "EUR"},
			intents:        &mockIntentCreator{enabled: true},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - bad currency",
			body:           map[string]any{"amount": 9.99, "currency": "EURO"},
			intents:        &mockIntentCreator{enabled: true},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBillingTestRouter(t, tt.intents, &mockRecordLister{}, tokens)
			w := doRequest(router, http.MethodPost, "/v1/billing/checkout", tt.body, bearerFor(t, tokens))
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	tokens := testTokenManager(t)
	router := newBillingTestRouter(t, &mockIntentCreator{enabled: true}, &mockRecordLister{}, tokens)

	w := doRequest(router, http.MethodPost, "/v1/billing/checkout", map[string]any{"amount": 9.99, "currency": "EUR"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", w.Code)
	}
}

func TestListRecords(t *testing.T) {
	tokens := testTokenManager(t)
	router := newBillingTestRouter(t, &mockIntentCreator{}, &mockRecordLister{
		records: []*models.BillingRecord{{ID: "bil-xyz789", CustomerEmail: "alice@example.com", Status: "succeeded"}},
	}, tokens)

	w := doRequest(router, http.MethodGet, "/v1/billing/records", nil, bearerFor(t, tokens))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Records []*models.BillingRecord `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].Status != "succeeded" {
		t.Errorf("unexpected records: %+v", resp.Records)
	}
}

func TestListRecordsEmpty(t *testing.T) {
	tokens := testTokenManager(t)
	router := newBillingTestRouter(t, &mockIntentCreator{}, &mockRecordLister{}, tokens)

	w := doRequest(router, http.MethodGet, "/v1/billing/records", nil, bearerFor(t, tokens))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"records":[]}` {
		t.Errorf("expected empty records array, got %s", body)
	}
}
