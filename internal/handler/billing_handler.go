package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/billing"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/middleware"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

// IntentCreator opens payment intents with the billing service.
type IntentCreator interface {
	Enabled() bool
	CreatePaymentIntent(ctx context.Context, customerEmail string, amount float64, currency string) (*billing.PaymentIntent, error)
}

// RecordLister reads stored billing results.
type RecordLister interface {
	ListByCustomer(email string) ([]*models.BillingRecord, error)
}

// BillingHandler exposes the billing surface of the auth service: opening a
// checkout for a subscription upgrade and listing past payment results.
// Both routes require a valid bearer token.
type BillingHandler struct {
	intents IntentCreator
	records RecordLister
}

type CheckoutRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

func NewBillingHandler(intents IntentCreator, records RecordLister) *BillingHandler {
	return &BillingHandler{intents: intents, records: records}
}

// Checkout opens a payment intent for the authenticated user's email.
func (h *BillingHandler) Checkout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	if h.intents == nil || !h.intents.Enabled() {
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Billing is not available")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	intent, err := h.intents.CreatePaymentIntent(c.Request.Context(), claims.Email, req.Amount, req.Currency)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		middleware.RespondWithError(c, http.StatusServiceUnavailable, "Billing is temporarily unavailable")
		return
	}
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadGateway, "Failed to create payment intent")
		return
	}

	c.JSON(http.StatusCreated, intent)
}

// ListRecords returns the authenticated user's stored payment results.
func (h *BillingHandler) ListRecords(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	records, err := h.records.ListByCustomer(claims.Email)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list billing records")
		return
	}
	if records == nil {
		records = []*models.BillingRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}
