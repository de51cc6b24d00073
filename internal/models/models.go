package models

import "time"

// SubscriptionTier is the product plan a user is subscribed to.
type SubscriptionTier string

const (
	TierBasic   SubscriptionTier = "Basic"
	TierPro     SubscriptionTier = "Pro"
	TierPremium SubscriptionTier = "Premium"
)

// Valid reports whether t is one of the known tiers.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierBasic, TierPro, TierPremium:
		return true
	}
	return false
}

type User struct {
	ID               string           `json:"id"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	SubscribedDate   time.Time        `json:"subscribedDate"`
	CreatedAt        time.Time        `json:"createdTimestamp"`
	UpdatedAt        time.Time        `json:"updatedTimestamp"`
}

// UserView is the read-model projection of a user, safe to serve to clients.
type UserView struct {
	ID               string           `json:"id"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	SubscribedDate   time.Time        `json:"subscribedDate"`
}

// BillingRecord is a payment result received from the billing service
// over the message queue.
type BillingRecord struct {
	ID              string    `json:"id"`
	CustomerEmail   string    `json:"customerEmail"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentIntentID string    `json:"paymentIntentId"`
	ClientSecret    string    `json:"-"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdTimestamp"`
}

// View returns the client-facing projection of u.
func (u *User) View() *UserView {
	return &UserView{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		SubscriptionTier: u.SubscriptionTier,
		SubscribedDate:   u.SubscribedDate,
	}
}
