package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"
)

// Exchange and queue names on the broker.
const (
	AuthEventsExchange  = "auth.events"
	BillingResultsQueue = "billing_results"
)

// Event is the JSON envelope published to the broker.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscriptionTier"`
}
