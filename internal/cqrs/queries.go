package cqrs

// GetUserQuery fetches a single user profile by username.
type GetUserQuery struct {
	Username string
}

// ListBillingQuery fetches the stored payment results for a customer.
type ListBillingQuery struct {
	CustomerEmail    string
	RequestingUserID string
}
