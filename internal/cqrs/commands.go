package cqrs

type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
}

type LoginCommand struct {
	// Identifier is the username or email the user signed in with.
	Identifier string
	Password   string
}

type RefreshTokenCommand struct {
	Token string
}

type VerifyTokenCommand struct {
	Token string
}
