package domain

// User is the authenticated account returned by the identity endpoint.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Credentials are exchanged for a token pair at login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Credentials returns the login credentials matching this registration.
func (r RegisterRequest) Credentials() Credentials {
	return Credentials{Username: r.Username, Password: r.Password}
}

// TokenPair is the login response: a short-lived access token and the
// refresh token the backend blacklists on logout.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ProfileUpdate changes the caller's username and/or email.
type ProfileUpdate struct {
	Username string `json:"username,omitempty" validate:"omitempty,max=150"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}
