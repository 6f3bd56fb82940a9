package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" example:"newuser" validate:"required,min=3,max=64"`
	Email    string `json:"email" example:"user@example.com" validate:"required,email"`
	Password string `json:"password" example:"strongpassword123" validate:"required,min=8"`
}

// LoginRequest represents the login request payload. Login accepts either a
// username or an email address.
type LoginRequest struct {
	Login    string `json:"login" example:"user@example.com" validate:"required"`
	Password string `json:"password" example:"strongpassword123" validate:"required"`
}

// TokenResponse is returned to the client upon successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"900"` // seconds
}
