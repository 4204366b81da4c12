package auth

import "time"

// RegisterRequest is the request to create a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request to authenticate with credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest is the request to exchange a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidateTokenRequest is the request to validate an access token.
type ValidateTokenRequest struct {
	AccessToken string `json:"access_token"`
}

// GetUserRequest is the request to look up a user by ID.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the response for register and login requests.
type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ExpiresIn    int64         `json:"expires_in,omitempty"`
	TokenType    string        `json:"token_type,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// ValidateTokenResponse is the response for token validation requests.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserResponse is the response for user lookup requests.
type GetUserResponse struct {
	User  *UserResponse `json:"user,omitempty"`
	Error string        `json:"error,omitempty"`
}
