package api

import (
	"encoding/json"
	"time"

	"github.com/example/taskboard/modules/weather"
)

// ErrorResponse is the standard error body for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the response body carrying a token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	TokenResponse
}

// ProfileResponse is the response body for the profile endpoint.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskBody is the request body for creating a task.
type CreateTaskBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  string     `json:"assigned_to"`
	Tags        string     `json:"tags"`
}

// UpdateTaskBody is the request body for partially updating a task.
// Absent fields are left unchanged.
type UpdateTaskBody struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  *string    `json:"assigned_to"`
	Tags        *string    `json:"tags"`
}

// CurrentWeatherBody is the response body for the current weather endpoint.
type CurrentWeatherBody struct {
	Weather   *weather.Snapshot `json:"weather"`
	FromCache bool              `json:"from_cache"`
}

// ForecastBody is the response body for the forecast endpoint.
type ForecastBody struct {
	City     string          `json:"city"`
	Days     int             `json:"days"`
	Forecast json.RawMessage `json:"forecast"`
}
