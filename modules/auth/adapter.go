package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface driving adapters use to reach auth
// operations.
type AuthPort interface {
	Register(ctx context.Context, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, accessToken string) (*ValidateTokenResponse, error)
	GetUser(ctx context.Context, userID string) (*GetUserResponse, error)
}

// AuthAdapter implements AuthPort over the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// call performs one request-reply round trip against the auth container.
func (a *AuthAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Register creates a new account.
func (a *AuthAdapter) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := RegisterRequest{Email: email, Password: password}
	var resp AuthResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with credentials.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp AuthResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (a *AuthAdapter) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	req := RefreshTokenRequest{RefreshToken: refreshToken}
	var resp AuthResponse
	if err := a.call(ctx, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates an access token.
func (a *AuthAdapter) ValidateToken(ctx context.Context, accessToken string) (*ValidateTokenResponse, error) {
	req := ValidateTokenRequest{AccessToken: accessToken}
	var resp ValidateTokenResponse
	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser looks up a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*GetUserResponse, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
