package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	domain "github.com/example/taskboard/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides authentication services backed by GORM + SQLite.
type Module struct {
	db      *gorm.DB
	repo    *UserRepository
	service *AuthService
	dbPath  string
	jwtCfg  JWTConfig
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new auth module. The database path comes from
// AUTH_DB_PATH, defaulting to the shared local file. The JWT secret comes
// from JWT_SECRET_KEY and must be set in production.
func NewModule() *Module {
	dbPath := os.Getenv("AUTH_DB_PATH")
	if dbPath == "" {
		dbPath = "taskboard.db"
	}

	jwtCfg := DefaultJWTConfig()
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		jwtCfg.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		jwtCfg.Issuer = issuer
	}

	return &Module{
		dbPath: dbPath,
		jwtCfg: jwtCfg,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start opens the database, runs migrations and builds the service.
func (m *Module) Start(_ context.Context) error {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = NewUserRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewAuthService(m.repo, NewJWTManager(m.jwtCfg))

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":   "sqlite",
			"database": m.dbPath,
		},
	}
}

// Service returns the auth service.
func (m *Module) Service() *AuthService {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefreshToken,
	); err != nil {
		return fmt.Errorf("failed to register refresh-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, validate-token, get-user")
	return nil
}

// handleRegister handles the auth.register service request. Expected
// failures are returned in the response Error field rather than as errors.
func (m *Module) handleRegister(_ context.Context, req RegisterRequest, _ *mono.Msg) (AuthResponse, error) {
	user, tokens, err := m.service.Register(req.Email, req.Password)
	if err != nil {
		if isClientError(err) {
			return AuthResponse{Error: err.Error()}, nil
		}
		return AuthResponse{}, err
	}
	return toAuthResponse(user, tokens), nil
}

// handleLogin handles the auth.login service request.
func (m *Module) handleLogin(_ context.Context, req LoginRequest, _ *mono.Msg) (AuthResponse, error) {
	user, tokens, err := m.service.Login(req.Email, req.Password)
	if err != nil {
		if isClientError(err) {
			return AuthResponse{Error: err.Error()}, nil
		}
		return AuthResponse{}, err
	}
	return toAuthResponse(user, tokens), nil
}

// handleRefreshToken handles the auth.refresh-token service request.
func (m *Module) handleRefreshToken(_ context.Context, req RefreshTokenRequest, _ *mono.Msg) (AuthResponse, error) {
	tokens, err := m.service.RefreshTokens(req.RefreshToken)
	if err != nil {
		if isClientError(err) {
			return AuthResponse{Error: err.Error()}, nil
		}
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

// handleValidateToken handles the auth.validate-token service request.
// Invalid tokens yield Valid=false rather than an error so callers can
// distinguish rejection from transport failure.
func (m *Module) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(req.AccessToken)
	if err != nil {
		return ValidateTokenResponse{Valid: false, Error: err.Error()}, nil
	}
	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// handleGetUser handles the auth.get-user service request.
func (m *Module) handleGetUser(_ context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(req.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return GetUserResponse{Error: err.Error()}, nil
		}
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: toUserResponse(user)}, nil
}

// isClientError reports whether the error is caused by bad input rather
// than an internal failure.
func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken)
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toAuthResponse(u *domain.User, tokens *domain.TokenPair) AuthResponse {
	return AuthResponse{
		User:         toUserResponse(u),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}
}
