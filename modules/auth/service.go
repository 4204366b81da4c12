package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds the bcrypt limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AuthService handles user registration, login and token management.
type AuthService struct {
	repo *UserRepository
	jwt  *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, jwt *JWTManager) *AuthService {
	return &AuthService{repo: repo, jwt: jwt}
}

// Register creates a new user account and returns the user with a token pair.
func (s *AuthService) Register(email, password string) (*domain.User, *domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return nil, nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrUserExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login verifies credentials and returns the user with a fresh token pair.
func (s *AuthService) Login(email, password string) (*domain.User, *domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !verifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RefreshTokens validates a refresh token and issues a new token pair.
func (s *AuthService) RefreshTokens(refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// ValidateToken validates an access token and returns its claims.
func (s *AuthService) ValidateToken(accessToken string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{UserID: claims.UserID, Email: claims.Email}, nil
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(id string) (*domain.User, error) {
	return s.repo.FindByID(id)
}

func (s *AuthService) issueTokens(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.jwt.AccessTokenSeconds(),
		TokenType:    "Bearer",
	}, nil
}
