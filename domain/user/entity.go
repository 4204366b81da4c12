package user

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string `gorm:"primarykey;size:36"`
	Email        string `gorm:"uniqueIndex;not null;size:200"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// TokenPair represents access and refresh tokens issued at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims carries the identity extracted from a validated access token.
// Request handlers trust these claims as the acting user.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
