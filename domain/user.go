package domain

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FullName   string         `gorm:"column:full_name;not null" json:"full_name"`
	Email      string         `gorm:"column:email;unique;not null" json:"email"`
	IsVerified bool           `gorm:"column:is_verified;default:false" json:"is_verified"`
	Password   string         `gorm:"column:password;not null" json:"-"`
	Role       string         `gorm:"column:role;default:customer" json:"role"`
	AvatarURL  string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// TokenPair is a freshly minted access/refresh credential set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenData records where and for whom a refresh token was issued.
type RefreshTokenData struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}
