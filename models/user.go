package models

import "time"

type User struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Email         string    `gorm:"size:191;uniqueIndex" json:"email"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	PasswordHash  string    `gorm:"size:255" json:"-"`
	Name          string    `gorm:"size:255" json:"name"`
	Image         string    `gorm:"size:255" json:"image"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type UserSession struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	UserID     string     `gorm:"size:64;index" json:"user_id"`
	Token      string     `gorm:"size:191;uniqueIndex" json:"token"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IPAddress  string     `gorm:"size:191" json:"ip_address"`
	UserAgent  string     `gorm:"size:255" json:"user_agent"`
	LastActive *time.Time `json:"last_active"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
