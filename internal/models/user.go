package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username         string  `gorm:"size:1000" json:"username"`
	Email            string  `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash     string  `gorm:"column:password;not null" json:"-"`
	IsVerified       bool    `gorm:"not null" json:"is_verified"`
	VerificationCode *string `gorm:"size:16" json:"-"`
}
