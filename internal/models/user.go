package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered learner (or an admin).
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username          string     `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email             string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password          string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // Always holds a bcrypt hash once stored
	ProfileImage      string     `json:"profileImage,omitempty" gorm:"type:varchar(512)"`
	LearnedWordsCount int        `json:"learnedWordsCount"`
	DailyStreak       int        `json:"dailyStreak"`
	LastActivityAt    *time.Time `json:"lastActivityAt,omitempty"`
	IsAdmin           bool       `json:"isAdmin"`
	gorm.Model        `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Sanitized returns a copy of the user safe to echo back to clients.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
