package models

import (
	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`             // Primary key
	Username     string    `json:"username" db:"username"`           // Unique username, matched case-sensitively
	PasswordHash string    `json:"-" db:"password_hash"`             // bcrypt hash
	CreatedAt    string    `json:"created_at" db:"created_at"`       // Registration timestamp, YYYY-MM-DD HH:MM:SS
}
