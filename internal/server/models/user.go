package models

import "time"

// User is an account keyed by email. Password holds a bcrypt hash only.
type User struct {
	ID              string
	Username        string
	Email           string
	Password        string
	IsEmailVerified bool
	CreatedAt       time.Time
}
