package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash, never the password.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
