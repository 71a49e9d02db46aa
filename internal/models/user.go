package models

import "time"

// User is an account that can upload datasets.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Token is the opaque credential bound 1:1 to a user. Logging in again
// returns the same key; there is no expiry, the session lives until the
// client discards it.
type Token struct {
	Key     string    `json:"token"`
	UserID  int64     `json:"-"`
	Created time.Time `json:"-"`
}
