package models

import "time"

// User represents an account in the system. A user starts out unverified and
// becomes verified once the emailed code is confirmed; only verified users
// can sign in.
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"` // Never expose this to the client
	VerifyCode          string    `json:"-"`
	VerifyCodeExpiry    time.Time `json:"-"`
	IsVerified          bool      `json:"isVerified"`
	IsAcceptingMessages bool      `json:"isAcceptingMessages"`
	CreatedAt           time.Time `json:"createdAt"`
}
