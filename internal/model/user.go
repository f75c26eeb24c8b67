package model

import "time"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// PasswordDigest is the stored verifier for the user's password.
	// Never serialized.
	PasswordDigest string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
