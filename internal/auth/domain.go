package auth

import "time"

// Profile represents an account row in profiles.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}
