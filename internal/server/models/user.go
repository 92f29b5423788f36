package models

import "time"

// User is the identity record. PasswordHash is opaque to the server core;
// it is produced and verified by the hashing collaborator only.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
