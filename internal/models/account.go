package models

import "time"

// Account represents a registered user of the application.
type Account struct {
	ID           string    // ID is the opaque unique identifier assigned at registration.
	Email        string    // Email is the address the account registered with. Unique and immutable.
	PasswordHash string    // PasswordHash is the bcrypt hash of the account password.
	CreatedAt    time.Time // CreatedAt is the timestamp when the account was registered.
}
