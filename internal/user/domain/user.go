package domain

import "time"

type ID int64

// User is a stored credential record. PasswordHash is never the plaintext.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
