package models

import "time"

type User struct {
	ID    string
	Email string
	// Password holds the password hash. Stores leave it empty
	// unless the caller explicitly asks for credentials.
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
