package domain

import "time"

// User is the domain model for students and course authors.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	IsAuthor     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
