package domain

import "time"

// AccessToken is a signed bearer token minted for a user. It is never persisted.
type AccessToken struct {
	Value     string
	UserID    string
	ExpiresAt time.Time
}
