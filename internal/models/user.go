package models

import "time"

// User represents a registered account. Accounts are immutable after
// creation; there is no update or delete path.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}
