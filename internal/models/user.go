package models

import "time"

// User represents a known chat participant, upserted on each
// authenticated contact. The core never deletes users.
type User struct {
	Email      string    `json:"email"`
	GoogleID   string    `json:"-"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}
