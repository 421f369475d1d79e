package models

import "time"

// Session marks a user as logged in. There is at most one per user.
type Session struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
