package models

import "time"

// Message is an anonymous message delivered to a user's inbox. Messages are
// owned exclusively by their recipient; deleting the user deletes them.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
