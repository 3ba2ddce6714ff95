package posts

import "time"

// Post belongs to the user who created it; UserID is a back-reference for
// lookup, not an ownership guard.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
