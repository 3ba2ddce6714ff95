package users

import "time"

// User is a registered account. PasswordHash holds the bcrypt digest and is
// never serialized to clients.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
