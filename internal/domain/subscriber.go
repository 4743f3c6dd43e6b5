package domain

import "time"

// Subscriber is an address that receives sent newsletters.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
