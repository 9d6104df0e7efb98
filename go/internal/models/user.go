package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Auth itself lives behind the session
// collaborator; the engine only ever sees resolved user IDs.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
