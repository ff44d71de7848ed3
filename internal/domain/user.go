package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can log in and post chirps.
type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
