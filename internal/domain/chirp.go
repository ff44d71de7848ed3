package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxChirpLength is the maximum chirp body length in characters.
const MaxChirpLength = 140

// ChirpSort orders chirp listings by creation time.
type ChirpSort string

const (
	ChirpSortAsc  ChirpSort = "asc"
	ChirpSortDesc ChirpSort = "desc"
)

// Chirp is a short text post owned by a user.
type Chirp struct {
	ID        uuid.UUID
	Body      string
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
