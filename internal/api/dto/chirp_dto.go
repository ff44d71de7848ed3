package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/chirpy/internal/domain"
)

// ChirpCreateRequest payload for new chirps.
type ChirpCreateRequest struct {
	Body string `json:"body"`
}

// ChirpResponse is the public chirp representation.
type ChirpResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	UserID    uuid.UUID `json:"userId"`
}

// NewChirpResponse maps a domain chirp.
func NewChirpResponse(c *domain.Chirp) ChirpResponse {
	return ChirpResponse{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		UserID:    c.UserID,
	}
}
