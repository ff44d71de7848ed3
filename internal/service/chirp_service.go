package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/chirpy/internal/domain"
	"github.com/spec-kit/chirpy/internal/events"
	"github.com/spec-kit/chirpy/internal/repository"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

const censoredWord = "****"

var profanity = regexp.MustCompile(`(?i)kerfuffle|sharbert|fornax`)

// ChirpService coordinates chirp workflows.
type ChirpService struct {
	chirps     repository.ChirpRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ChirpDependencies bundles collaborators for the chirp service.
type ChirpDependencies struct {
	ChirpRepo  repository.ChirpRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewChirpService constructs the service.
func NewChirpService(deps ChirpDependencies) *ChirpService {
	return &ChirpService{
		chirps:     deps.ChirpRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// CleanBody masks banned words, matching case-insensitively anywhere in the text.
func CleanBody(body string) string {
	return profanity.ReplaceAllString(body, censoredWord)
}

// ValidateBody enforces the non-empty and length rules on a raw chirp body.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperrors.NewValidationError("Chirp body is required", nil)
	}
	if utf8.RuneCountInString(body) > domain.MaxChirpLength {
		return apperrors.NewValidationError(fmt.Sprintf("Chirp is too long. Max length is %d", domain.MaxChirpLength), nil)
	}
	return nil
}

// CreateChirp validates, cleans and stores a chirp for userID.
func (s *ChirpService) CreateChirp(ctx context.Context, userID uuid.UUID, body string) (*domain.Chirp, error) {
	if err := ValidateBody(body); err != nil {
		return nil, err
	}

	chirp := &domain.Chirp{Body: CleanBody(body), UserID: userID}
	if err := s.chirps.Create(ctx, chirp); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventChirpCreated, userID, events.ChirpPayload{
		ChirpID:     chirp.ID,
		BodyPreview: preview(chirp.Body),
	}))
	return chirp, nil
}

// ListChirps returns chirps ordered by creation time.
func (s *ChirpService) ListChirps(ctx context.Context, filter repository.ChirpFilter) ([]domain.Chirp, error) {
	return s.chirps.List(ctx, filter)
}

// GetChirp loads a single chirp.
func (s *ChirpService) GetChirp(ctx context.Context, id uuid.UUID) (*domain.Chirp, error) {
	chirp, err := s.chirps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("chirp", map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return chirp, nil
}

// DeleteChirp removes a chirp owned by userID.
func (s *ChirpService) DeleteChirp(ctx context.Context, userID, chirpID uuid.UUID) error {
	chirp, err := s.GetChirp(ctx, chirpID)
	if err != nil {
		return err
	}
	if chirp.UserID != userID {
		return apperrors.NewForbidden("you can only delete your own chirps")
	}
	if err := s.chirps.Delete(ctx, chirpID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("chirp", map[string]any{"id": chirpID.String()})
		}
		return err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventChirpDeleted, userID, events.ChirpPayload{ChirpID: chirpID}))
	return nil
}

func preview(body string) string {
	const limit = 32
	if utf8.RuneCountInString(body) <= limit {
		return body
	}
	return string([]rune(body)[:limit]) + "..."
}
