package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/chirpy/internal/api/dto"
	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/domain"
	"github.com/spec-kit/chirpy/internal/repository"
	"github.com/spec-kit/chirpy/internal/service"
	apperrors "github.com/spec-kit/chirpy/pkg/errorutil"
)

// ChirpsHandler manages chirp endpoints.
type ChirpsHandler struct {
	service *service.ChirpService
}

// NewChirpsHandler constructs handler.
func NewChirpsHandler(chirpService *service.ChirpService) *ChirpsHandler {
	return &ChirpsHandler{service: chirpService}
}

// Create POST /api/chirps.
func (h *ChirpsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChirpCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	chirp, err := h.service.CreateChirp(c.UserContext(), principal.UserID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewChirpResponse(chirp))
}

// List GET /api/chirps?authorId=&sort=asc|desc.
func (h *ChirpsHandler) List(c *fiber.Ctx) error {
	filter, err := parseChirpQuery(c)
	if err != nil {
		return err
	}

	chirps, err := h.service.ListChirps(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ChirpResponse, 0, len(chirps))
	for i := range chirps {
		items = append(items, dto.NewChirpResponse(&chirps[i]))
	}
	return c.JSON(items)
}

// Get GET /api/chirps/:chirpId.
func (h *ChirpsHandler) Get(c *fiber.Ctx) error {
	id, err := chirpIDParam(c)
	if err != nil {
		return err
	}

	chirp, err := h.service.GetChirp(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewChirpResponse(chirp))
}

// Delete DELETE /api/chirps/:chirpId.
func (h *ChirpsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	id, err := chirpIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteChirp(c.UserContext(), principal.UserID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func chirpIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("chirpId"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid chirp id", map[string]any{"chirpId": c.Params("chirpId")})
	}
	return id, nil
}

func parseChirpQuery(c *fiber.Ctx) (repository.ChirpFilter, error) {
	var filter repository.ChirpFilter

	if raw := c.Query("authorId"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid authorId", map[string]any{"authorId": raw})
		}
		filter.AuthorID = &authorID
	}

	switch sort := domain.ChirpSort(c.Query("sort")); sort {
	case "", domain.ChirpSortAsc:
		filter.Sort = domain.ChirpSortAsc
	case domain.ChirpSortDesc:
		filter.Sort = domain.ChirpSortDesc
	default:
		return filter, apperrors.NewValidationError("sort must be asc or desc", map[string]any{"sort": string(sort)})
	}
	return filter, nil
}
