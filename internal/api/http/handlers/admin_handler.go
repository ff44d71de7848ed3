package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/chirpy/internal/observability"
	"github.com/spec-kit/chirpy/internal/repository"
)

const metricsPage = `<html>
  <body>
    <h1>Welcome, Chirpy Admin</h1>
    <p>Chirpy has been visited %d times!</p>
  </body>
</html>
`

// AdminHandler serves the file server hit metrics and the reset endpoint.
type AdminHandler struct {
	hits           observability.HitCounter
	users          repository.UserRepository
	allowDataReset bool
	logger         *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(hits observability.HitCounter, users repository.UserRepository, allowDataReset bool, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{hits: hits, users: users, allowDataReset: allowDataReset, logger: logger}
}

// CountHits increments the hit counter for every file server request. A counter failure
// is logged and does not block the file.
func (h *AdminHandler) CountHits(c *fiber.Ctx) error {
	if err := h.hits.Inc(c.UserContext()); err != nil {
		h.logger.Warn("failed to count file server hit", zap.Error(err))
	}
	return c.Next()
}

// Metrics GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	hits, err := h.hits.Value(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(fmt.Sprintf(metricsPage, hits))
}

// Reset POST /admin/reset. Users are only deleted when data reset is allowed.
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	if err := h.hits.Reset(c.UserContext()); err != nil {
		return err
	}
	if !h.allowDataReset {
		return c.SendString("Hits reset to 0")
	}

	if err := h.users.DeleteAll(c.UserContext()); err != nil {
		return err
	}
	h.logger.Warn("all users deleted by admin reset")
	return c.SendString("Hits reset to 0 and all users deleted")
}
