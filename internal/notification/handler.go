package notification

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/middleware"
)

// Handler exposes notification history.
type Handler struct {
	service *Service
}

// NewHandler constructs a notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// History lists the caller's recent notifications.
func (h *Handler) History(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	records, err := h.service.History(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"notifications": records, "count": len(records)})
}
