package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
)

// RegisterNotificationRoutes wires the caller's notification history.
func RegisterNotificationRoutes(r fiber.Router, h *notification.Handler, authn fiber.Handler) {
	r.Get("/notifications/history", authn, h.History)
}
