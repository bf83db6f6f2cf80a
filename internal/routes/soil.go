package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/soil"
)

// RegisterSoilRoutes wires soil report uploads.
func RegisterSoilRoutes(r fiber.Router, h *soil.Handler, authn fiber.Handler) {
	group := r.Group("/soil", authn)
	group.Post("/reports", h.Upload)
	group.Get("/reports", h.List)
	group.Get("/reports/:id", h.Get)
}
