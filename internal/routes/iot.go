package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/iot"
)

// RegisterIoTRoutes wires sensor endpoints. Devices post without user tokens.
func RegisterIoTRoutes(r fiber.Router, h *iot.Handler) {
	group := r.Group("/iot")
	group.Post("/data", h.Ingest)
	group.Get("/data/:fieldId", h.History)
	group.Get("/latest/:fieldId", h.Latest)
	group.Get("/stats/:fieldId", h.Stats)
}
