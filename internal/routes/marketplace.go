package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/marketplace"
)

// RegisterMarketplaceRoutes wires listing endpoints. Browsing is public.
func RegisterMarketplaceRoutes(r fiber.Router, h *marketplace.Handler, authn fiber.Handler) {
	group := r.Group("/marketplace")
	group.Get("/listings", h.List)
	group.Get("/my-listings", authn, h.Mine)
	group.Get("/listings/:id", h.Get)
	group.Post("/listings", authn, h.Create)
	group.Put("/listings/:id", authn, h.Update)
	group.Delete("/listings/:id", authn, h.Delete)
}
