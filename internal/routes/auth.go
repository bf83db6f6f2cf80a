package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/auth"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/identity"
)

// AuthRoutes bundles the handlers mounted under /auth.
type AuthRoutes struct {
	Auth        *auth.Handler
	Profile     *identity.Handler
	RateLimiter fiber.Handler
	Authn       fiber.Handler
}

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h AuthRoutes) {
	group := r.Group("/auth")
	group.Post("/register", h.Auth.Register)
	if h.RateLimiter != nil {
		group.Post("/login", h.RateLimiter, h.Auth.Login)
	} else {
		group.Post("/login", h.Auth.Login)
	}
	group.Post("/logout", h.Auth.Logout)
	group.Get("/me", h.Authn, h.Profile.Me)
	group.Patch("/me", h.Authn, h.Profile.UpdateProfile)
}
