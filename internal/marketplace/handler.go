package marketplace

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/middleware"
)

// Handler exposes marketplace endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a marketplace handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create publishes a listing for the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	listing, err := h.svc.Create(c.UserContext(), user.ID, in)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"listing_id": listing.ID,
		"status":     "created",
		"created_at": listing.CreatedAt,
	})
}

// List returns the public feed.
func (h *Handler) List(c *fiber.Ctx) error {
	listings, err := h.svc.List(c.UserContext(), Filter{
		CropName: c.Query("crop_name"),
		Location: c.Query("location"),
		Limit:    c.QueryInt("limit", DefaultLimit),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
}

// Get returns one active listing.
func (h *Handler) Get(c *fiber.Ctx) error {
	listing, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(listing)
}

// Mine lists the caller's own listings.
func (h *Handler) Mine(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	listings, err := h.svc.Mine(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"listings": listings, "count": len(listings)})
}

// Update replaces a listing owned by the caller.
func (h *Handler) Update(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	listing, err := h.svc.Update(c.UserContext(), user.ID, c.Params("id"), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"status": "updated", "listing_id": listing.ID})
}

// Delete soft-deletes a listing owned by the caller.
func (h *Handler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	id := c.Params("id")
	if err := h.svc.Delete(c.UserContext(), user.ID, id); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"status": "deleted", "listing_id": id})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Listing not found")
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(http.StatusForbidden, "Unauthorized")
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	default:
		return err
	}
}
