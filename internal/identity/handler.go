package identity

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the authenticated user's profile.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ProfileResponse is the public view of a user. It never carries the password hash.
type ProfileResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FarmLocation *string   `json:"farm_location,omitempty"`
	FarmSize     *float64  `json:"farm_size,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewProfileResponse renders user for clients.
func NewProfileResponse(user User) ProfileResponse {
	return ProfileResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		FarmLocation: user.FarmLocation,
		FarmSize:     user.FarmSize,
		CreatedAt:    user.CreatedAt,
	}
}

type updateProfileRequest struct {
	Name         *string  `json:"name"`
	Phone        *string  `json:"phone"`
	FarmLocation *string  `json:"farm_location"`
	FarmSize     *float64 `json:"farm_size"`
}

// Me returns the caller's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok := Current(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	return c.Status(http.StatusOK).JSON(NewProfileResponse(user))
}

// UpdateProfile edits the caller's name, phone and farm details.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := Current(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	updated, err := h.service.UpdateProfile(c.UserContext(), user.ID, ProfileUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		FarmLocation: req.FarmLocation,
		FarmSize:     req.FarmSize,
	})
	if err != nil {
		return HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(NewProfileResponse(updated))
}

// HTTPError maps identity errors onto HTTP responses.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	default:
		return err
	}
}
