package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/identity"
)

// Handler exposes register, login and logout.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Phone        string   `json:"phone"`
	FarmLocation *string  `json:"farm_location"`
	FarmSize     *float64 `json:"farm_size"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newTokenResponse(s Session) tokenResponse {
	return tokenResponse{
		ID:          s.User.ID,
		Name:        s.User.Name,
		Email:       s.User.Email,
		Phone:       s.User.Phone,
		AccessToken: s.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(s.ExpiresAt).Seconds()),
	}
}

// Register creates an account and returns an access token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	session, err := h.svc.Register(c.UserContext(), identity.Registration{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		FarmLocation: req.FarmLocation,
		FarmSize:     req.FarmSize,
	})
	if err != nil {
		return identity.HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(newTokenResponse(session))
}

// Login validates credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return identity.HTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(newTokenResponse(session))
}

// Logout always succeeds; the client drops its token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if scheme, rest, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, "bearer") {
		h.svc.Logout(c.UserContext(), strings.TrimSpace(rest))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logout successful"})
}
