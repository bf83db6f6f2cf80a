package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/identity"
)

const bearerChallenge = `Bearer error="invalid_token"`

// UserResolver turns a bearer token into the stored user it was issued for.
// It returns identity.ErrInvalidToken for tokens that fail verification and
// identity.ErrNotFound when the subject no longer exists.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (identity.User, error)
}

// Authenticate requires a valid bearer token whose subject is a stored user.
// Missing or bad tokens yield 401 with a WWW-Authenticate challenge; a valid
// token for a user that no longer exists yields 404.
func Authenticate(users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "Not authenticated")
		}

		user, err := users.CurrentUser(c.UserContext(), token)
		switch {
		case errors.Is(err, identity.ErrInvalidToken):
			return unauthorized(c, "Could not validate credentials")
		case errors.Is(err, identity.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "User not found")
		case err != nil:
			return err
		}

		identity.SetCurrent(c, user)
		return c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c *fiber.Ctx) (identity.User, bool) {
	return identity.Current(c)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	c.Set(fiber.HeaderWWWAuthenticate, bearerChallenge)
	return fiber.NewError(http.StatusUnauthorized, msg)
}
