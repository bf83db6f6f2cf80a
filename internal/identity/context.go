package identity

import "github.com/gofiber/fiber/v2"

const currentUserKey = "current_user"

// SetCurrent attaches the authenticated user to the request.
func SetCurrent(c *fiber.Ctx, user User) {
	c.Locals(currentUserKey, user)
}

// Current returns the authenticated user attached by SetCurrent.
func Current(c *fiber.Ctx) (User, bool) {
	user, ok := c.Locals(currentUserKey).(User)
	return user, ok
}
