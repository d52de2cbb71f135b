package middleware

import "github.com/gofiber/fiber/v3"

// Identity resolution happens at the fronting gateway; this service
// trusts the X-User-ID header it injects. An absent header means an
// anonymous caller.

const userIDLocal = "userID"

// NewIdentity extracts the caller identity into request locals.
func NewIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		if id, errMsg := ValidateUserID(c.Get("X-User-ID")); errMsg == "" {
			c.Locals(userIDLocal, id)
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's ID, or "" for anonymous callers.
func UserID(c fiber.Ctx) string {
	if id, ok := c.Locals(userIDLocal).(string); ok {
		return id
	}
	return ""
}

// RequireUser rejects anonymous callers with 401.
func RequireUser(c fiber.Ctx) error {
	if UserID(c) == "" {
		return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return c.Next()
}
