package main

import (
	"github.com/gofiber/fiber/v2"
)

const (
	UserIDKey       = "user_id"
	userTokenHeader = "X-User-Token"
)

// getUserMiddleware stands in for the real auth layer: it decodes the
// caller's opaque token and stores the internal id for the handlers.
// Tokens that do not decode, or that name no known user, leave the
// request anonymous.
func getUserMiddleware(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(userTokenHeader)

		if token != "" {
			if id, err := app.codec.Decode(token); err == nil {
				if app.dbm.UserQuery().Id(id).Count() > 0 {
					c.Locals(UserIDKey, id)
				}
			}
		}

		return c.Next()
	}
}

func UserID(c *fiber.Ctx) (uint, bool) {
	u := c.Locals(UserIDKey)

	if u == nil {
		return 0, false
	}

	return u.(uint), true
}
