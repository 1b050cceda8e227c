package middlewares

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"wintoday/helpers"

	"github.com/gofiber/fiber/v2"
)

const MaxPlayerNameLength = 64

// PlayerName checks the :name path parameter and stores the decoded value
// under "playerName".
func PlayerName(c *fiber.Ctx) error {
	raw := c.Params("name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return helpers.JSONError(c, "INVALID_PLAYER_NAME")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return helpers.JSONError(c, "PLAYER_NAME_REQUIRED")
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return helpers.JSONError(c, "PLAYER_NAME_TOO_LONG")
	}

	c.Locals("playerName", name)
	return c.Next()
}

func PlayerNameFrom(c *fiber.Ctx) string {
	name, _ := c.Locals("playerName").(string)
	return name
}
