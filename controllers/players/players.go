package players

import (
	"strings"
	"unicode/utf8"

	"wintoday/helpers"
	"wintoday/middlewares"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Game *services.GameService
}

type LoginRequest struct {
	PlayerName string `json:"playerName"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return helpers.JSONError(c, "PLAYER_NAME_REQUIRED")
	}
	if utf8.RuneCountInString(name) > middlewares.MaxPlayerNameLength {
		return helpers.JSONError(c, "PLAYER_NAME_TOO_LONG")
	}

	balance, err := h.Game.Login(c.UserContext(), name)
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Login successful", balance)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	balance, err := h.Game.GetPlayer(c.UserContext(), middlewares.PlayerNameFrom(c))
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Player balance", balance)
}

func (h *Handler) Transactions(c *fiber.Ctx) error {
	entries, err := h.Game.Transactions(c.UserContext(), middlewares.PlayerNameFrom(c), c.QueryInt("take", services.DefaultHistoryTake))
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Ledger entries", entries)
}
