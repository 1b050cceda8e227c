package game

import (
	"wintoday/helpers"
	"wintoday/middlewares"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Game *services.GameService
}

func (h *Handler) Spin(c *fiber.Ctx) error {
	spin, err := h.Game.Spin(c.UserContext(), middlewares.PlayerNameFrom(c))
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Spin result", spin)
}

func (h *Handler) History(c *fiber.Ctx) error {
	items, err := h.Game.BetHistory(c.UserContext(), middlewares.PlayerNameFrom(c), c.QueryInt("take", services.DefaultHistoryTake))
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Bet history", items)
}
