package routes

import (
	"wintoday/controllers/game"
	"wintoday/controllers/players"
	"wintoday/middlewares"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Metrics bool
}

func Setup(app *fiber.App, svc *services.GameService, opts Options) {
	app.Use(recover.New())
	app.Use(middlewares.RequestTrace)
	if opts.Metrics {
		app.Use(middlewares.HTTPMetrics)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	p := &players.Handler{Game: svc}
	playerroutes := api.Group("/players")
	playerroutes.Post("/login", p.Login)
	playerroutes.Get("/:name", middlewares.PlayerName, p.Get)
	playerroutes.Get("/:name/transactions", middlewares.PlayerName, p.Transactions)

	g := &game.Handler{Game: svc}
	gameroutes := api.Group("/game")
	gameroutes.Post("/spin/:name", middlewares.PlayerName, g.Spin)
	gameroutes.Post("/commit-bet", g.CommitBet)
	gameroutes.Get("/history/:name", middlewares.PlayerName, g.History)
	gameroutes.Post("/save-session", g.SaveSession)
}
