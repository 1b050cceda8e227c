package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wintoday/config"
	"wintoday/database"
	"wintoday/roulette"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWheel struct{ outcome roulette.Outcome }

func (w stubWheel) Spin() roulette.Outcome { return w.outcome }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, outcome roulette.Outcome) *fiber.App {
	t.Helper()
	svc := services.NewGameService(database.NewMemoryStore(),
		config.Game{InitialFunds: decimal.RequireFromString("100.00"), SessionMaxBets: 10},
		services.WithWheel(stubWheel{outcome: outcome}),
	)
	app := fiber.New()
	Setup(app, svc, Options{Metrics: true})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPlayFlow(t *testing.T) {
	app := newTestApp(t, roulette.Outcome{Number: 17, Color: roulette.Black})

	status, env := call(t, app, http.MethodPost, "/api/players/login", fiber.Map{"playerName": "Alice"})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	var balance services.PlayerBalance
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.True(t, balance.Funds.Equal(decimal.NewFromInt(100)))

	status, env = call(t, app, http.MethodPost, "/api/game/spin/alice", nil)
	require.Equal(t, http.StatusOK, status)
	var spin struct {
		RoundID string `json:"roundId"`
		Number  int    `json:"number"`
		Color   string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &spin))
	assert.Equal(t, 17, spin.Number)
	assert.Equal(t, "Black", spin.Color)

	bet := fiber.Map{"roundId": spin.RoundID, "playerName": "Alice", "wager": "20.00", "betType": "Color", "color": "black"}
	status, env = call(t, app, http.MethodPost, "/api/game/commit-bet", bet)
	require.Equal(t, http.StatusOK, status, env.Message)
	var outcome struct {
		Won        bool            `json:"won"`
		Profit     decimal.Decimal `json:"profit"`
		NewBalance decimal.Decimal `json:"newBalance"`
		BetType    string          `json:"betType"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.True(t, outcome.Won)
	assert.True(t, outcome.Profit.Equal(decimal.NewFromInt(10)))
	assert.True(t, outcome.NewBalance.Equal(decimal.NewFromInt(110)))
	assert.Equal(t, "Color", outcome.BetType)

	status, env = call(t, app, http.MethodPost, "/api/game/commit-bet", bet)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	assert.Equal(t, "ROUND_ALREADY_COMMITTED", env.Message)

	status, env = call(t, app, http.MethodGet, "/api/game/history/Alice?take=5", nil)
	require.Equal(t, http.StatusOK, status)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)

	status, env = call(t, app, http.MethodGet, "/api/players/Alice/transactions", nil)
	require.Equal(t, http.StatusOK, status)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 3)
}

func TestErrorStatuses(t *testing.T) {
	app := newTestApp(t, roulette.Outcome{Number: 2, Color: roulette.Red})

	status, env := call(t, app, http.MethodGet, "/api/players/nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "PLAYER_NOT_REGISTERED", env.Message)

	status, _ = call(t, app, http.MethodPost, "/api/players/login", fiber.Map{"playerName": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, "/api/players/login", fiber.Map{"playerName": "Bob"})
	require.Equal(t, http.StatusOK, status)

	_, env = call(t, app, http.MethodPost, "/api/game/spin/Bob", nil)
	var spin struct {
		RoundID string `json:"roundId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &spin))

	status, env = call(t, app, http.MethodPost, "/api/game/commit-bet", fiber.Map{
		"roundId": spin.RoundID, "playerName": "Bob", "wager": "500", "betType": "Color", "color": "red",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.Message)

	status, env = call(t, app, http.MethodPost, "/api/game/commit-bet", fiber.Map{
		"roundId": spin.RoundID, "playerName": "Bob", "wager": "5", "betType": "Straight", "color": "red",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "unsupported bet type")

	status, env = call(t, app, http.MethodPost, "/api/game/save-session", fiber.Map{
		"playerName": "Bob",
		"bets": []fiber.Map{
			{"wager": "60", "betType": "Color", "color": "red", "numberResult": 3, "colorResult": "black"},
			{"wager": "60", "betType": "Color", "color": "red", "numberResult": 3, "colorResult": "black"},
		},
	})
	assert.Equal(t, http.StatusPaymentRequired, status)

	status, env = call(t, app, http.MethodGet, "/api/players/Bob", nil)
	require.Equal(t, http.StatusOK, status)
	var balance services.PlayerBalance
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.True(t, balance.Funds.Equal(decimal.NewFromInt(100)))
}

func TestHealthzEchoesRequestID(t *testing.T) {
	app := newTestApp(t, roulette.Outcome{Number: 0, Color: roulette.Red})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(fiber.HeaderXRequestID, "trace-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "trace-123", resp.Header.Get(fiber.HeaderXRequestID))
}
