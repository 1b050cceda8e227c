package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wintoday/config"
	"wintoday/database"
	"wintoday/models"
	"wintoday/roulette"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedWheel hands out outcomes in order and then repeats the last one.
type fixedWheel struct {
	mu       sync.Mutex
	outcomes []roulette.Outcome
}

func (w *fixedWheel) Spin() roulette.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	o := w.outcomes[0]
	if len(w.outcomes) > 1 {
		w.outcomes = w.outcomes[1:]
	}
	return o
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func strPtr(s string) *string      { return &s }
func boolPtr(b bool) *bool         { return &b }
func intPtr(n int) *int            { return &n }

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, outcomes ...roulette.Outcome) (*GameService, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	return newServiceOn(store, outcomes...), store
}

func newServiceOn(store database.Store, outcomes ...roulette.Outcome) *GameService {
	if len(outcomes) == 0 {
		outcomes = []roulette.Outcome{{Number: 1, Color: roulette.Red}}
	}
	var tick atomic.Int64
	return NewGameService(store,
		config.Game{InitialFunds: dec("100.00"), SessionMaxBets: 5},
		WithWheel(&fixedWheel{outcomes: outcomes}),
		WithClock(func() time.Time { return testEpoch.Add(time.Duration(tick.Add(1)) * time.Second) }),
	)
}

func ledgerOf(t *testing.T, store database.Store, playerID uuid.UUID) []models.BalanceTransaction {
	t.Helper()
	var entries []models.BalanceTransaction
	require.NoError(t, store.Atomic(context.Background(), func(tx database.Tx) error {
		var err error
		entries, err = tx.Ledger(context.Background(), playerID)
		return err
	}))
	return entries
}

func playerOf(t *testing.T, store database.Store, name string) *models.Player {
	t.Helper()
	p, err := store.FindPlayerByNormalizedName(context.Background(), models.NormalizeName(name))
	require.NoError(t, err)
	return p
}

func TestLoginIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)
	assert.True(t, first.Funds.Equal(dec("100.00")))

	again, err := svc.Login(ctx, "  alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
	assert.True(t, again.Funds.Equal(dec("100.00")))

	ids, err := store.ListPlayerIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	entries := ledgerOf(t, store, ids[0])
	require.Len(t, entries, 1)
	assert.Equal(t, models.TrxInitialFunds, entries[0].Type)
	assert.Nil(t, entries[0].BetID)
	assert.True(t, entries[0].BalanceAfter.Equal(dec("100.00")))
}

func TestLoginConcurrentFirstSight(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(ctx, "Zed")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p := playerOf(t, store, "zed")
	assert.True(t, p.Funds.Equal(dec("100.00")))
	assert.Len(t, ledgerOf(t, store, p.ID), 1)
}

func TestLoginRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Login(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUnknownPlayerIsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetPlayer(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Spin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.BetHistory(ctx, "nobody", 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.CommitBet(ctx, CommitBetRequest{
		RoundID: uuid.New(), PlayerName: "nobody", Wager: dec("1"), BetType: "Color", Color: strPtr("red"),
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAliceScenarios(t *testing.T) {
	svc, store := newTestService(t,
		roulette.Outcome{Number: 17, Color: roulette.Black},
		roulette.Outcome{Number: 5, Color: roulette.Red},
	)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)

	spin, err := svc.Spin(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 17, spin.Number)
	assert.Equal(t, roulette.Black, spin.Color)

	won, err := svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Alice", Wager: dec("20.00"), BetType: "Color", Color: strPtr("Black"),
	})
	require.NoError(t, err)
	assert.True(t, won.Won)
	assert.True(t, won.Profit.Equal(dec("10.00")))
	// -20 then +30
	assert.True(t, won.NewBalance.Equal(dec("110.00")))
	assert.Equal(t, roulette.ColorBet{Color: roulette.Black}, won.Criteria)

	spin, err = svc.Spin(ctx, "alice")
	require.NoError(t, err)
	lost, err := svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "ALICE", Wager: dec("10"), BetType: "ExactNumberAndColor",
		Color: strPtr("black"), Number: intPtr(5),
	})
	require.NoError(t, err)
	assert.False(t, lost.Won)
	assert.True(t, lost.Profit.IsZero())
	assert.True(t, lost.NewBalance.Equal(dec("100.00")))

	p := playerOf(t, store, "Alice")
	assert.True(t, p.Funds.Equal(dec("100.00")))

	entries := ledgerOf(t, store, p.ID)
	require.Len(t, entries, 4)
	wantTypes := []models.TransactionType{models.TrxInitialFunds, models.TrxBetWager, models.TrxBetPayout, models.TrxBetWager}
	wantAmounts := []string{"100", "-20", "30", "-10"}
	for i, e := range entries {
		assert.Equal(t, wantTypes[i], e.Type)
		assert.True(t, e.Amount.Equal(dec(wantAmounts[i])), "entry %d amount %s", i, e.Amount)
		assert.NoError(t, VerifyLedger(entries[:i+1], e.BalanceAfter))
	}
	assert.NoError(t, VerifyLedger(entries, p.Funds))
	assert.Equal(t, won.BetID, *entries[1].BetID)
	assert.Equal(t, won.BetID, *entries[2].BetID)
	assert.Equal(t, lost.BetID, *entries[3].BetID)

	history, err := svc.BetHistory(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, lost.BetID, history[0].BetID)
	assert.Equal(t, models.BetLost, history[0].Status)
	assert.Equal(t, won.BetID, history[1].BetID)
	assert.Equal(t, models.BetWon, history[1].Status)
	assert.JSONEq(t, `{"color":"Black"}`, string(history[1].Criteria))
}

func TestExactColorMismatchFromStartingFunds(t *testing.T) {
	svc, store := newTestService(t, roulette.Outcome{Number: 5, Color: roulette.Red})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)

	spin, err := svc.Spin(ctx, "Alice")
	require.NoError(t, err)
	lost, err := svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Alice", Wager: dec("10"), BetType: "ExactNumberAndColor",
		Color: strPtr("black"), Number: intPtr(5),
	})
	require.NoError(t, err)
	assert.False(t, lost.Won)
	assert.True(t, lost.Profit.IsZero())
	assert.True(t, lost.NewBalance.Equal(dec("90.00")))
	assert.True(t, playerOf(t, store, "Alice").Funds.Equal(dec("90.00")))
}

func TestColorHalfCentPayoutRoundsUp(t *testing.T) {
	svc, store := newTestService(t, roulette.Outcome{Number: 3, Color: roulette.Red})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Penny")
	require.NoError(t, err)

	spin, err := svc.Spin(ctx, "Penny")
	require.NoError(t, err)
	won, err := svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Penny", Wager: dec("0.05"), BetType: "Color", Color: strPtr("red"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.03", won.Profit.StringFixed(2))
	assert.Equal(t, "100.03", won.NewBalance.StringFixed(2))

	p := playerOf(t, store, "Penny")
	entries := ledgerOf(t, store, p.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, "0.08", entries[2].Amount.StringFixed(2))
	assert.NoError(t, VerifyLedger(entries, p.Funds))
}

func TestCommitBetTwiceConflicts(t *testing.T) {
	svc, store := newTestService(t, roulette.Outcome{Number: 2, Color: roulette.Red})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Bob")
	require.NoError(t, err)
	spin, err := svc.Spin(ctx, "Bob")
	require.NoError(t, err)

	req := CommitBetRequest{RoundID: spin.RoundID, PlayerName: "Bob", Wager: dec("5"), BetType: "Color", Color: strPtr("black")}
	_, err = svc.CommitBet(ctx, req)
	require.NoError(t, err)

	_, err = svc.CommitBet(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)

	p := playerOf(t, store, "Bob")
	assert.True(t, p.Funds.Equal(dec("95")))
	assert.Len(t, ledgerOf(t, store, p.ID), 2)
}

func TestCommitBetOnForeignRoundIsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "Carol")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "Dave")
	require.NoError(t, err)
	spin, err := svc.Spin(ctx, "Carol")
	require.NoError(t, err)

	for _, roundID := range []uuid.UUID{spin.RoundID, uuid.New()} {
		_, err = svc.CommitBet(ctx, CommitBetRequest{
			RoundID: roundID, PlayerName: "Dave", Wager: dec("1"), BetType: "Color", Color: strPtr("red"),
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestCommitBetInsufficientFunds(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "Erin")
	require.NoError(t, err)
	spin, err := svc.Spin(ctx, "Erin")
	require.NoError(t, err)

	_, err = svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Erin", Wager: dec("100.01"), BetType: "Color", Color: strPtr("red"),
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	p := playerOf(t, store, "Erin")
	assert.True(t, p.Funds.Equal(dec("100")))

	// The round stays open.
	_, err = svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Erin", Wager: dec("100"), BetType: "Color", Color: strPtr("red"),
	})
	assert.NoError(t, err)
}

func TestCommitBetRejectsMalformedRequests(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "Finn")
	require.NoError(t, err)
	spin, err := svc.Spin(ctx, "Finn")
	require.NoError(t, err)

	base := CommitBetRequest{RoundID: spin.RoundID, PlayerName: "Finn", Wager: dec("1"), BetType: "Color", Color: strPtr("red")}

	tests := []struct {
		name   string
		mutate func(r *CommitBetRequest)
		also   error
	}{
		{"zero wager", func(r *CommitBetRequest) { r.Wager = decimal.Zero }, nil},
		{"negative wager", func(r *CommitBetRequest) { r.Wager = dec("-5") }, nil},
		{"sub-cent wager", func(r *CommitBetRequest) { r.Wager = dec("1.005") }, nil},
		{"missing color", func(r *CommitBetRequest) { r.Color = nil }, roulette.ErrInvalidBet},
		{"bad color", func(r *CommitBetRequest) { r.Color = strPtr("green") }, roulette.ErrInvalidColor},
		{"unknown type", func(r *CommitBetRequest) { r.BetType = "Corner" }, roulette.ErrUnsupportedBetType},
		{"parity without isEven", func(r *CommitBetRequest) { r.BetType = "ColorParity" }, roulette.ErrInvalidBet},
		{"exact without number", func(r *CommitBetRequest) { r.BetType = "ExactNumberAndColor" }, roulette.ErrInvalidBet},
		{"blank name", func(r *CommitBetRequest) { r.PlayerName = " " }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CommitBet(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			if tt.also != nil {
				assert.ErrorIs(t, err, tt.also)
			}
		})
	}
}

func TestConcurrentCommitsNeverOverdraw(t *testing.T) {
	svc, store := newTestService(t, roulette.Outcome{Number: 1, Color: roulette.Red})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Gus")
	require.NoError(t, err)

	const n = 10
	rounds := make([]uuid.UUID, n)
	for i := range rounds {
		spin, err := svc.Spin(ctx, "Gus")
		require.NoError(t, err)
		rounds[i] = spin.RoundID
	}

	var wg sync.WaitGroup
	var ok, broke atomic.Int32
	for _, id := range rounds {
		wg.Add(1)
		go func(roundID uuid.UUID) {
			defer wg.Done()
			_, err := svc.CommitBet(ctx, CommitBetRequest{
				RoundID: roundID, PlayerName: "Gus", Wager: dec("30"), BetType: "Color", Color: strPtr("black"),
			})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, ErrInsufficientFunds):
				broke.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, int32(n-3), broke.Load())

	p := playerOf(t, store, "Gus")
	assert.True(t, p.Funds.Equal(dec("10")))
	assert.NoError(t, VerifyLedger(ledgerOf(t, store, p.ID), p.Funds))
}

func TestBetHistoryTake(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "Hana")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		spin, err := svc.Spin(ctx, "Hana")
		require.NoError(t, err)
		_, err = svc.CommitBet(ctx, CommitBetRequest{
			RoundID: spin.RoundID, PlayerName: "Hana", Wager: dec("1"), BetType: "Color", Color: strPtr("red"),
		})
		require.NoError(t, err)
	}

	items, err := svc.BetHistory(ctx, "Hana", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, items[0].RoundCreatedAt.After(items[1].RoundCreatedAt))

	items, err = svc.BetHistory(ctx, "Hana", 500)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestClampTake(t *testing.T) {
	tests := map[int]int{-1: 50, 0: 50, 1: 1, 50: 50, 200: 200, 201: 50}
	for in, want := range tests {
		assert.Equal(t, want, clampTake(in), "take %d", in)
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, roulette.Outcome{Number: 4, Color: roulette.Red})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Ivy")
	require.NoError(t, err)
	spin, err := svc.Spin(ctx, "Ivy")
	require.NoError(t, err)
	_, err = svc.CommitBet(ctx, CommitBetRequest{
		RoundID: spin.RoundID, PlayerName: "Ivy", Wager: dec("10"), BetType: "ColorParity",
		Color: strPtr("red"), IsEven: boolPtr(true),
	})
	require.NoError(t, err)

	entries, err := svc.Transactions(ctx, "Ivy", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.TrxBetPayout, entries[0].Type)
	assert.True(t, entries[0].BalanceAfter.Equal(dec("110")))
	assert.Equal(t, models.TrxInitialFunds, entries[2].Type)
}

func TestAuditAll(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "Jo")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "Kim")
	require.NoError(t, err)

	bad, err := svc.AuditAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, bad)

	kim := playerOf(t, store, "Kim")
	require.NoError(t, store.Atomic(ctx, func(tx database.Tx) error {
		return tx.UpdatePlayerFunds(ctx, kim.ID, dec("1000"))
	}))

	bad, err = svc.AuditAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bad)

	var mismatch *LedgerMismatchError
	require.ErrorAs(t, svc.AuditLedger(ctx, kim.ID), &mismatch)
	assert.Zero(t, mismatch.Seq)
}

func TestVerifyLedgerFindsBadSnapshot(t *testing.T) {
	entries := []models.BalanceTransaction{
		{Seq: 1, Amount: dec("100"), BalanceAfter: dec("100")},
		{Seq: 2, Amount: dec("-20"), BalanceAfter: dec("80")},
		{Seq: 3, Amount: dec("30"), BalanceAfter: dec("111")},
	}
	err := VerifyLedger(entries, dec("110"))
	var mismatch *LedgerMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(3), mismatch.Seq)
	assert.True(t, mismatch.Expected.Equal(dec("110")))

	assert.NoError(t, VerifyLedger(nil, decimal.Zero))
}
