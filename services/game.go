package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"wintoday/config"
	"wintoday/database"
	"wintoday/logger"
	"wintoday/metrics"
	"wintoday/models"
	"wintoday/roulette"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	DefaultHistoryTake = 50
	MaxHistoryTake     = 200
)

// GameService owns every funds-affecting operation. Handlers and jobs call
// into it; it talks to storage only through database.Store.
type GameService struct {
	store          database.Store
	wheel          roulette.Wheel
	initialFunds   decimal.Decimal
	sessionMaxBets int
	now            func() time.Time
}

type Option func(*GameService)

func WithWheel(w roulette.Wheel) Option {
	return func(s *GameService) { s.wheel = w }
}

func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

func NewGameService(store database.Store, cfg config.Game, opts ...Option) *GameService {
	s := &GameService{
		store:          store,
		wheel:          roulette.RandomWheel{},
		initialFunds:   cfg.InitialFunds,
		sessionMaxBets: cfg.SessionMaxBets,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GameService) resolvePlayer(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("player name required")
	}
	p, err := s.store.FindPlayerByNormalizedName(ctx, models.NormalizeName(name))
	if isNotFound(err) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Login returns the player's balance, registering the player with the
// configured starting funds the first time the name is seen.
func (s *GameService) Login(ctx context.Context, name string) (*PlayerBalance, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("player name required")
	}
	key := models.NormalizeName(name)

	p, err := s.store.FindPlayerByNormalizedName(ctx, key)
	if err == nil {
		return &PlayerBalance{Name: p.Name, Funds: p.Funds}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	var out *PlayerBalance
	var created bool
	err = s.store.Atomic(ctx, func(tx database.Tx) error {
		p, isNew, err := tx.InsertPlayerIfAbsent(ctx, &models.Player{
			Name:           name,
			NormalizedName: key,
			Funds:          decimal.Zero,
			CreatedAt:      s.now(),
		})
		if err != nil {
			return err
		}
		if !isNew {
			out = &PlayerBalance{Name: p.Name, Funds: p.Funds}
			return nil
		}

		l, err := openLedger(ctx, tx, p.ID, s.now)
		if err != nil {
			return err
		}
		if err := l.credit(ctx, models.TrxInitialFunds, s.initialFunds, nil); err != nil {
			return err
		}
		if err := l.close(ctx); err != nil {
			return err
		}
		created = true
		out = &PlayerBalance{Name: p.Name, Funds: l.balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		logger.InfoCtx(ctx, "🆕 player registered", zap.String("player", out.Name), zap.String("funds", out.Funds.StringFixed(2)))
	}
	return out, nil
}

func (s *GameService) GetPlayer(ctx context.Context, name string) (*PlayerBalance, error) {
	p, err := s.resolvePlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	return &PlayerBalance{Name: p.Name, Funds: p.Funds}, nil
}

// Spin draws an outcome and stores it as an open round for the player.
func (s *GameService) Spin(ctx context.Context, name string) (*SpinResult, error) {
	p, err := s.resolvePlayer(ctx, name)
	if err != nil {
		return nil, err
	}

	o := s.wheel.Spin()
	round := &models.GameRound{
		PlayerID:  p.ID,
		Number:    o.Number,
		Color:     o.Color,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertRound(ctx, round); err != nil {
		return nil, err
	}
	metrics.RecordSpin()
	logger.DebugCtx(ctx, "🎲 spin", zap.String("player", p.Name), zap.String("round", round.ID.String()),
		zap.Int("number", round.Number), zap.Stringer("color", round.Color))

	return &SpinResult{RoundID: round.ID, Number: round.Number, Color: round.Color, CreatedAt: round.CreatedAt}, nil
}

// CommitBet settles a bet against one of the player's open rounds. Funds are
// checked once up front and again under the player lock.
func (s *GameService) CommitBet(ctx context.Context, req CommitBetRequest) (out *BetOutcome, err error) {
	started := time.Now()
	betType := ""
	defer func() {
		result := "fail"
		if err == nil {
			result = "lost"
			if out.Won {
				result = "won"
			}
		}
		metrics.RecordBet(result, betType, started)
	}()

	p, err := s.resolvePlayer(ctx, req.PlayerName)
	if err != nil {
		return nil, err
	}
	if err := validateWager(req.Wager); err != nil {
		return nil, err
	}
	criteria, err := roulette.ParseCriteria(req.BetType, req.selectors())
	if err != nil {
		return nil, invalidBet(err)
	}
	betType = criteria.Type().String()

	round, err := s.store.FindRoundForPlayer(ctx, req.RoundID, p.ID)
	if isNotFound(err) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if round.BetCommitted {
		return nil, ErrConflict
	}
	if p.Funds.LessThan(req.Wager) {
		return nil, ErrInsufficientFunds
	}

	res, err := roulette.Evaluate(round.Outcome(), criteria, req.Wager)
	if err != nil {
		return nil, invalidBet(err)
	}

	err = s.store.Atomic(ctx, func(tx database.Tx) error {
		l, err := openLedger(ctx, tx, p.ID, s.now)
		if err != nil {
			return err
		}
		r, err := tx.LockRoundForPlayer(ctx, req.RoundID, p.ID)
		if isNotFound(err) {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if r.BetCommitted {
			return ErrConflict
		}
		if err := tx.MarkRoundCommitted(ctx, r.ID); err != nil {
			if errors.Is(err, database.ErrRoundCommitted) {
				return ErrConflict
			}
			return err
		}

		o, err := s.settle(ctx, l, r, res, req.Wager)
		if err != nil {
			return err
		}
		if err := l.close(ctx); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "✅ bet committed",
		zap.String("player", p.Name),
		zap.String("round", out.RoundID.String()),
		zap.String("betType", betType),
		zap.String("wager", out.Wager.StringFixed(2)),
		zap.Bool("won", out.Won),
		zap.String("balance", out.NewBalance.StringFixed(2)),
	)
	return out, nil
}

// settle writes the bet row and its ledger entries for an evaluated round.
// The wager is debited whatever the result; the payout only on a win.
func (s *GameService) settle(ctx context.Context, l *ledger, round *models.GameRound, res roulette.Result, wager decimal.Decimal) (*BetOutcome, error) {
	if !l.covers(wager) {
		return nil, ErrInsufficientFunds
	}

	bet, err := newBet(l.playerID, round.ID, res, wager, s.now())
	if err != nil {
		return nil, err
	}
	if err := l.tx.InsertBet(ctx, bet); err != nil {
		return nil, err
	}
	if err := l.debit(ctx, models.TrxBetWager, wager, &bet.ID); err != nil {
		return nil, err
	}
	if res.Won && res.Profit.IsPositive() {
		if err := l.credit(ctx, models.TrxBetPayout, wager.Add(res.Profit), &bet.ID); err != nil {
			return nil, err
		}
	}

	return &BetOutcome{
		RoundID:    round.ID,
		BetID:      bet.ID,
		Number:     round.Number,
		Color:      round.Color,
		Wager:      wager,
		Profit:     res.Profit,
		NewBalance: l.balance,
		Won:        res.Won,
		BetType:    res.Type,
		Criteria:   res.Criteria,
	}, nil
}

func newBet(playerID, roundID uuid.UUID, res roulette.Result, wager decimal.Decimal, at time.Time) (*models.Bet, error) {
	raw, err := json.Marshal(res.Criteria)
	if err != nil {
		return nil, err
	}
	b := &models.Bet{
		ID:        uuid.New(),
		PlayerID:  playerID,
		RoundID:   roundID,
		Type:      res.Type,
		Wager:     wager,
		Profit:    decimal.NullDecimal{Decimal: res.Profit, Valid: true},
		Status:    models.BetLost,
		Criteria:  datatypes.JSON(raw),
		CreatedAt: at,
	}
	if res.Won {
		b.Status = models.BetWon
	}

	switch c := res.Criteria.(type) {
	case roulette.ColorBet:
		b.Color = &c.Color
	case roulette.ColorParityBet:
		b.Color = &c.Color
		b.IsEven = &c.IsEven
	case roulette.ExactBet:
		b.Color = &c.Color
		b.Number = &c.Number
	}
	return b, nil
}

func validateWager(w decimal.Decimal) error {
	if !w.IsPositive() {
		return invalidf("wager must be positive")
	}
	if !w.Equal(w.Truncate(2)) {
		return invalidf("wager has more than two decimals")
	}
	return nil
}

func clampTake(take int) int {
	if take < 1 || take > MaxHistoryTake {
		return DefaultHistoryTake
	}
	return take
}

// BetHistory lists the player's bets, most recent round first.
func (s *GameService) BetHistory(ctx context.Context, name string, take int) ([]BetHistoryItem, error) {
	p, err := s.resolvePlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	bets, err := s.store.RecentBets(ctx, p.ID, clampTake(take))
	if err != nil {
		return nil, err
	}
	items := make([]BetHistoryItem, 0, len(bets))
	for _, b := range bets {
		items = append(items, newBetHistoryItem(b))
	}
	return items, nil
}

// Transactions lists the player's newest ledger entries first.
func (s *GameService) Transactions(ctx context.Context, name string, take int) ([]LedgerEntry, error) {
	p, err := s.resolvePlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.RecentLedger(ctx, p.ID, clampTake(take))
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, newLedgerEntry(e))
	}
	return out, nil
}

// AuditLedger replays the player's ledger under the funds lock so no commit
// can land between reading the entries and reading the balance.
func (s *GameService) AuditLedger(ctx context.Context, playerID uuid.UUID) error {
	return s.store.Atomic(ctx, func(tx database.Tx) error {
		funds, err := tx.LockPlayerFunds(ctx, playerID)
		if err != nil {
			return err
		}
		entries, err := tx.Ledger(ctx, playerID)
		if err != nil {
			return err
		}
		return VerifyLedger(entries, funds)
	})
}

// AuditAll runs AuditLedger for every player and returns how many failed
// the replay.
func (s *GameService) AuditAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListPlayerIDs(ctx)
	if err != nil {
		return 0, err
	}
	mismatches := 0
	for _, id := range ids {
		err := s.AuditLedger(ctx, id)
		var mismatch *LedgerMismatchError
		switch {
		case err == nil:
		case errors.As(err, &mismatch):
			mismatches++
			metrics.RecordLedgerMismatch()
			logger.ErrorCtx(ctx, "❌ ledger mismatch", zap.String("player", id.String()), zap.Error(err))
		default:
			return mismatches, err
		}
	}
	return mismatches, nil
}
