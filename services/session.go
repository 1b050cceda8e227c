package services

import (
	"context"
	"fmt"

	"wintoday/database"
	"wintoday/logger"
	"wintoday/metrics"
	"wintoday/models"
	"wintoday/roulette"

	"go.uber.org/zap"
)

// SaveSession settles a batch of offline plays in one atomic unit. The
// outcomes are taken as reported by the client. Any invalid play or any
// overdraw of the running balance rejects the whole batch.
func (s *GameService) SaveSession(ctx context.Context, req SaveSessionRequest) (out *SessionSaveResult, err error) {
	defer func() {
		if out != nil {
			metrics.RecordSession(true, len(out.Outcomes))
		} else {
			metrics.RecordSession(false, 0)
		}
	}()

	p, err := s.resolvePlayer(ctx, req.PlayerName)
	if err != nil {
		return nil, err
	}
	if len(req.Bets) > s.sessionMaxBets {
		return nil, invalidf("session has %d bets, limit is %d", len(req.Bets), s.sessionMaxBets)
	}

	type play struct {
		SessionPlay
		outcome roulette.Outcome
		result  roulette.Result
	}
	plays := make([]play, 0, len(req.Bets))
	for i, b := range req.Bets {
		if err := validateWager(b.Wager); err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, err)
		}
		color, err := roulette.ParseColor(b.ColorResult)
		if err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, invalidBet(err))
		}
		o := roulette.Outcome{Number: b.NumberResult, Color: color}
		criteria, err := roulette.ParseCriteria(b.BetType, b.selectors())
		if err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, invalidBet(err))
		}
		res, err := roulette.Evaluate(o, criteria, b.Wager)
		if err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, invalidBet(err))
		}
		plays = append(plays, play{SessionPlay: b, outcome: o, result: res})
	}

	err = s.store.Atomic(ctx, func(tx database.Tx) error {
		l, err := openLedger(ctx, tx, p.ID, s.now)
		if err != nil {
			return err
		}
		result := &SessionSaveResult{StartingFunds: l.balance, Outcomes: make([]BetOutcome, 0, len(plays))}
		if len(plays) == 0 {
			result.EndingFunds = l.balance
			out = result
			return nil
		}

		for _, pl := range plays {
			playedAt := s.now()
			if pl.PlayedAt != nil && !pl.PlayedAt.IsZero() {
				playedAt = pl.PlayedAt.UTC()
			}
			round := &models.GameRound{
				PlayerID:     p.ID,
				Number:       pl.outcome.Number,
				Color:        pl.outcome.Color,
				BetCommitted: true,
				CreatedAt:    playedAt,
			}
			if err := tx.InsertRound(ctx, round); err != nil {
				return err
			}
			o, err := s.settle(ctx, l, round, pl.result, pl.Wager)
			if err != nil {
				return err
			}
			result.Outcomes = append(result.Outcomes, *o)
		}
		if err := l.close(ctx); err != nil {
			return err
		}
		result.EndingFunds = l.balance
		out = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "💾 session saved",
		zap.String("player", p.Name),
		zap.Int("bets", len(out.Outcomes)),
		zap.String("startingFunds", out.StartingFunds.StringFixed(2)),
		zap.String("endingFunds", out.EndingFunds.StringFixed(2)),
	)
	return out, nil
}
