package database

import (
	"context"

	"wintoday/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps everything in the relational database. Exclusive access to
// a player's balance comes from SELECT ... FOR UPDATE inside a transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindPlayerByNormalizedName(ctx context.Context, key string) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).Where("normalized_name = ?", key).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) FindPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	var p models.Player
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) ListPlayerIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Player{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "list players")
	}
	return ids, nil
}

func (s *GormStore) InsertRound(ctx context.Context, r *models.GameRound) error {
	return insertRound(s.db.WithContext(ctx), r)
}

func (s *GormStore) FindRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error) {
	var r models.GameRound
	if err := s.db.WithContext(ctx).
		Where("id = ? AND player_id = ?", roundID, playerID).
		First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) RecentBets(ctx context.Context, playerID uuid.UUID, limit int) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.WithContext(ctx).
		Joins("Round").
		Where("bets.player_id = ?", playerID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Round", Name: "created_at"}, Desc: true}).
		Limit(limit).
		Find(&bets).Error
	if err != nil {
		return nil, errors.Wrap(err, "query recent bets")
	}
	return bets, nil
}

func (s *GormStore) RecentLedger(ctx context.Context, playerID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
	var entries []models.BalanceTransaction
	if err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("seq DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "query recent ledger")
	}
	return entries, nil
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) InsertPlayerIfAbsent(ctx context.Context, p *models.Player) (*models.Player, bool, error) {
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "normalized_name"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(p)
	if res.Error != nil {
		return nil, false, errors.Wrap(res.Error, "insert player")
	}
	if res.RowsAffected == 1 {
		return p, true, nil
	}

	var existing models.Player
	if err := t.db.WithContext(ctx).Where("normalized_name = ?", p.NormalizedName).First(&existing).Error; err != nil {
		return nil, false, errors.Wrap(err, "reload player")
	}
	return &existing, false, nil
}

func (t *gormTx) LockPlayerFunds(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error) {
	var p models.Player
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "funds").
		Where("id = ?", playerID).
		First(&p).Error; err != nil {
		return decimal.Zero, err
	}
	return p.Funds, nil
}

func (t *gormTx) UpdatePlayerFunds(ctx context.Context, playerID uuid.UUID, funds decimal.Decimal) error {
	res := t.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", playerID).Update("funds", funds)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update funds")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *gormTx) LockRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error) {
	var r models.GameRound
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND player_id = ?", roundID, playerID).
		First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *gormTx) MarkRoundCommitted(ctx context.Context, roundID uuid.UUID) error {
	res := t.db.WithContext(ctx).Model(&models.GameRound{}).
		Where("id = ? AND bet_committed = ?", roundID, false).
		Update("bet_committed", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, "mark round committed")
	}
	if res.RowsAffected == 0 {
		return ErrRoundCommitted
	}
	return nil
}

func (t *gormTx) InsertRound(ctx context.Context, r *models.GameRound) error {
	return insertRound(t.db.WithContext(ctx), r)
}

func (t *gormTx) InsertBet(ctx context.Context, b *models.Bet) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error; err != nil {
		return errors.Wrap(err, "insert bet")
	}
	return nil
}

func (t *gormTx) InsertLedgerEntry(ctx context.Context, e *models.BalanceTransaction) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error; err != nil {
		return errors.Wrap(err, "insert ledger entry")
	}
	return nil
}

func (t *gormTx) Ledger(ctx context.Context, playerID uuid.UUID) ([]models.BalanceTransaction, error) {
	var entries []models.BalanceTransaction
	if err := t.db.WithContext(ctx).Where("player_id = ?", playerID).Order("seq").Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "query ledger")
	}
	return entries, nil
}

func insertRound(db *gorm.DB, r *models.GameRound) error {
	if err := db.Omit(clause.Associations).Create(r).Error; err != nil {
		return errors.Wrap(err, "insert round")
	}
	return nil
}
