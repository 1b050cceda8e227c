package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"wintoday/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MemoryStore is an in-process Store for tests and local play. Atomic units
// are serialized and run against a scratch copy that only replaces the live
// state once fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

type memState struct {
	players  map[uuid.UUID]models.Player
	byName   map[string]uuid.UUID
	rounds   map[uuid.UUID]models.GameRound
	bets     []models.Bet
	betRound map[uuid.UUID]uuid.UUID
	ledger   []models.BalanceTransaction
	seq      int64
}

func newMemState() *memState {
	return &memState{
		players:  map[uuid.UUID]models.Player{},
		byName:   map[string]uuid.UUID{},
		rounds:   map[uuid.UUID]models.GameRound{},
		betRound: map[uuid.UUID]uuid.UUID{},
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		players:  make(map[uuid.UUID]models.Player, len(st.players)),
		byName:   make(map[string]uuid.UUID, len(st.byName)),
		rounds:   make(map[uuid.UUID]models.GameRound, len(st.rounds)),
		bets:     append([]models.Bet(nil), st.bets...),
		betRound: make(map[uuid.UUID]uuid.UUID, len(st.betRound)),
		ledger:   append([]models.BalanceTransaction(nil), st.ledger...),
		seq:      st.seq,
	}
	for k, v := range st.players {
		c.players[k] = v
	}
	for k, v := range st.byName {
		c.byName[k] = v
	}
	for k, v := range st.rounds {
		c.rounds[k] = v
	}
	for k, v := range st.betRound {
		c.betRound[k] = v
	}
	return c
}

func (s *MemoryStore) FindPlayerByNormalizedName(ctx context.Context, key string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.byName[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := s.state.players[id]
	return &p, nil
}

func (s *MemoryStore) FindPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.players[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPlayerIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]models.Player, 0, len(s.state.players))
	for _, p := range s.state.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].CreatedAt.Before(players[j].CreatedAt) })
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids, nil
}

func (s *MemoryStore) InsertRound(ctx context.Context, r *models.GameRound) error {
	return s.Atomic(ctx, func(tx Tx) error { return tx.InsertRound(ctx, r) })
}

func (s *MemoryStore) FindRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.rounds[roundID]
	if !ok || r.PlayerID != playerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (s *MemoryStore) RecentBets(ctx context.Context, playerID uuid.UUID, limit int) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bets []models.Bet
	for i := len(s.state.bets) - 1; i >= 0; i-- {
		b := s.state.bets[i]
		if b.PlayerID != playerID {
			continue
		}
		b.Round = s.state.rounds[b.RoundID]
		bets = append(bets, b)
	}
	sort.SliceStable(bets, func(i, j int) bool { return bets[i].Round.CreatedAt.After(bets[j].Round.CreatedAt) })
	if limit > 0 && len(bets) > limit {
		bets = bets[:limit]
	}
	return bets, nil
}

func (s *MemoryStore) RecentLedger(ctx context.Context, playerID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.BalanceTransaction
	for i := len(s.state.ledger) - 1; i >= 0; i-- {
		if e := s.state.ledger[i]; e.PlayerID == playerID {
			entries = append(entries, e)
			if limit > 0 && len(entries) == limit {
				break
			}
		}
	}
	return entries, nil
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	scratch := s.state.clone()
	if err := fn(&memTx{st: scratch}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = scratch
	return nil
}

type memTx struct {
	st *memState
}

func (t *memTx) InsertPlayerIfAbsent(ctx context.Context, p *models.Player) (*models.Player, bool, error) {
	if id, ok := t.st.byName[p.NormalizedName]; ok {
		existing := t.st.players[id]
		return &existing, false, nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	t.st.players[p.ID] = *p
	t.st.byName[p.NormalizedName] = p.ID
	return p, true, nil
}

func (t *memTx) LockPlayerFunds(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error) {
	p, ok := t.st.players[playerID]
	if !ok {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	return p.Funds, nil
}

func (t *memTx) UpdatePlayerFunds(ctx context.Context, playerID uuid.UUID, funds decimal.Decimal) error {
	p, ok := t.st.players[playerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Funds = funds
	p.UpdatedAt = time.Now()
	t.st.players[playerID] = p
	return nil
}

func (t *memTx) LockRoundForPlayer(ctx context.Context, roundID, playerID uuid.UUID) (*models.GameRound, error) {
	r, ok := t.st.rounds[roundID]
	if !ok || r.PlayerID != playerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (t *memTx) MarkRoundCommitted(ctx context.Context, roundID uuid.UUID) error {
	r, ok := t.st.rounds[roundID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.BetCommitted {
		return ErrRoundCommitted
	}
	r.BetCommitted = true
	t.st.rounds[roundID] = r
	return nil
}

func (t *memTx) InsertRound(ctx context.Context, r *models.GameRound) error {
	if _, ok := t.st.players[r.PlayerID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if _, ok := t.st.rounds[r.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	t.st.rounds[r.ID] = *r
	return nil
}

func (t *memTx) InsertBet(ctx context.Context, b *models.Bet) error {
	if _, ok := t.st.rounds[b.RoundID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := t.st.betRound[b.RoundID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	stored := *b
	stored.Round = models.GameRound{}
	t.st.bets = append(t.st.bets, stored)
	t.st.betRound[b.RoundID] = b.ID
	return nil
}

func (t *memTx) InsertLedgerEntry(ctx context.Context, e *models.BalanceTransaction) error {
	if _, ok := t.st.players[e.PlayerID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	t.st.seq++
	e.Seq = t.st.seq
	stored := *e
	stored.Bet = nil
	t.st.ledger = append(t.st.ledger, stored)
	return nil
}

func (t *memTx) Ledger(ctx context.Context, playerID uuid.UUID) ([]models.BalanceTransaction, error) {
	var entries []models.BalanceTransaction
	for _, e := range t.st.ledger {
		if e.PlayerID == playerID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
