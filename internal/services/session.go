package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pointplay-backend/internal/models"
	"pointplay-backend/internal/store"
)

const (
	msgSessionStarted = "Session started. Have fun! 🎮"
	msgBalanceReset   = "Balance reset to starting amount."
)

// Session is the single owner of one player's balance, username, coin
// selection, bonus flag and activity feed. Every method holds mu for its
// whole duration, persistence included.
type Session struct {
	mu sync.Mutex

	id        string
	profileID string
	store     store.Store
	notifier  Broadcaster
	now       func() time.Time

	rng  RandomSource
	fair *FairSource

	activity *ActivityRecorder

	balance      int64
	username     string
	selected     models.CoinSide
	bonusClaimed bool
	coinMessage  string
	diceMessage  string

	startedAt  time.Time
	lastActive time.Time
}

type SessionOption func(*Session)

// WithRandomSource replaces the seeded fairness source, e.g. with a stub.
func WithRandomSource(rng RandomSource) SessionOption {
	return func(s *Session) {
		s.rng = rng
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

func WithBroadcaster(b Broadcaster) SessionOption {
	return func(s *Session) {
		s.notifier = b
	}
}

func NewSession(id, profileID string, kv store.Store, opts ...SessionOption) (*Session, error) {
	s := &Session{
		id:        id,
		profileID: profileID,
		store:     kv,
		notifier:  noopBroadcaster{},
		now:       time.Now,
		balance:   models.StartBalance,
		username:  models.DefaultUsername,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		fair, err := NewFairSource(id)
		if err != nil {
			return nil, err
		}
		s.fair = fair
		s.rng = fair.Next
	}

	s.activity = NewActivityRecorder(models.ActivityCapacity, s.now)
	s.startedAt = s.now()
	s.lastActive = s.startedAt
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ProfileID() string {
	return s.profileID
}

// Start loads persisted state and opens the activity feed.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.activity.Record(msgSessionStarted)
	s.mu.Unlock()
	return nil
}

// Load adopts the persisted balance and username. Malformed values fall back
// to the defaults and balances above models.MaxBalance are clamped to it;
// only store failures are returned. The resulting balance is written back.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance = models.StartBalance
	raw, found, err := s.store.Get(ctx, store.BalanceKey(s.profileID))
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	if found {
		if v, ok := models.ParseLeadingInt(raw); ok && v >= 0 {
			s.balance = min(v, models.MaxBalance)
		}
	}

	s.username = models.DefaultUsername
	name, found, err := s.store.Get(ctx, store.UsernameKey(s.profileID))
	if err != nil {
		return fmt.Errorf("failed to load username: %w", err)
	}
	if found {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.username = trimmed
		}
	}

	return s.persistBalance(ctx)
}

func (s *Session) writeBalance(ctx context.Context, balance int64) error {
	if err := s.store.Set(ctx, store.BalanceKey(s.profileID), strconv.FormatInt(balance, 10)); err != nil {
		return fmt.Errorf("failed to persist balance: %w", err)
	}
	return nil
}

// PersistBalance writes the current balance to the store.
func (s *Session) PersistBalance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistBalance(ctx)
}

func (s *Session) persistBalance(ctx context.Context) error {
	return s.writeBalance(ctx, s.balance)
}

func (s *Session) PersistUsername(ctx context.Context, name string) error {
	if err := s.store.Set(ctx, store.UsernameKey(s.profileID), name); err != nil {
		return fmt.Errorf("failed to persist username: %w", err)
	}
	return nil
}

func (s *Session) touch() {
	s.lastActive = s.now()
}

// publish must be called without mu held.
func (s *Session) publish() {
	s.notifier.BroadcastState(s.Snapshot())
}

func (s *Session) SetUsername(ctx context.Context, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", models.Reject(models.ErrValidation, models.SurfaceUsername, models.MsgInvalidUsername)
	}

	s.mu.Lock()
	s.touch()
	if err := s.PersistUsername(ctx, name); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.username = name
	s.activity.Record(fmt.Sprintf("Username set to %q.", name))
	s.mu.Unlock()

	s.publish()
	return name, nil
}

// SelectSide replaces the current coin flip selection.
func (s *Session) SelectSide(raw string) (models.CoinSide, error) {
	side, err := models.ParseCoinSide(raw)
	if err != nil {
		return models.SideNone, models.Reject(models.ErrValidation, models.SurfaceCoin, models.MsgInvalidCoinSide)
	}

	s.mu.Lock()
	s.touch()
	s.selected = side
	s.mu.Unlock()

	s.publish()
	return side, nil
}

func (s *Session) PlayCoinFlip(ctx context.Context, rawBet string) (*models.CoinFlipOutcome, error) {
	s.mu.Lock()
	s.touch()

	out, err := PlayCoinFlip(rawBet, s.selected, s.balance, s.rng)
	if err != nil {
		if rej, ok := models.AsRejection(err); ok {
			s.coinMessage = rej.Message
			s.mu.Unlock()
			s.publish()
			return nil, err
		}
		s.mu.Unlock()
		return nil, err
	}

	if err := s.writeBalance(ctx, out.NewBalance); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.balance = out.NewBalance
	s.coinMessage = out.Message
	s.activity.Record(out.Activity)
	s.mu.Unlock()

	s.publish()
	return out, nil
}

func (s *Session) PlayDiceRoll(ctx context.Context, rawBet, rawPick string) (*models.DiceRollOutcome, error) {
	s.mu.Lock()
	s.touch()

	out, err := PlayDiceRoll(rawBet, rawPick, s.balance, s.rng)
	if err != nil {
		if rej, ok := models.AsRejection(err); ok {
			s.diceMessage = rej.Message
			s.mu.Unlock()
			s.publish()
			return nil, err
		}
		s.mu.Unlock()
		return nil, err
	}

	if err := s.writeBalance(ctx, out.NewBalance); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.balance = out.NewBalance
	s.diceMessage = out.Message
	s.activity.Record(out.Activity)
	s.mu.Unlock()

	s.publish()
	return out, nil
}

// ClaimBonus credits the bonus at most once between resets. A repeated claim
// returns Claimed=false and changes nothing.
func (s *Session) ClaimBonus(ctx context.Context) (*models.BonusResult, error) {
	s.mu.Lock()
	s.touch()

	if s.bonusClaimed {
		balance := s.balance
		s.mu.Unlock()
		return &models.BonusResult{Claimed: false, NewBalance: balance}, nil
	}

	if models.BalanceRoom(s.balance) < models.BonusAmount {
		rej := models.Reject(models.ErrValidation, models.SurfaceCoin, models.MsgBalanceAtMax)
		s.coinMessage = rej.Message
		s.mu.Unlock()
		s.publish()
		return nil, rej
	}

	newBalance := s.balance + models.BonusAmount
	if err := s.writeBalance(ctx, newBalance); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	msg := fmt.Sprintf("You claimed +%d daily bonus! 🪙", models.BonusAmount)
	s.balance = newBalance
	s.bonusClaimed = true
	s.coinMessage = msg
	s.activity.Record(msg)
	s.mu.Unlock()

	s.publish()
	return &models.BonusResult{
		Claimed:    true,
		Amount:     models.BonusAmount,
		NewBalance: newBalance,
		Message:    msg,
	}, nil
}

// Reset restores the starting balance and clears the bonus flag and coin
// selection. Username and activity history are kept.
func (s *Session) Reset(ctx context.Context) (*models.ResetResult, error) {
	s.mu.Lock()
	s.touch()

	result := &models.ResetResult{
		NewBalance: models.StartBalance,
		Message:    msgBalanceReset,
	}
	if s.fair != nil {
		previous, err := s.fair.Rotate()
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to rotate server seed: %w", err)
		}
		result.PreviousServerSeed = previous
	}

	if err := s.writeBalance(ctx, models.StartBalance); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.balance = models.StartBalance
	s.bonusClaimed = false
	s.selected = models.SideNone
	s.coinMessage = msgBalanceReset
	s.diceMessage = ""
	s.activity.Record(msgBalanceReset)

	s.mu.Unlock()

	s.publish()
	return result, nil
}

func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionSnapshot{
		ProfileID:    s.profileID,
		SessionID:    s.id,
		Username:     s.username,
		Balance:      s.balance,
		SelectedSide: s.selected,
		BonusClaimed: s.bonusClaimed,
		CoinMessage:  s.coinMessage,
		DiceMessage:  s.diceMessage,
		Activity:     s.activity.Entries(),
		StartedAt:    s.startedAt,
	}
}

func (s *Session) Activity() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity.Entries()
}

func (s *Session) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Fairness reports false when the session runs on an injected random source.
func (s *Session) Fairness() (models.FairnessData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fair == nil {
		return models.FairnessData{}, false
	}
	return s.fair.Data(), true
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
