// Package users is the account store keyed by chat id. It owns users.json.
// Carts are not part of the record: they are session state and live in the
// carts package only.
package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

type Service struct {
	st storage.Store
	mu sync.Mutex
}

func NewService(st storage.Store) *Service {
	return &Service{st: st}
}

// GetOrCreate returns the account for chatID, creating it with a zero balance
// on first contact. Known accounts get their name and activity refreshed.
func (s *Service) GetOrCreate(ctx context.Context, chatID int64, firstName, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	idx := indexOf(users, chatID)
	if idx < 0 {
		u := models.User{
			ID:           chatID,
			FirstName:    firstName,
			Username:     username,
			Balance:      decimal.Zero,
			CreatedAt:    now,
			LastActivity: now,
		}
		users = append(users, u)
		if err := s.st.Save(ctx, storage.DocUsers, users); err != nil {
			return nil, err
		}
		return &u, nil
	}

	u := &users[idx]
	if firstName != "" {
		u.FirstName = firstName
	}
	if username != "" {
		u.Username = username
	}
	u.LastActivity = now
	if err := s.st.Save(ctx, storage.DocUsers, users); err != nil {
		return nil, err
	}
	out := *u
	return &out, nil
}

func (s *Service) Get(ctx context.Context, chatID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(users, chatID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: user %d", store.ErrNotFound, chatID)
	}
	u := users[idx]
	return &u, nil
}

// AdjustBalance applies delta to the stored balance. A delta that would take
// the balance negative fails with ErrInsufficientFunds and leaves the record
// untouched.
func (s *Service) AdjustBalance(ctx context.Context, chatID int64, delta decimal.Decimal) (*models.User, error) {
	return s.mutate(ctx, chatID, func(u *models.User) error {
		next := u.Balance.Add(delta)
		if next.IsNegative() {
			return fmt.Errorf("%w: balance %s, short by %s",
				store.ErrInsufficientFunds, u.Balance.StringFixed(2), next.Neg().StringFixed(2))
		}
		u.Balance = next
		return nil
	})
}

// Credit adds a completed deposit to the balance and lifetime totals.
func (s *Service) Credit(ctx context.Context, chatID int64, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: credit amount must be > 0", store.ErrValidation)
	}
	return s.mutate(ctx, chatID, func(u *models.User) error {
		u.Balance = u.Balance.Add(amount)
		u.TotalDeposited = u.TotalDeposited.Add(amount)
		return nil
	})
}

// Spend deducts a checkout total and bumps the purchase counters.
func (s *Service) Spend(ctx context.Context, chatID int64, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: spend amount must be > 0", store.ErrValidation)
	}
	return s.mutate(ctx, chatID, func(u *models.User) error {
		if u.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, required %s",
				store.ErrInsufficientFunds, u.Balance.StringFixed(2), amount.StringFixed(2))
		}
		u.Balance = u.Balance.Sub(amount)
		u.TotalSpent = u.TotalSpent.Add(amount)
		u.OrderCount++
		return nil
	})
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// TopSpenders returns up to limit accounts ordered by lifetime spend.
func (s *Service) TopSpenders(ctx context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].TotalSpent.GreaterThan(users[j].TotalSpent)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Service) mutate(ctx context.Context, chatID int64, fn func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(users, chatID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: user %d", store.ErrNotFound, chatID)
	}
	if err := fn(&users[idx]); err != nil {
		return nil, err
	}
	users[idx].LastActivity = time.Now().UTC()
	if err := s.st.Save(ctx, storage.DocUsers, users); err != nil {
		return nil, err
	}
	out := users[idx]
	return &out, nil
}

func (s *Service) load(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.st.Load(ctx, storage.DocUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func indexOf(users []models.User, chatID int64) int {
	for i := range users {
		if users[i].ID == chatID {
			return i
		}
	}
	return -1
}
