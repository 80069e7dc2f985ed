// Package deposits is the balance top-up store. It owns deposits.json. A
// deposit starts pending, may get payment proof attached, and is settled by
// an admin: approval credits the user's balance, rejection closes it.
package deposits

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

// LimitSource supplies the allowed deposit range.
type LimitSource interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// Crediter books an approved amount onto a user account.
type Crediter interface {
	Credit(ctx context.Context, chatID int64, amount decimal.Decimal) (*models.User, error)
}

type Service struct {
	st       storage.Store
	limits   LimitSource
	accounts Crediter
	mu       sync.Mutex
}

func NewService(st storage.Store, limits LimitSource, accounts Crediter) *Service {
	return &Service{st: st, limits: limits, accounts: accounts}
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	UserID int64
	Status string
}

func (s *Service) Create(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*models.Deposit, error) {
	cfg, err := s.limits.Get(ctx)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(cfg.MinDeposit) {
		return nil, fmt.Errorf("%w: minimum deposit is %s", store.ErrValidation, cfg.MinDeposit.StringFixed(2))
	}
	if amount.GreaterThan(cfg.MaxDeposit) {
		return nil, fmt.Errorf("%w: maximum deposit is %s", store.ErrValidation, cfg.MaxDeposit.StringFixed(2))
	}
	if method == "" {
		method = "manual"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deposits, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := models.Deposit{
		ID:        nextID(deposits),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    models.DepositStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.Reference = fmt.Sprintf("DEP%04d", d.ID)

	deposits = append(deposits, d)
	if err := s.st.Save(ctx, storage.DocDeposits, deposits); err != nil {
		return nil, err
	}
	return &d, nil
}

// SubmitProof marks the deposit as awaiting admin verification.
func (s *Service) SubmitProof(ctx context.Context, id int64) (*models.Deposit, error) {
	return s.transition(ctx, id, func(d *models.Deposit) error {
		switch d.Status {
		case models.DepositStatusPending, models.DepositStatusProofSubmitted:
			d.Status = models.DepositStatusProofSubmitted
			return nil
		default:
			return fmt.Errorf("%w: deposit %d is already %s", store.ErrConflict, d.ID, d.Status)
		}
	})
}

// Approve settles the deposit and credits the user. A settled deposit cannot
// be approved again, so the balance is credited at most once. The status
// write and the balance write hit different documents and are not atomic;
// if the credit fails the deposit stays completed and the error surfaces to
// the admin.
func (s *Service) Approve(ctx context.Context, id int64) (*models.Deposit, error) {
	d, err := s.transition(ctx, id, func(d *models.Deposit) error {
		if d.Status == models.DepositStatusCompleted || d.Status == models.DepositStatusRejected {
			return fmt.Errorf("%w: deposit %d is already %s", store.ErrConflict, d.ID, d.Status)
		}
		d.Status = models.DepositStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.Credit(ctx, d.UserID, d.Amount); err != nil {
		return nil, fmt.Errorf("deposit %d approved but credit failed: %w", d.ID, err)
	}
	return d, nil
}

func (s *Service) Reject(ctx context.Context, id int64, note string) (*models.Deposit, error) {
	return s.transition(ctx, id, func(d *models.Deposit) error {
		if d.Status == models.DepositStatusCompleted || d.Status == models.DepositStatusRejected {
			return fmt.Errorf("%w: deposit %d is already %s", store.ErrConflict, d.ID, d.Status)
		}
		d.Status = models.DepositStatusRejected
		d.Note = note
		return nil
	})
}

// List returns matching deposits, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deposits, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := deposits[:0:0]
	for _, d := range deposits {
		if f.UserID != 0 && d.UserID != f.UserID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deposits, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range deposits {
		if deposits[i].ID == id {
			d := deposits[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: deposit %d", store.ErrNotFound, id)
}

func (s *Service) transition(ctx context.Context, id int64, fn func(*models.Deposit) error) (*models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deposits, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range deposits {
		if deposits[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: deposit %d", store.ErrNotFound, id)
	}

	if err := fn(&deposits[idx]); err != nil {
		return nil, err
	}
	deposits[idx].UpdatedAt = time.Now().UTC()
	if err := s.st.Save(ctx, storage.DocDeposits, deposits); err != nil {
		return nil, err
	}
	out := deposits[idx]
	return &out, nil
}

func (s *Service) load(ctx context.Context) ([]models.Deposit, error) {
	var deposits []models.Deposit
	if err := s.st.Load(ctx, storage.DocDeposits, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func nextID(deposits []models.Deposit) int64 {
	var max int64
	for i := range deposits {
		if deposits[i].ID > max {
			max = deposits[i].ID
		}
	}
	return max + 1
}
