// Package settings stores the single storefront settings document. Unlike
// the other collections, settings.json holds one object, not an array.
package settings

import (
	"context"
	"fmt"
	"sync"

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

type UpdateRequest struct {
	StoreName      *string          `json:"store_name"`
	WelcomeMessage *string          `json:"welcome_message"`
	SupportContact *string          `json:"support_contact"`
	MinDeposit     *decimal.Decimal `json:"min_deposit"`
	MaxDeposit     *decimal.Decimal `json:"max_deposit"`
}

// Get returns the stored settings, writing the defaults on first access.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

func (s *Service) Update(ctx context.Context, req UpdateRequest) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	if req.StoreName != nil {
		if *req.StoreName == "" {
			return nil, fmt.Errorf("%w: store_name must not be empty", store.ErrValidation)
		}
		cfg.StoreName = *req.StoreName
	}
	if req.WelcomeMessage != nil {
		cfg.WelcomeMessage = *req.WelcomeMessage
	}
	if req.SupportContact != nil {
		cfg.SupportContact = *req.SupportContact
	}
	if req.MinDeposit != nil {
		cfg.MinDeposit = *req.MinDeposit
	}
	if req.MaxDeposit != nil {
		cfg.MaxDeposit = *req.MaxDeposit
	}

	if cfg.MinDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: min_deposit must be >= 0", store.ErrValidation)
	}
	if cfg.MaxDeposit.LessThan(cfg.MinDeposit) {
		return nil, fmt.Errorf("%w: max_deposit must be >= min_deposit", store.ErrValidation)
	}

	if err := s.st.Save(ctx, storage.DocSettings, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Service) get(ctx context.Context) (*models.Settings, error) {
	var cfg models.Settings
	if err := s.st.Load(ctx, storage.DocSettings, &cfg); err != nil {
		return nil, err
	}
	if cfg.StoreName == "" {
		cfg = models.DefaultSettings()
		if err := s.st.Save(ctx, storage.DocSettings, cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
