// Package catalog is the product store. It owns products.json: every
// read-modify-write cycle runs under the service mutex, and every mutation
// rewrites the whole document.
package catalog

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

type CreateRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	Stock       int              `json:"stock"`
	Variants    []models.Variant `json:"variants"`
}

// UpdateRequest merges set fields into the stored record; nil fields keep
// their current value.
type UpdateRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Price       *decimal.Decimal  `json:"price"`
	Category    *string           `json:"category"`
	ImageURL    *string           `json:"image_url"`
	Stock       *int              `json:"stock"`
	Variants    *[]models.Variant `json:"variants"`
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Product, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	p := models.Product{
		ID:          nextID(products),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Variants:    normalizeVariants(req.Variants),
		CreatedAt:   time.Now().UTC(),
	}

	products = append(products, p)
	if err := s.st.Save(ctx, storage.DocProducts, products); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*models.Product, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}

	p := &products[idx]
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Variants != nil {
		p.Variants = normalizeVariants(*req.Variants)
	}

	if err := s.st.Save(ctx, storage.DocProducts, products); err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return fmt.Errorf("%w: product %d", store.ErrNotFound, id)
	}

	products = append(products[:idx], products[idx+1:]...)
	return s.st.Save(ctx, storage.DocProducts, products)
}

// Categories returns the distinct product categories, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range products {
		c := products[i].Category
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// DecrementStock subtracts the ordered quantities after checkout, flooring at
// zero. Items referencing products that no longer exist are skipped: orders
// keep no foreign keys into the catalog.
func (s *Service) DecrementStock(ctx context.Context, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for _, it := range items {
		idx := indexOf(products, it.ProductID)
		if idx < 0 {
			continue
		}
		p := &products[idx]
		if it.VariantID > 0 {
			for vi := range p.Variants {
				if p.Variants[vi].ID == it.VariantID {
					p.Variants[vi].Stock = floorZero(p.Variants[vi].Stock - it.Quantity)
					changed = true
					break
				}
			}
			continue
		}
		p.Stock = floorZero(p.Stock - it.Quantity)
		changed = true
	}

	if !changed {
		return nil
	}
	return s.st.Save(ctx, storage.DocProducts, products)
}

// SeedDefaults writes a small starter catalog when the store is empty, so a
// fresh install has something to browse.
func (s *Service) SeedDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return nil
	}

	now := time.Now().UTC()
	products = []models.Product{
		{
			ID:          1,
			Name:        "Wireless Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Price:       decimal.RequireFromString("99.99"),
			Category:    "Electronics",
			Stock:       10,
			CreatedAt:   now,
		},
		{
			ID:          2,
			Name:        "Coffee Mug",
			Description: "Ceramic coffee mug with custom design",
			Price:       decimal.RequireFromString("15.99"),
			Category:    "Home",
			Stock:       25,
			CreatedAt:   now,
		},
		{
			ID:          3,
			Name:        "Smartphone Case",
			Description: "Protective case for smartphones",
			Price:       decimal.RequireFromString("24.99"),
			Category:    "Accessories",
			Stock:       15,
			CreatedAt:   now,
		},
	}
	return s.st.Save(ctx, storage.DocProducts, products)
}

func (s *Service) load(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.st.Load(ctx, storage.DocProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func validateCreate(req CreateRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if req.Description == "" {
		return fmt.Errorf("%w: description is required", store.ErrValidation)
	}
	if req.Category == "" {
		return fmt.Errorf("%w: category is required", store.ErrValidation)
	}
	if req.Price == nil {
		return fmt.Errorf("%w: price is required", store.ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", store.ErrValidation)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", store.ErrValidation)
	}
	return validateVariants(req.Variants)
}

func validateUpdate(req UpdateRequest) error {
	if req.Name != nil && *req.Name == "" {
		return fmt.Errorf("%w: name must not be empty", store.ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", store.ErrValidation)
	}
	if req.Stock != nil && *req.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", store.ErrValidation)
	}
	if req.Variants != nil {
		return validateVariants(*req.Variants)
	}
	return nil
}

func validateVariants(variants []models.Variant) error {
	for _, v := range variants {
		if v.Name == "" {
			return fmt.Errorf("%w: variant name is required", store.ErrValidation)
		}
		if v.Price.IsNegative() {
			return fmt.Errorf("%w: variant price must be >= 0", store.ErrValidation)
		}
		if v.Stock < 0 {
			return fmt.Errorf("%w: variant stock must be >= 0", store.ErrValidation)
		}
	}
	return nil
}

// normalizeVariants assigns sequential ids to variants submitted without one.
func normalizeVariants(variants []models.Variant) []models.Variant {
	if len(variants) == 0 {
		return nil
	}
	out := make([]models.Variant, len(variants))
	copy(out, variants)
	next := 0
	for _, v := range out {
		if v.ID > next {
			next = v.ID
		}
	}
	for i := range out {
		if out[i].ID == 0 {
			next++
			out[i].ID = next
		}
	}
	return out
}

func nextID(products []models.Product) int64 {
	var max int64
	for i := range products {
		if products[i].ID > max {
			max = products[i].ID
		}
	}
	return max + 1
}

func indexOf(products []models.Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
