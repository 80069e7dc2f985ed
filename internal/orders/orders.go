// Package orders is the order store. It owns orders.json. Orders are created
// at checkout, move through a fixed status set, and are never deleted.
package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/premstore/storebot/internal/models"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/store"
)

// PriceSource resolves products at checkout time so line totals always use
// the current catalog price.
type PriceSource interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

type Service struct {
	st      storage.Store
	catalog PriceSource
	mu      sync.Mutex
}

func NewService(st storage.Store, catalog PriceSource) *Service {
	return &Service{st: st, catalog: catalog}
}

// ItemRequest is one checkout line as it comes out of a cart.
type ItemRequest struct {
	ProductID int64
	VariantID int
	Quantity  int
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	UserID int64
	Status string
}

func (s *Service) Create(ctx context.Context, userID int64, userName string, items []ItemRequest) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items required", store.ErrValidation)
	}

	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", store.ErrValidation)
		}
		p, err := s.catalog.Get(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}

		name := p.Name
		price := p.Price
		variantName := ""
		if it.VariantID > 0 {
			v, ok := findVariant(p, it.VariantID)
			if !ok {
				return nil, fmt.Errorf("%w: product %d variant %d", store.ErrNotFound, p.ID, it.VariantID)
			}
			price = v.Price
			variantName = v.Name
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, models.OrderItem{
			ProductID:   p.ID,
			ProductName: name,
			VariantID:   it.VariantID,
			Variant:     variantName,
			Quantity:    it.Quantity,
			UnitPrice:   price,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := models.Order{
		ID:          nextID(orders),
		OrderNumber: newOrderNumber(now),
		UserID:      userID,
		UserName:    userName,
		Items:       lines,
		Total:       total,
		Status:      models.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	orders = append(orders, o)
	if err := s.st.Save(ctx, storage.DocOrders, orders); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns matching orders, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := orders[:0:0]
	for _, o := range orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, fmt.Errorf("%w: order %d", store.ErrNotFound, id)
}

// SetStatus moves an order to a new status. Statuses outside the fixed set
// are validation errors; delivered and cancelled orders reject any further
// transition. No fuller transition table is enforced.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", store.ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range orders {
		if orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: order %d", store.ErrNotFound, id)
	}

	o := &orders[idx]
	if models.TerminalOrderStatus(o.Status) {
		return nil, fmt.Errorf("%w: order %d is already %s", store.ErrConflict, id, o.Status)
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	if err := s.st.Save(ctx, storage.DocOrders, orders); err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

func (s *Service) load(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.st.Load(ctx, storage.DocOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

func findVariant(p *models.Product, variantID int) (models.Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return models.Variant{}, false
}

func nextID(orders []models.Order) int64 {
	var max int64
	for i := range orders {
		if orders[i].ID > max {
			max = orders[i].ID
		}
	}
	return max + 1
}
