// Package carts holds per-user shopping carts. Carts are session state: they
// live in process memory only, expire after a period of inactivity, and are
// lost on restart. Committed orders are the only durable trace of a purchase.
package carts

import (
	"sync"
	"time"
)

// Item is one cart line. VariantID is zero when the product has no variant
// selected.
type Item struct {
	ProductID int64
	VariantID int
	Quantity  int
}

type entry struct {
	items   []Item
	touched time.Time
}

type Service struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[int64]*entry
}

func NewService(ttl time.Duration) *Service {
	return &Service{ttl: ttl, m: make(map[int64]*entry)}
}

// Add puts qty units of a product into the user's cart, merging with an
// existing line for the same product and variant. Non-positive quantities
// count as one.
func (s *Service) Add(userID, productID int64, variantID, qty int) {
	if qty <= 0 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.fresh(userID)
	for i := range e.items {
		if e.items[i].ProductID == productID && e.items[i].VariantID == variantID {
			e.items[i].Quantity += qty
			return
		}
	}
	e.items = append(e.items, Item{ProductID: productID, VariantID: variantID, Quantity: qty})
}

// Remove drops the whole line for the given product and variant.
func (s *Service) Remove(userID, productID int64, variantID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.fresh(userID)
	for i := range e.items {
		if e.items[i].ProductID == productID && e.items[i].VariantID == variantID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

func (s *Service) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// Get returns a copy of the user's cart lines, empty if the cart expired.
func (s *Service) Get(userID int64) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[userID]
	if !ok || s.expired(e) {
		delete(s.m, userID)
		return nil
	}
	e.touched = time.Now()
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// Sweep drops every expired cart. Run it periodically so abandoned sessions
// do not pile up.
func (s *Service) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		if s.expired(e) {
			delete(s.m, id)
		}
	}
}

// fresh returns the live entry for userID, replacing an expired one, and
// marks it touched. Callers hold s.mu.
func (s *Service) fresh(userID int64) *entry {
	e, ok := s.m[userID]
	if !ok || s.expired(e) {
		e = &entry{}
		s.m[userID] = e
	}
	e.touched = time.Now()
	return e
}

func (s *Service) expired(e *entry) bool {
	return s.ttl > 0 && time.Since(e.touched) > s.ttl
}
