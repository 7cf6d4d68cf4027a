package cart

import "sync"

// LineItem maps a product id to a quantity. Quantity is always >= 1; a
// decrement that would reach zero removes the line item instead.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Direction int

const (
	Increment Direction = iota
	Decrement
)

// Store owns the cart line items. At most one line item exists per product
// id; insertion order is first-added order and survives quantity changes,
// new products append at the end.
//
// Operations never fail: ids are not validated against the catalog, and
// operations on absent ids are no-ops. The mutex only guards against
// concurrent HTTP handlers; there is no cross-process sharing.
type Store struct {
	mu    sync.RWMutex
	items []LineItem
}

func NewStore() *Store {
	return &Store{}
}

// Add appends {id, 1} for an unseen product, or bumps the existing line
// item's quantity.
func (s *Store) Add(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity++
			return
		}
	}
	s.items = append(s.items, LineItem{ProductID: productID, Quantity: 1})
}

// Change adjusts a line item's quantity by one. Decrementing below 1
// removes the line item entirely. Absent ids are a no-op.
func (s *Store) Change(productID string, d Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}

		if d == Increment {
			s.items[i].Quantity++
			return
		}

		s.items[i].Quantity--
		if s.items[i].Quantity < 1 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		return
	}
}

// Remove drops every line item for the given product id.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
}

// Replace adopts a previously persisted cart. The input is sanitized so the
// store's invariants hold even against hand-edited durable state: items
// with quantity < 1 are dropped and duplicate ids merge into the first
// occurrence.
func (s *Store) Replace(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.items[:0]

merge:
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		for i := range s.items {
			if s.items[i].ProductID == it.ProductID {
				s.items[i].Quantity += it.Quantity
				continue merge
			}
		}
		s.items = append(s.items, it)
	}
}

// Items returns the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalQuantity is the badge count: the sum of all quantities.
func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalCents prices a cart against a price lookup. Line items whose id does
// not resolve contribute 0.
func TotalCents(items []LineItem, price func(id string) (int64, bool)) int64 {
	var total int64
	for _, it := range items {
		if cents, ok := price(it.ProductID); ok {
			total += cents * int64(it.Quantity)
		}
	}
	return total
}
