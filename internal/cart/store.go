package cart

import (
	"errors"
	"slices"
	"strings"
	"sync"
)

var (
	ErrInvalidQuantity  = errors.New("cart item quantity must be at least 1")
	ErrInvalidProductID = errors.New("product ID cannot be empty for cart item")
)

type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"qty"`
}

// Observer receives the cart contents after every mutation. The slice is a
// private copy owned by the observer.
type Observer func(items []LineItem)

// Store holds the line items of a single session cart. Every mutation is
// atomic and observers are notified in mutation order. An observer may call
// Items but must not mutate the store it is subscribed to.
type Store struct {
	notifyMu sync.Mutex

	mu        sync.Mutex
	items     []LineItem
	observers map[uint64]Observer
	nextID    uint64
}

func NewStore() *Store {
	return &Store{
		items:     make([]LineItem, 0),
		observers: make(map[uint64]Observer),
	}
}

func (s *Store) AddOrUpdate(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return ErrInvalidProductID
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mutate(func() {
		if i := s.indexOf(productID); i >= 0 {
			s.items[i].Quantity = quantity
			return
		}
		s.items = append(s.items, LineItem{ProductID: productID, Quantity: quantity})
	})
	return nil
}

// Remove deletes the line item for productID. Removing an absent product is a
// no-op that still notifies observers.
func (s *Store) Remove(productID string) {
	s.mutate(func() {
		i := s.indexOf(productID)
		if i < 0 {
			return
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	})
}

// RemoveOrdered removes the given lines in one mutation, but only those whose
// quantity is still the one in ordered. Lines added or changed since the
// snapshot was taken stay in the cart.
func (s *Store) RemoveOrdered(ordered []LineItem) {
	s.mutate(func() {
		kept := make([]LineItem, 0, len(s.items))
		for _, item := range s.items {
			if !slices.Contains(ordered, item) {
				kept = append(kept, item)
			}
		}
		s.items = kept
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func() {
		s.items = make([]LineItem, 0)
	})
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn and returns a function that removes it again.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) mutate(apply func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	apply()
	observers := make([]Observer, 0, len(s.observers))
	for _, id := range s.observerIDsLocked() {
		observers = append(observers, s.observers[id])
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(s.Items())
	}
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// observerIDsLocked returns subscription ids in registration order.
func (s *Store) observerIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
