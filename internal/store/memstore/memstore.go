// Package memstore provides a mutex-guarded in-memory implementation of
// every persistence port. It backs tests and local runs without a
// database; conditional updates are atomic under the store lock, so the
// concurrency semantics match the real backends.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/address"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/review"
	"github.com/example/storefront/internal/user"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]user.User
	products  map[string]catalog.Product
	orders    map[string]orders.Order
	reviews   map[string]review.Review
	addresses map[string]address.Address
}

func New() *Store {
	return &Store{
		users:     make(map[string]user.User),
		products:  make(map[string]catalog.Product),
		orders:    make(map[string]orders.Order),
		reviews:   make(map[string]review.Review),
		addresses: make(map[string]address.Address),
	}
}

// Users, Products, Orders, Reviews and Addresses return port views of
// the same underlying store.
func (s *Store) Users() user.Store        { return (*userStore)(s) }
func (s *Store) Products() catalog.Store  { return (*productStore)(s) }
func (s *Store) Orders() orders.Store     { return (*orderStore)(s) }
func (s *Store) Reviews() review.Store    { return (*reviewStore)(s) }
func (s *Store) Addresses() address.Store { return (*addressStore)(s) }

// --- users ---

type userStore Store

func (s *userStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (s *userStore) UpdateRole(_ context.Context, id, role string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

// --- products ---

type productStore Store

func (s *productStore) List(_ context.Context, category string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *productStore) Get(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (s *productStore) Create(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *productStore) Update(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *productStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// DecrementStock applies the decrement only while stock >= qty, in one
// step under the store lock.
func (s *productStore) DecrementStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return catalog.ErrStockConflict
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return nil
}

func (s *productStore) IncrementStock(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	p.Stock += qty
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return nil
}

// --- orders ---

type orderStore Store

func (s *orderStore) Create(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *o
	cp.Items = append([]orders.OrderItem(nil), o.Items...)
	s.orders[o.ID] = cp
	return nil
}

func (s *orderStore) GetByID(_ context.Context, id string) (*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	cp := o
	cp.Items = append([]orders.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *orderStore) ListByUser(_ context.Context, userID string) ([]orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]orders.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := o
			cp.Items = append([]orders.OrderItem(nil), o.Items...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *orderStore) CancelForUser(_ context.Context, orderID, userID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, orders.ErrOrderNotFound
	}
	if o.Status != orders.StatusCancelled {
		o.Status = orders.StatusCancelled
		o.UpdatedAt = time.Now()
		s.orders[orderID] = o
	}
	cp := o
	cp.Items = append([]orders.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *orderStore) HasUserPurchased(_ context.Context, userID, productID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.UserID != userID || o.Status != orders.StatusPlaced {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- reviews ---

type reviewStore Store

func (s *reviewStore) Create(_ context.Context, r *review.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return review.ErrDuplicateReview
		}
	}
	s.reviews[r.ID] = *r
	return nil
}

func (s *reviewStore) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]review.Review, 0)
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- addresses ---

type addressStore Store

func (s *addressStore) Create(_ context.Context, a *address.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[a.ID] = *a
	return nil
}

func (s *addressStore) Get(_ context.Context, id string) (*address.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.addresses[id]
	if !ok {
		return nil, address.ErrAddressNotFound
	}
	return &a, nil
}

func (s *addressStore) ListByUser(_ context.Context, userID string) ([]address.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]address.Address, 0)
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *addressStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addresses[id]; !ok {
		return address.ErrAddressNotFound
	}
	delete(s.addresses, id)
	return nil
}
