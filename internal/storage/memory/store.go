// Package memory keeps items and users in process memory. It honours the same
// contracts as the Postgres repositories: unique emails, unique item titles
// and an atomic merge-on-create.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopping-cart-api/internal/model"
	"github.com/shopping-cart-api/internal/storage"
)

type ItemStore struct {
	mu    sync.RWMutex
	items map[string]*model.Item
	order []string
	now   func() time.Time
}

func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[string]*model.Item), now: time.Now}
}

func (s *ItemStore) List(ctx context.Context) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.items[id])
	}
	return items, nil
}

func (s *ItemStore) Get(ctx context.Context, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *ItemStore) Upsert(ctx context.Context, item *model.Item, policy model.MergePolicy) (*model.Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Quantity > model.MaxQuantity {
		return nil, false, fmt.Errorf("item quantity %w", storage.ErrOutOfRange)
	}

	now := s.now()
	if existing := s.byTitle(item.Title); existing != nil {
		if existing.Quantity > model.MaxQuantity-item.Quantity {
			return nil, false, fmt.Errorf("item quantity %w", storage.ErrOutOfRange)
		}
		existing.Quantity += item.Quantity
		if policy == model.MergeRefresh {
			existing.Description = item.Description
			existing.Price = item.Price
		}
		existing.UpdatedAt = now
		cp := *existing
		return &cp, false, nil
	}

	created := *item
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	s.items[created.ID] = &created
	s.order = append(s.order, created.ID)

	cp := created
	return &cp, true, nil
}

func (s *ItemStore) Update(ctx context.Context, id string, req *model.UpdateItemRequest) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if req.Quantity != nil && *req.Quantity > model.MaxQuantity {
		return nil, fmt.Errorf("item quantity %w", storage.ErrOutOfRange)
	}

	if req.Title != nil && *req.Title != item.Title {
		if other := s.byTitle(*req.Title); other != nil {
			return nil, fmt.Errorf("item title %w", storage.ErrConflict)
		}
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	item.UpdatedAt = s.now()

	cp := *item
	return &cp, nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	s.order = removeID(s.order, id)
	return 1, nil
}

func (s *ItemStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*model.Item)
	s.order = nil
	return nil
}

// Ping always succeeds.
func (s *ItemStore) Ping(ctx context.Context) error {
	return nil
}

// byTitle must be called with mu held.
func (s *ItemStore) byTitle(title string) *model.Item {
	for _, id := range s.order {
		if s.items[id].Title == title {
			return s.items[id]
		}
	}
	return nil
}

type UserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
	order []string
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User), now: time.Now}
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, *s.users[id])
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user := s.byEmail(email); user != nil {
		cp := *user
		return &cp, nil
	}
	return nil, storage.ErrNotFound
}

func (s *UserStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byEmail(user.Email) != nil {
		return nil, fmt.Errorf("email %s %w", user.Email, storage.ErrConflict)
	}

	now := s.now()
	created := *user
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	s.users[created.ID] = &created
	s.order = append(s.order, created.ID)

	cp := created
	return &cp, nil
}

func (s *UserStore) Update(ctx context.Context, id string, user *model.User) (model.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[id]
	if !ok {
		return model.UpdateResult{}, nil
	}
	if other := s.byEmail(user.Email); other != nil && other.ID != id {
		return model.UpdateResult{}, fmt.Errorf("email %s %w", user.Email, storage.ErrConflict)
	}

	existing.Name = user.Name
	existing.Email = user.Email
	existing.Password = user.Password
	existing.Role = user.Role
	existing.UpdatedAt = s.now()

	return model.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	delete(s.users, id)
	s.order = removeID(s.order, id)
	return 1, nil
}

// byEmail must be called with mu held.
func (s *UserStore) byEmail(email string) *model.User {
	for _, id := range s.order {
		if s.users[id].Email == email {
			return s.users[id]
		}
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
