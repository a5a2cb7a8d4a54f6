// Package seed populates a fresh store with the demo catalog and an admin
// account.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/model"
)

//go:embed products.json
var productsJSON []byte

// Products returns the demo catalog.
func Products() ([]model.CreateItemRequest, error) {
	var items []model.CreateItemRequest
	if err := json.Unmarshal(productsJSON, &items); err != nil {
		return nil, fmt.Errorf("failed to decode demo catalog: %w", err)
	}
	return items, nil
}

type Restocker interface {
	Restock(ctx context.Context, items []model.CreateItemRequest) error
}

type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password string) (*model.User, error)
}

type Seeder struct {
	catalog  Restocker
	accounts AdminEnsurer
	log      logging.Logger
}

func New(catalog Restocker, accounts AdminEnsurer, log logging.Logger) *Seeder {
	return &Seeder{catalog: catalog, accounts: accounts, log: log.With("component", "seed")}
}

// Catalog replaces every item with the demo catalog.
func (s *Seeder) Catalog(ctx context.Context) error {
	items, err := Products()
	if err != nil {
		return err
	}
	if err := s.catalog.Restock(ctx, items); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	s.log.Info(ctx, "demo catalog seeded", "items", len(items))
	return nil
}

// Admin makes sure an Admin account exists for email. It does nothing unless
// both email and password are set.
func (s *Seeder) Admin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	user, err := s.accounts.EnsureAdmin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}
	s.log.Info(ctx, "admin account ready", "id", user.ID, "email", user.Email)
	return nil
}
