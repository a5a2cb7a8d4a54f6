// Package service holds the store's business rules: item reconciliation on
// create, auto-delete on PATCH, bulk quantity updates, and the account flows.
package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/model"
)

// ItemStore persists catalog items.
type ItemStore interface {
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id string) (*model.Item, error)
	Upsert(ctx context.Context, item *model.Item, policy model.MergePolicy) (*model.Item, bool, error)
	Update(ctx context.Context, id string, req *model.UpdateItemRequest) (*model.Item, error)
	Delete(ctx context.Context, id string) (int64, error)
	Reset(ctx context.Context) error
}

// PatchResult is the outcome of Catalog.Update: exactly one of Item and
// Deleted is set.
type PatchResult struct {
	Item    *model.Item
	Deleted *model.DeleteResult
}

type Catalog struct {
	store    ItemStore
	policy   model.MergePolicy
	validate *validator.Validate
	log      logging.Logger
}

func NewCatalog(store ItemStore, policy model.MergePolicy, log logging.Logger) *Catalog {
	if policy != model.MergeQuantity {
		policy = model.MergeRefresh
	}
	return &Catalog{
		store:    store,
		policy:   policy,
		validate: newValidator(),
		log:      log.With("component", "catalog"),
	}
}

func (c *Catalog) Policy() model.MergePolicy {
	return c.policy
}

func (c *Catalog) List(ctx context.Context) ([]model.Item, error) {
	return c.store.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, id string) (*model.Item, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	item, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return item, nil
}

// Create adds a new item, or folds it into the item that already has the
// same title. The store performs either an insert or an update, never both.
func (c *Catalog) Create(ctx context.Context, req *model.CreateItemRequest) (*model.Item, error) {
	if err := check(c.validate, req); err != nil {
		return nil, err
	}

	item, inserted, err := c.store.Upsert(ctx, &model.Item{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
	}, c.policy)
	if err != nil {
		return nil, fromStore(err)
	}

	if inserted {
		c.log.Info(ctx, "item created", "id", item.ID, "title", item.Title)
	} else {
		c.log.Info(ctx, "item quantity merged", "id", item.ID, "title", item.Title,
			"added", *req.Quantity, "quantity", item.Quantity, "policy", string(c.policy))
	}
	return item, nil
}

// Update applies a PATCH to the item with the given id. A supplied quantity
// of zero or less removes the item instead.
func (c *Catalog) Update(ctx context.Context, id string, req *model.UpdateItemRequest) (*PatchResult, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	if req.Quantity != nil && *req.Quantity <= 0 {
		deleted, err := c.Delete(ctx, id)
		if err != nil {
			return nil, err
		}
		return &PatchResult{Deleted: &deleted}, nil
	}

	if err := check(c.validate, req); err != nil {
		return nil, err
	}

	item, err := c.store.Update(ctx, id, req)
	if err != nil {
		return nil, fromStore(err)
	}

	c.log.Info(ctx, "item updated", "id", item.ID, "title", item.Title)
	return &PatchResult{Item: item}, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	if err := validID(id); err != nil {
		return model.DeleteResult{}, err
	}

	n, err := c.store.Delete(ctx, id)
	if err != nil {
		return model.DeleteResult{}, fromStore(err)
	}
	if n == 0 {
		return model.DeleteResult{}, ErrNotFound
	}

	c.log.Info(ctx, "item deleted", "id", id)
	return model.DeleteResult{DeletedCount: n}, nil
}

// UpdateQuantity applies each update in order, waiting for every write
// before issuing the next. It stops at the first failure; updates already
// applied stay applied and their titles are returned alongside the error.
func (c *Catalog) UpdateQuantity(ctx context.Context, updates []model.QuantityUpdate) ([]string, error) {
	titles := make([]string, 0, len(updates))

	for i := range updates {
		u := &updates[i]
		if err := check(c.validate, u); err != nil {
			return titles, fmt.Errorf("record %d: %w", i, err)
		}
		if err := validID(u.ID); err != nil {
			return titles, fmt.Errorf("record %d (%s): %w", i, u.ID, err)
		}

		item, err := c.store.Update(ctx, u.ID, &u.UpdateItemRequest)
		if err != nil {
			return titles, fmt.Errorf("record %d (%s): %w", i, u.ID, fromStore(err))
		}
		titles = append(titles, item.Title)
	}

	c.log.Info(ctx, "item quantities updated", "count", len(titles))
	return titles, nil
}

// LowStock returns the items whose quantity is at or below threshold.
func (c *Catalog) LowStock(ctx context.Context, threshold int) ([]model.Item, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]model.Item, 0)
	for _, item := range items {
		if item.Quantity <= threshold {
			low = append(low, item)
		}
	}
	return low, nil
}

// Restock wipes the catalog and creates the given items.
func (c *Catalog) Restock(ctx context.Context, items []model.CreateItemRequest) error {
	if err := c.store.Reset(ctx); err != nil {
		return err
	}
	for i := range items {
		if _, err := c.Create(ctx, &items[i]); err != nil {
			return fmt.Errorf("restock item %q: %w", items[i].Title, err)
		}
	}
	return nil
}
