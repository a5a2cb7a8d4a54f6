package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopping-cart-api/internal/model"
)

const itemColumns = `id, title, description, price, quantity, created_at, updated_at`

type ItemRepository struct {
	db *Database
}

func NewItemRepository(db *Database) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context) ([]model.Item, error) {
	items := []model.Item{}
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Get(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// Upsert inserts item, or merges it into the row that already holds its
// title, in a single statement. inserted reports which of the two happened.
func (r *ItemRepository) Upsert(ctx context.Context, item *model.Item, policy model.MergePolicy) (*model.Item, bool, error) {
	set := `quantity = items.quantity + EXCLUDED.quantity`
	if policy == model.MergeRefresh {
		set += `, description = EXCLUDED.description, price = EXCLUDED.price`
	}

	query := `
		INSERT INTO items (title, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (title) DO UPDATE SET ` + set + `, updated_at = CURRENT_TIMESTAMP
		RETURNING ` + itemColumns + `, (xmax = 0) AS inserted
	`

	var row struct {
		model.Item
		Inserted bool `db:"inserted"`
	}
	err := r.db.QueryRowxContext(ctx, query, item.Title, item.Description, item.Price, item.Quantity).
		StructScan(&row)
	if err != nil {
		if isOutOfRange(err) {
			return nil, false, fmt.Errorf("item quantity %w", ErrOutOfRange)
		}
		return nil, false, fmt.Errorf("failed to upsert item: %w", err)
	}

	return &row.Item, row.Inserted, nil
}

// Update applies the non-nil fields of req to the item with the given id.
func (r *ItemRepository) Update(ctx context.Context, id string, req *model.UpdateItemRequest) (*model.Item, error) {
	query := `
		UPDATE items SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			price = COALESCE($3, price),
			quantity = COALESCE($4, quantity),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING ` + itemColumns

	var item model.Item
	err := r.db.QueryRowxContext(ctx, query, req.Title, req.Description, req.Price, req.Quantity, id).
		StructScan(&item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("item title %w", ErrConflict)
		}
		if isOutOfRange(err) {
			return nil, fmt.Errorf("item quantity %w", ErrOutOfRange)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return &item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete item: %w", err)
	}
	return rows, nil
}

// Reset removes every item.
func (r *ItemRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to reset items: %w", err)
	}
	return nil
}
