package model

import "time"

// MergePolicy decides what a create request does to an item that already
// carries the same title.
type MergePolicy string

const (
	// MergeRefresh adds the quantities and overwrites description and price.
	MergeRefresh MergePolicy = "refresh"
	// MergeQuantity adds the quantities and leaves everything else alone.
	MergeQuantity MergePolicy = "quantity"
)

// MaxQuantity is the largest quantity an item can hold; quantities are
// stored in a 32-bit INTEGER column.
const MaxQuantity = 2147483647

type Item struct {
	ID          string    `json:"_id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=1,lte=2147483647"`
}

// UpdateItemRequest carries the fields of a PATCH. Nil fields are left as
// stored.
type UpdateItemRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=2147483647"`
}

// QuantityUpdate is one record of a bulk quantity update.
type QuantityUpdate struct {
	ID string `json:"_id" validate:"required"`
	UpdateItemRequest
}
