package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopping-cart-api/internal/model"
	"github.com/shopping-cart-api/internal/storage"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError lists the request fields that failed validation, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// fromStore translates repository errors into service errors.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, storage.ErrOutOfRange):
		return &ValidationError{Fields: map[string]string{
			"quantity": fmt.Sprintf("quantity must be less than or equal to %d", model.MaxQuantity),
		}}
	default:
		return err
	}
}
