package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopping-cart-api/internal/model"
)

const userColumns = `id, name, email, password, role, created_at, updated_at`

type UserRepository struct {
	db *Database
}

func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Create stores user. Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var created model.User
	err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.Password, user.Role).
		StructScan(&created)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s %w", user.Email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// Update overwrites every field of the user with the given id. Password must
// already be hashed.
func (r *UserRepository) Update(ctx context.Context, id string, user *model.User) (model.UpdateResult, error) {
	query := `
		UPDATE users SET name = $1, email = $2, password = $3, role = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Password, user.Role, id)
	if err != nil {
		if isUniqueViolation(err) {
			return model.UpdateResult{}, fmt.Errorf("email %s %w", user.Email, ErrConflict)
		}
		return model.UpdateResult{}, fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("failed to update user: %w", err)
	}
	return model.UpdateResult{MatchedCount: rows, ModifiedCount: rows}, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}
	return rows, nil
}
