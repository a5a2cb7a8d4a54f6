package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/model"
)

// UserStore persists user accounts. Email is unique.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Update(ctx context.Context, id string, user *model.User) (model.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Accounts struct {
	store    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validator.Validate
	log      logging.Logger

	// dummyHash is compared against on unknown emails so both login
	// failures run the hasher once.
	dummyHash string
}

func NewAccounts(store UserStore, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger) *Accounts {
	dummyHash, _ := hasher.Hash("login-timing-placeholder")
	return &Accounts{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		validate:  newValidator(),
		log:       log.With("component", "accounts"),
		dummyHash: dummyHash,
	}
}

func (a *Accounts) List(ctx context.Context) ([]model.User, error) {
	return a.store.List(ctx)
}

func (a *Accounts) Get(ctx context.Context, id string) (*model.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	user, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return user, nil
}

// Register stores a new user with a hashed password.
func (a *Accounts) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := check(a.validate, req); err != nil {
		return nil, err
	}

	hashed, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := a.store.Create(ctx, &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	})
	if err != nil {
		return nil, fromStore(err)
	}

	a.log.Info(ctx, "user created", "id", created.ID, "email", created.Email)
	return created, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (a *Accounts) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := check(a.validate, req); err != nil {
		return nil, err
	}

	user, err := a.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(fromStore(err), ErrNotFound) {
			a.hasher.Compare(a.dummyHash, req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.hasher.Compare(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.LoginResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}

// Update overwrites the user's fields; the password is hashed again on every
// update.
func (a *Accounts) Update(ctx context.Context, id string, req *model.UpdateUserRequest) (model.UpdateResult, error) {
	if err := validID(id); err != nil {
		return model.UpdateResult{}, err
	}
	if err := check(a.validate, req); err != nil {
		return model.UpdateResult{}, err
	}

	hashed, err := a.hasher.Hash(req.Password)
	if err != nil {
		return model.UpdateResult{}, err
	}

	res, err := a.store.Update(ctx, id, &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	})
	if err != nil {
		return model.UpdateResult{}, fromStore(err)
	}
	if res.MatchedCount == 0 {
		return model.UpdateResult{}, ErrNotFound
	}

	a.log.Info(ctx, "user updated", "id", id, "name", req.Name)
	return res, nil
}

func (a *Accounts) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	if err := validID(id); err != nil {
		return model.DeleteResult{}, err
	}

	n, err := a.store.Delete(ctx, id)
	if err != nil {
		return model.DeleteResult{}, fromStore(err)
	}
	if n == 0 {
		return model.DeleteResult{}, ErrNotFound
	}

	a.log.Info(ctx, "user deleted", "id", id)
	return model.DeleteResult{DeletedCount: n}, nil
}

// EnsureAdmin registers an Admin account for email unless one already exists.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.Register(ctx, &model.RegisterRequest{
		Name:     "Admin",
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if errors.Is(err, ErrConflict) {
		existing, findErr := a.store.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fromStore(findErr)
		}
		return existing, nil
	}
	return user, err
}
