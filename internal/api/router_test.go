package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopping-cart-api/internal/auth"
	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/middleware"
	"github.com/shopping-cart-api/internal/model"
	"github.com/shopping-cart-api/internal/service"
	"github.com/shopping-cart-api/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const missingID = "6f1c1d7e-0000-4000-8000-000000000000"

type fakeJobs struct{ running bool }

func (f fakeJobs) IsRunning() bool { return f.running }

type downStore struct{}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWith(t, memory.NewItemStore(), fakeJobs{running: true})
}

func newTestServerWith(t *testing.T, store Pinger, jobs JobStatus) http.Handler {
	t.Helper()
	log := logging.Discard()
	tokens, err := auth.NewTokenIssuer("api-secret")
	require.NoError(t, err)

	users := memory.NewUserStore()
	catalog := service.NewCatalog(memory.NewItemStore(), model.MergeRefresh, log)
	accounts := service.NewAccounts(users, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log)

	h := NewHandler(catalog, accounts, store, jobs, log)
	return NewRouter(h, middleware.NewAuthMiddleware(tokens, accounts, log), "*", log)
}

func do(t *testing.T, srv http.Handler, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestItems_CreateMergeAndList(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/item", map[string]interface{}{
		"title": "Phone Mini", "description": "A good phone", "price": 599, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[model.Item](t, rec)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, srv, http.MethodPost, "/item", map[string]interface{}{
		"title": "Phone Mini", "description": "A great phone", "price": 699, "quantity": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decode[model.Item](t, rec)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 6, merged.Quantity)
	assert.Equal(t, 699.0, merged.Price)

	rec = do(t, srv, http.MethodGet, "/item/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]model.Item](t, rec)
	assert.Len(t, items, 1)

	raw := decode[[]map[string]interface{}](t, do(t, srv, http.MethodGet, "/item/all", nil))
	assert.Contains(t, raw[0], "_id")
}

func TestItems_ListEmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/item/all", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestItems_CreateInvalid(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "x", "price": -1, "quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Contains(t, body["fields"], "price")

	rec = do(t, srv, http.MethodPost, "/item", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[map[string]string](t, rec)["error"])
}

func TestItems_MergeOverflowIsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	item := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{
		"title": "X", "price": 1, "quantity": model.MaxQuantity,
	}))

	rec := do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "X", "price": 1, "quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode[map[string]interface{}](t, rec)["fields"], "quantity")

	got := decode[model.Item](t, do(t, srv, http.MethodGet, "/item/"+item.ID, nil))
	assert.Equal(t, model.MaxQuantity, got.Quantity)
}

func TestItems_PatchUpdatesThenAutoDeletes(t *testing.T) {
	srv := newTestServer(t)
	item := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{
		"title": "Phone XL", "price": 799, "quantity": 3,
	}))

	rec := do(t, srv, http.MethodPatch, "/item/"+item.ID, map[string]interface{}{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[model.Item](t, rec).Quantity)

	rec = do(t, srv, http.MethodPatch, "/item/"+item.ID, map[string]interface{}{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedCount":1}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/item/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", decode[map[string]string](t, rec)["error"])
}

func TestItems_PatchTitleConflict(t *testing.T) {
	srv := newTestServer(t)
	a := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "A", "price": 1, "quantity": 1}))
	do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "B", "price": 1, "quantity": 1})

	rec := do(t, srv, http.MethodPatch, "/item/"+a.ID, map[string]interface{}{"title": "B"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestItems_Delete(t *testing.T) {
	srv := newTestServer(t)
	item := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "A", "price": 1, "quantity": 1}))

	rec := do(t, srv, http.MethodDelete, "/item/"+item.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedCount":1}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/item/"+item.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/item/not-an-id", nil).Code)
}

func TestItems_UpdateQuantity(t *testing.T) {
	srv := newTestServer(t)
	mini := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "Phone Mini", "price": 699, "quantity": 1}))
	std := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "Phone Standard", "price": 299, "quantity": 1}))

	rec := do(t, srv, http.MethodPost, "/item/updateQuantity", []map[string]interface{}{
		{"_id": mini.ID, "title": "Phone Mini", "quantity": 5},
		{"_id": std.ID, "quantity": 6},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Phone Mini", "Phone Standard"}, decode[[]string](t, rec))

	assert.Equal(t, 5, decode[model.Item](t, do(t, srv, http.MethodGet, "/item/"+mini.ID, nil)).Quantity)
	assert.Equal(t, 6, decode[model.Item](t, do(t, srv, http.MethodGet, "/item/"+std.ID, nil)).Quantity)
}

func TestItems_UpdateQuantityPartialFailure(t *testing.T) {
	srv := newTestServer(t)
	mini := decode[model.Item](t, do(t, srv, http.MethodPost, "/item", map[string]interface{}{"title": "Phone Mini", "price": 699, "quantity": 1}))

	rec := do(t, srv, http.MethodPost, "/item/updateQuantity", []map[string]interface{}{
		{"_id": mini.ID, "quantity": 4},
		{"_id": missingID, "quantity": 2},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, []interface{}{"Phone Mini"}, body["updated"])
	assert.Equal(t, 4, decode[model.Item](t, do(t, srv, http.MethodGet, "/item/"+mini.ID, nil)).Quantity)
}

func TestItems_AdminListRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/item/admin/all", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication error. No token.", decode[map[string]string](t, rec)["error"])

	rec = do(t, srv, http.MethodGet, "/item/admin/all", nil, "Authorization", "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication error.", decode[map[string]string](t, rec)["error"])
}

func TestUsers_RegisterLoginAndAdminAccess(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/user", map[string]string{
		"name": "Jane", "email": "jane@gmail.com", "password": "pass111", "role": "User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	jane := decode[model.User](t, rec)
	assert.NotEqual(t, "pass111", jane.Password)

	rec = do(t, srv, http.MethodPost, "/user", map[string]string{
		"name": "Other", "email": "jane@gmail.com", "password": "x", "role": "User",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/user/login", map[string]string{"email": "jane@gmail.com", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[map[string]string](t, rec)["error"])

	rec = do(t, srv, http.MethodPost, "/user/login", map[string]string{"email": "ghost@gmail.com", "password": "pass111"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode[map[string]string](t, rec)["error"])

	rec = do(t, srv, http.MethodPost, "/user/login", map[string]string{"email": "jane@gmail.com", "password": "pass111"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[map[string]interface{}](t, rec)
	assert.Equal(t, jane.ID, login["_id"])
	assert.Equal(t, "Jane", login["name"])
	assert.Equal(t, "User", login["role"])
	assert.NotContains(t, login, "password")
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	rec = do(t, srv, http.MethodGet, "/item/admin/all", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/user/"+jane.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/item/admin/all", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_UpdateGetAndList(t *testing.T) {
	srv := newTestServer(t)
	john := decode[model.User](t, do(t, srv, http.MethodPost, "/user", map[string]string{
		"name": "John", "email": "john@gmail.com", "password": "secret", "role": "Admin",
	}))

	rec := do(t, srv, http.MethodPatch, "/user/"+john.ID, map[string]string{
		"name": "updated", "email": "updated", "password": "updated", "role": "updated",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"matchedCount":1,"modifiedCount":1}`, rec.Body.String())

	got := decode[model.User](t, do(t, srv, http.MethodGet, "/user/"+john.ID, nil))
	assert.Equal(t, "updated", got.Name)
	assert.NotEqual(t, "updated", got.Password)

	users := decode[[]model.User](t, do(t, srv, http.MethodGet, "/user/all", nil))
	assert.Len(t, users, 1)

	rec = do(t, srv, http.MethodPatch, "/user/"+john.ID, map[string]string{"name": "only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/user/"+missingID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPatch, "/user/"+missingID, map[string]string{
		"name": "n", "email": "e", "password": "p", "role": "r",
	}).Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"ok","scheduler":true}`, rec.Body.String())

	rec = do(t, newTestServerWith(t, downStore{}, fakeJobs{}), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"unavailable","scheduler":false}`, rec.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPut, "/item/all", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
