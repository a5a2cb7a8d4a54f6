package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobStatus reports whether background jobs are running.
type JobStatus interface {
	IsRunning() bool
}

// Handler contains all API handlers
type Handler struct {
	catalog  *service.Catalog
	accounts *service.Accounts
	store    Pinger
	jobs     JobStatus
	log      logging.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	catalog *service.Catalog,
	accounts *service.Accounts,
	store Pinger,
	jobs JobStatus,
	log logging.Logger,
) *Handler {
	return &Handler{
		catalog:  catalog,
		accounts: accounts,
		store:    store,
		jobs:     jobs,
		log:      log.With("component", "api"),
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorBody maps a service error to its status code and response body.
// resource names the entity in not-found and conflict messages.
func (h *Handler) errorBody(r *http.Request, err error, resource string) (int, map[string]interface{}) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, map[string]interface{}{"error": verr.Error(), "fields": verr.Fields}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, map[string]interface{}{"error": "Invalid credentials"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, map[string]interface{}{"error": resource + " not found"}
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, map[string]interface{}{"error": resource + " already exists"}
	default:
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		return http.StatusInternalServerError, map[string]interface{}{"error": "internal server error"}
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	status, body := h.errorBody(r, err, resource)
	respondJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// Health godoc
// @Summary Health check
// @Description Check if the API is running and the store is reachable
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	store := "ok"
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "store ping failed", "error", err)
			store = "unavailable"
		}
	}

	running := false
	if h.jobs != nil {
		running = h.jobs.IsRunning()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"store":     store,
		"scheduler": running,
	})
}
