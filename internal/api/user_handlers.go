package api

import (
	"net/http"

	"github.com/shopping-cart-api/internal/model"
)

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} model.User
// @Router /user/all [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// CreateUser godoc
// @Summary Register a new user
// @Description Create a user account; the password is stored hashed
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration details"
// @Success 201 {object} model.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Overwrite name, email, password and role; the password is hashed again
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body model.UpdateUserRequest true "User fields"
// @Success 200 {object} model.UpdateResult
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /user/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.accounts.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.DeleteResult
// @Failure 404 {object} map[string]string "User not found"
// @Router /user/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	res, err := h.accounts.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return a bearer token valid for 30 days
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} map[string]string "Invalid credentials"
// @Router /user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
