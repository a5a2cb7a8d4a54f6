package api

import (
	"net/http"

	"github.com/shopping-cart-api/internal/middleware"
	"github.com/shopping-cart-api/internal/model"
)

// ListItems godoc
// @Summary List items
// @Description Get every item in the catalog
// @Tags Items
// @Produce json
// @Success 200 {array} model.Item
// @Failure 500 {object} map[string]string "Server error"
// @Router /item/all [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "item")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// ListItemsAdmin godoc
// @Summary List items (authenticated)
// @Description Get every item in the catalog; requires a bearer token
// @Tags Items
// @Produce json
// @Success 200 {array} model.Item
// @Failure 401 {object} map[string]string "Authentication error"
// @Security BearerAuth
// @Router /item/admin/all [get]
func (h *Handler) ListItemsAdmin(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		h.log.Debug(r.Context(), "admin item listing", "user_id", user.ID, "role", user.Role)
	}
	h.ListItems(w, r)
}

// GetItem godoc
// @Summary Get an item
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} model.Item
// @Failure 404 {object} map[string]string "Item not found"
// @Router /item/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err, "item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// CreateItem godoc
// @Summary Create an item
// @Description Create an item, or add its quantity to the item that already has the same title
// @Tags Items
// @Accept json
// @Produce json
// @Param request body model.CreateItemRequest true "Item"
// @Success 200 {object} model.Item
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /item [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.catalog.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Update an item
// @Description Apply the supplied fields; a quantity of zero or less deletes the item and returns the deletion result
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body model.UpdateItemRequest true "Fields to change"
// @Success 200 {object} model.Item
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 409 {object} map[string]string "Title already in use"
// @Router /item/{id} [patch]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.catalog.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.respondServiceError(w, r, err, "item")
		return
	}

	if res.Deleted != nil {
		respondJSON(w, http.StatusOK, res.Deleted)
		return
	}
	respondJSON(w, http.StatusOK, res.Item)
}

// DeleteItem godoc
// @Summary Delete an item
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} model.DeleteResult
// @Failure 404 {object} map[string]string "Item not found"
// @Router /item/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err, "item")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// UpdateQuantity godoc
// @Summary Bulk update items
// @Description Apply each update in order and return the titles of the items touched. Processing stops at the first failure; earlier updates stay applied and are listed under "updated".
// @Tags Items
// @Accept json
// @Produce json
// @Param request body []model.QuantityUpdate true "Updates"
// @Success 200 {array} string
// @Failure 400 {object} map[string]interface{} "Invalid record"
// @Failure 404 {object} map[string]interface{} "Item not found"
// @Router /item/updateQuantity [post]
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var updates []model.QuantityUpdate
	if err := decodeJSON(r, &updates); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	titles, err := h.catalog.UpdateQuantity(r.Context(), updates)
	if err != nil {
		status, body := h.errorBody(r, err, "item")
		body["updated"] = titles
		respondJSON(w, status, body)
		return
	}
	respondJSON(w, http.StatusOK, titles)
}
