package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	ledger Ledger
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(l Ledger) *CategoriesHandler {
	return &CategoriesHandler{ledger: l}
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ledger.ListCategories(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Get handles GET /api/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.ledger.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryFields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body", nil)
		return
	}

	category, err := h.ledger.CreateCategory(r.Context(), req)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body", nil)
		return
	}

	category, err := h.ledger.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Usage handles GET /api/categories/usage?startDate&endDate.
func (h *CategoriesHandler) Usage(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	usage, err := h.ledger.CategoryUsage(r.Context(), start, end)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
