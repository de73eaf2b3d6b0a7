package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	ledger Ledger
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(l Ledger) *TransactionsHandler {
	return &TransactionsHandler{ledger: l}
}

// transactionRequest is the body of POST and PUT requests. Dates arrive as
// strings so that both timestamps and plain dates are accepted.
type transactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category"`
	Type        *string          `json:"type"`
	AccountType *string          `json:"accountType"`
}

func (req transactionRequest) date() (*time.Time, error) {
	if req.Date == nil || *req.Date == "" {
		return nil, nil
	}
	t, err := common.ParseDate(*req.Date, false)
	if err != nil {
		return nil, common.NewValidationError(err.Error(), "date")
	}
	return &t, nil
}

func (req transactionRequest) fields() (model.TransactionFields, error) {
	date, err := req.date()
	if err != nil {
		return model.TransactionFields{}, err
	}
	return model.TransactionFields{
		Amount:      req.Amount,
		Date:        date,
		Description: deref(req.Description),
		CategoryID:  deref(req.CategoryID),
		Type:        deref(req.Type),
		AccountType: deref(req.AccountType),
	}, nil
}

func (req transactionRequest) patch() (model.TransactionPatch, error) {
	date, err := req.date()
	if err != nil {
		return model.TransactionPatch{}, err
	}
	return model.TransactionPatch{
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		AccountType: req.AccountType,
	}, nil
}

// DeleteResponse confirms a deleted transaction.
type DeleteResponse struct {
	Message     string             `json:"message"`
	Transaction *model.Transaction `json:"transaction"`
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.ListTransactions(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body", nil)
		return
	}

	fields, err := req.fields()
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	txn, err := h.ledger.CreateTransaction(r.Context(), fields)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body", nil)
		return
	}

	patch, err := req.patch()
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	txn, err := h.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	txn, err := h.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Message: "Transaction deleted", Transaction: txn})
}

// Report handles GET /api/transactions/report?startDate&endDate.
func (h *TransactionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	transactions, err := h.ledger.ReportByDateRange(r.Context(), start, end)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// Summary handles GET /api/transactions/summary?startDate&endDate.
func (h *TransactionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	summary, err := h.ledger.Summary(r.Context(), start, end)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
