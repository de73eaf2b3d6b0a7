package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/ledger"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/testutil"
)

var _ Ledger = (*ledger.Service)(nil)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) (*apiClient, *testutil.TestLedger) {
	t.Helper()
	tl := testutil.SetupTestLedger(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRouter(tl.Ledger, Options{Logger: logger, AllowedOrigins: []string{"http://localhost:3000"}})
	return &apiClient{t: t, handler: handler}, tl
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *apiClient) createCategory(name string, budget int) model.Category {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/categories", map[string]any{"name": name, "budget": budget})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Category](c.t, rec)
}

func (c *apiClient) createTransaction(body map[string]any) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(http.MethodPost, "/api/transactions", body)
}

func lunch(categoryID, date string) map[string]any {
	return map[string]any{
		"amount":      2500,
		"description": "Lunch",
		"category":    categoryID,
		"type":        "expense",
		"accountType": "cash",
		"date":        date,
	}
}

func TestRootAndHealth(t *testing.T) {
	c, _ := newTestAPI(t)

	rec := c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")

	rec = c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	c, _ := newTestAPI(t)

	t.Run("create validates name", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/categories", map[string]any{"budget": 10})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Equal(t, []string{"name"}, resp.Fields)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/categories", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	food := c.createCategory("Food", 10000)
	assert.Equal(t, "10000", food.Budget.String())

	t.Run("list", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/categories", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]model.Category](t, rec), 1)
	})

	t.Run("get", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/categories/"+food.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Food", decode[model.Category](t, rec).Name)
	})

	t.Run("update", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/categories/"+food.ID, map[string]any{"budget": "8000.50"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "8000.5", decode[model.Category](t, rec).Budget.String())
	})

	t.Run("update missing is 404", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/categories/missing", map[string]any{"name": "X"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("null parent detaches", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/categories", map[string]any{"name": "Groceries", "parentCategory": food.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		groceries := decode[model.Category](t, rec)
		require.NotNil(t, groceries.ParentID)

		rec = c.do(http.MethodPut, "/api/categories/"+groceries.ID, `{"parentCategory": null}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Nil(t, decode[model.Category](t, rec).ParentID)

		rec = c.do(http.MethodDelete, "/api/categories/"+groceries.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("blank id is 404", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rec := c.do(method, "/api/categories/%20", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, method)
		}
		rec := c.do(http.MethodGet, "/api/transactions/%20", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad parent is 400", func(t *testing.T) {
		rec := c.do(http.MethodPost, "/api/categories", map[string]any{"name": "Snacks", "parentCategory": "ghost"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_reference", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("delete in use is 409", func(t *testing.T) {
		rec := c.createTransaction(lunch(food.ID, "2024-01-05"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = c.do(http.MethodDelete, "/api/categories/"+food.ID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete unused is 204", func(t *testing.T) {
		misc := c.createCategory("Misc", 0)
		rec := c.do(http.MethodDelete, "/api/categories/"+misc.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = c.do(http.MethodDelete, "/api/categories/"+misc.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTransactionEndpoints(t *testing.T) {
	c, tl := newTestAPI(t)
	food := c.createCategory("Food", 10000)
	rent := c.createCategory("Rent", 1200)

	t.Run("missing fields", func(t *testing.T) {
		rec := c.createTransaction(map[string]any{"description": "Lunch"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"amount", "category", "type", "accountType"}, decode[ErrorResponse](t, rec).Fields)
		assert.Zero(t, tl.MustCount())
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := c.createTransaction(lunch("nonexistent-id", "2024-01-05"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_reference", decode[ErrorResponse](t, rec).Error)
		assert.Zero(t, tl.MustCount())
	})

	t.Run("bad date", func(t *testing.T) {
		rec := c.createTransaction(lunch(food.ID, "05/01/2024"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"date"}, decode[ErrorResponse](t, rec).Fields)
	})

	t.Run("date outside supported window", func(t *testing.T) {
		for _, date := range []string{"0024-01-05", "2300-01-01", "0001-01-01T00:00:00Z"} {
			rec := c.createTransaction(lunch(food.ID, date))
			assert.Equal(t, http.StatusBadRequest, rec.Code, date)
			assert.Equal(t, []string{"date"}, decode[ErrorResponse](t, rec).Fields, date)
		}
		assert.Zero(t, tl.MustCount())
	})

	rec := c.createTransaction(lunch(food.ID, "2024-01-05"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.TransactionView](t, rec)
	assert.Equal(t, "Food", created.CategoryName)
	assert.Equal(t, "2500", created.Amount.String())

	rec = c.createTransaction(lunch(food.ID, "2024-02-10T12:00:00Z"))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("list joins category names", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/transactions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		views := decode[[]model.TransactionView](t, rec)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, "Food", v.CategoryName)
		}
	})

	t.Run("update to existing category", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/transactions/"+created.ID, map[string]any{"category": rent.ID})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Rent", decode[model.TransactionView](t, rec).CategoryName)
	})

	t.Run("update to unknown category", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/transactions/"+created.ID, map[string]any{"category": "ghost"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update missing", func(t *testing.T) {
		rec := c.do(http.MethodPut, "/api/transactions/missing", map[string]any{"description": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("report", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/transactions/report?startDate=2024-01-01&endDate=2024-01-31", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		views := decode[[]model.TransactionView](t, rec)
		require.Len(t, views, 1)
		assert.Equal(t, created.ID, views[0].ID)
	})

	t.Run("date-only end covers the whole day", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/transactions/report?startDate=2024-02-10&endDate=2024-02-10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]model.TransactionView](t, rec), 1)
	})

	t.Run("empty report is an empty array", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/transactions/report?startDate=2023-01-01&endDate=2023-12-31", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("report validation", func(t *testing.T) {
		for _, query := range []string{
			"",
			"?startDate=2024-01-01",
			"?startDate=yesterday&endDate=2024-01-01",
			"?startDate=2024-02-01&endDate=2024-01-01",
		} {
			rec := c.do(http.MethodGet, "/api/transactions/report"+query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		}
	})

	t.Run("summary", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/transactions/summary?startDate=2024-01-01&endDate=2024-12-31", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		summary := decode[model.Summary](t, rec)
		assert.Equal(t, "5000", summary.Expense.String())
		assert.Equal(t, "6200", summary.BudgetLeft.String())
	})

	t.Run("category usage", func(t *testing.T) {
		rec := c.do(http.MethodGet, "/api/categories/usage?startDate=2024-01-01&endDate=2024-12-31", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]model.CategoryUsage](t, rec), 2)
	})

	t.Run("delete", func(t *testing.T) {
		rec := c.do(http.MethodDelete, "/api/transactions/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[DeleteResponse](t, rec)
		assert.Equal(t, created.ID, resp.Transaction.ID)

		rec = c.do(http.MethodDelete, "/api/transactions/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = c.do(http.MethodGet, "/api/transactions/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	c, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/categories", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

type failingLedger struct {
	Ledger
}

func (failingLedger) ListCategories(context.Context) ([]model.Category, error) {
	return nil, common.StoreError("failed to query categories", errors.New("disk I/O error"))
}

func TestStoreFailureIs500WithoutDetail(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handler := NewRouter(failingLedger{}, Options{Logger: logger, RequestTimeout: time.Second})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk I/O")
	assert.Contains(t, logs.String(), "disk I/O error")
}
