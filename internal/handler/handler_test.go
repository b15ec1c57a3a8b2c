package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicer/internal/apperror"
	"invoicer/internal/auth"
	"invoicer/internal/model"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-alice"

var testOwner = auth.Identity{UserID: "alice-sub", Email: "alice@example.com", Name: "Alice"}

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, token string) (auth.Identity, error) {
	if token == testToken {
		return testOwner, nil
	}
	return auth.Identity{}, apperror.ErrUnauthorized
}

type stubInvoiceService struct {
	service.InvoiceService
	err       error
	lastOwner auth.Identity
	lastID    string
	lastQuery service.InvoiceFilter
}

func (s *stubInvoiceService) CreateInvoice(_ context.Context, owner auth.Identity, _ service.CreateInvoiceRequest) (service.InvoiceResponse, error) {
	s.lastOwner = owner
	if s.err != nil {
		return service.InvoiceResponse{}, s.err
	}
	return service.InvoiceResponse{InvoiceNo: "INV-001", UserID: owner.UserID, Status: model.InvoiceStatusDraft}, nil
}

func (s *stubInvoiceService) ListInvoices(_ context.Context, userID string, filter service.InvoiceFilter) ([]service.InvoiceResponse, int64, error) {
	s.lastOwner = auth.Identity{UserID: userID}
	s.lastQuery = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	return []service.InvoiceResponse{{InvoiceNo: "INV-002"}, {InvoiceNo: "INV-001"}}, 2, nil
}

func (s *stubInvoiceService) GetInvoice(_ context.Context, userID, id string) (service.InvoiceResponse, error) {
	s.lastOwner = auth.Identity{UserID: userID}
	s.lastID = id
	if s.err != nil {
		return service.InvoiceResponse{}, s.err
	}
	return service.InvoiceResponse{ID: id, InvoiceNo: "INV-001"}, nil
}

func (s *stubInvoiceService) UpdateStatus(_ context.Context, userID, id string, req service.UpdateStatusRequest) (service.InvoiceResponse, error) {
	s.lastOwner = auth.Identity{UserID: userID}
	s.lastID = id
	if s.err != nil {
		return service.InvoiceResponse{}, s.err
	}
	return service.InvoiceResponse{ID: id, Status: req.Status}, nil
}

type stubSequence struct{ next int64 }

func (s *stubSequence) NextInvoiceNumber(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperror.ErrUnauthorized
	}
	s.next++
	return service.FormatInvoiceNumber(s.next), nil
}

type stubAnalytics struct {
	lastYear int
	err      error
}

func (s *stubAnalytics) MonthlyRevenue(_ context.Context, _ string, year int) (model.MonthlyRevenueResponse, error) {
	s.lastYear = year
	return model.MonthlyRevenueResponse{Year: year, Data: make([]model.MonthRevenue, 12)}, s.err
}

func (s *stubAnalytics) StatusBreakdown(_ context.Context, _ string, year int) (model.StatusBreakdownResponse, error) {
	s.lastYear = year
	return model.StatusBreakdownResponse{Year: year}, s.err
}

func (s *stubAnalytics) DashboardStats(context.Context, string) (model.DashboardStatsResponse, error) {
	return model.DashboardStatsResponse{TodayIncome: 10, MonthInvoices: 2, DuePayment: 300}, s.err
}

func newTestRouter(invoices *stubInvoiceService, analytics *stubAnalytics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	NewInvoiceHandler(invoices, &stubSequence{}, stubAuthenticator{}).RegisterRoutes(api)
	NewAnalyticsHandler(analytics, stubAuthenticator{}).RegisterRoutes(api)
	return router
}

func do(router http.Handler, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func createPayload() map[string]interface{} {
	party := map[string]string{"name": "Acme", "address": "1 Road", "city": "Dhaka", "country": "BD"}
	return map[string]interface{}{
		"issue_date": "2024-03-15",
		"from":       party,
		"to":         party,
		"items":      []map[string]interface{}{{"name": "Design", "qty": 2, "rate": 100}},
	}
}

func TestInvoiceRoutes_RequireAuthentication(t *testing.T) {
	router := newTestRouter(&stubInvoiceService{}, &stubAnalytics{})

	for _, path := range []string{"/api/v1/invoices", "/api/v1/analytics/revenue", "/api/v1/analytics/dashboard"} {
		w := do(router, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCreateInvoice(t *testing.T) {
	invoices := &stubInvoiceService{}
	router := newTestRouter(invoices, &stubAnalytics{})

	w := do(router, http.MethodPost, "/api/v1/invoices", createPayload(), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, testOwner, invoices.lastOwner)

	res := decode(t, w)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "Invoice created successfully", res.Message)
}

func TestCreateInvoice_RejectsMalformedPayload(t *testing.T) {
	router := newTestRouter(&stubInvoiceService{}, &stubAnalytics{})

	w := do(router, http.MethodPost, "/api/v1/invoices", map[string]string{"issue_date": "2024-03-15"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperror.Validation("issue_date must be a date"), http.StatusBadRequest, "issue_date must be a date"},
		{fmt.Errorf("invoice not found: %w", apperror.ErrNotFound), http.StatusNotFound, "Not found"},
		{fmt.Errorf("failed to create invoice: %w", apperror.ErrDuplicateKey), http.StatusConflict, "Duplicate invoice number"},
		{apperror.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{fmt.Errorf("%w: dial tcp: refused", apperror.ErrStoreUnavailable), http.StatusInternalServerError, "Internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			router := newTestRouter(&stubInvoiceService{err: tt.err}, &stubAnalytics{})
			w := do(router, http.MethodPost, "/api/v1/invoices", createPayload(), true)

			assert.Equal(t, tt.status, w.Code)
			res := decode(t, w)
			assert.Equal(t, "error", res.Status)
			assert.Equal(t, tt.message, res.Error)
		})
	}
}

func TestListInvoices_PaginatesAndFilters(t *testing.T) {
	invoices := &stubInvoiceService{}
	router := newTestRouter(invoices, &stubAnalytics{})

	w := do(router, http.MethodGet, "/api/v1/invoices?status=sent&page=2&limit=5", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, service.InvoiceFilter{Status: "sent", Page: 2, Limit: 5}, invoices.lastQuery)
	assert.Equal(t, "alice-sub", invoices.lastOwner.UserID)

	var body struct {
		Data struct {
			Items []service.InvoiceResponse `json:"items"`
			Total int64                     `json:"total"`
			Page  int                       `json:"page"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Items, 2)
	assert.Equal(t, int64(2), body.Data.Total)
	assert.Equal(t, 2, body.Data.Page)
}

func TestGetInvoiceAndUpdateStatus(t *testing.T) {
	invoices := &stubInvoiceService{}
	router := newTestRouter(invoices, &stubAnalytics{})

	w := do(router, http.MethodGet, "/api/v1/invoices/abc", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", invoices.lastID)

	w = do(router, http.MethodPatch, "/api/v1/invoices/abc/status", map[string]string{"status": "sent"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"sent"`)

	w = do(router, http.MethodPatch, "/api/v1/invoices/abc/status", map[string]string{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextInvoiceNumber(t *testing.T) {
	router := newTestRouter(&stubInvoiceService{}, &stubAnalytics{})

	w := do(router, http.MethodPost, "/api/v1/invoices/next-number", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"invoice_no":"INV-001"`)
}

func TestAnalyticsRoutes(t *testing.T) {
	analytics := &stubAnalytics{}
	router := newTestRouter(&stubInvoiceService{}, analytics)

	w := do(router, http.MethodGet, "/api/v1/analytics/revenue?year=2023", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2023, analytics.lastYear)

	w = do(router, http.MethodGet, "/api/v1/analytics/invoice-status?year=abc", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, analytics.lastYear)

	w = do(router, http.MethodGet, "/api/v1/analytics/dashboard", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"due_payment":300`)

	analytics.err = apperror.ErrStoreUnavailable
	w = do(router, http.MethodGet, "/api/v1/analytics/dashboard", nil, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
