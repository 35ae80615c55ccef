package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
	"billing-analytics/internal/service"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memoryBills struct {
	bills []model.Bill
	err   error
}

func (m *memoryBills) GetByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.bills {
		if m.bills[i].ID == id {
			b := m.bills[i]
			return &b, nil
		}
	}
	return nil, model.NewNotFound("bill", id.String())
}

func (m *memoryBills) GetUserBillForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.Bill, error) {
	bills, err := m.GetUserBillsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, model.NewNotFound("bill", userID.String())
	}
	return &bills[0], nil
}

func (m *memoryBills) GetUserBillsInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]model.Bill, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Bill
	for _, b := range m.bills {
		if b.UserID == userID && !b.PeriodStart.Before(start) && b.PeriodStart.Before(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryBills) GetBillsByUserTypeInRange(context.Context, string, time.Time, time.Time) ([]model.Bill, error) {
	return nil, m.err
}

func (m *memoryBills) GetItems(context.Context, uuid.UUID) ([]model.BillItem, error) {
	return nil, m.err
}

func (m *memoryBills) GetItemsForBills(context.Context, []uuid.UUID) (map[uuid.UUID][]model.BillItem, error) {
	return map[uuid.UUID][]model.BillItem{}, m.err
}

type apiFixture struct {
	router *mux.Router
	auth   *service.AuthService
	store  *memoryBills
	userID uuid.UUID
	bill   model.Bill
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	logger := testLogger()
	userID := uuid.New()
	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	bill := model.Bill{
		ID:          uuid.New(),
		UserID:      userID,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
		TotalAmount: decimal.NewFromInt(100),
		Currency:    "TRY",
	}
	store := &memoryBills{bills: []model.Bill{bill}}

	auth := service.NewAuthService("secret", time.Hour, logger)
	narrative := service.NewNarrativeService(nil, logger)
	anomalies := service.NewAnomalyService(store, narrative, 3, logger)
	bills := service.NewBillService(store, nil, narrative, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(auth, logger))
	NewAnomalyHandler(anomalies, bills, logger).RegisterRoutes(api)

	return apiFixture{router: router, auth: auth, store: store, userID: userID, bill: bill}
}

func (f apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := f.auth.GenerateJWTToken(f.userID.String())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareRejectsMissingAndMalformedTokens(t *testing.T) {
	f := newAPIFixture(t)

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/api/anomalies?period=2024-04", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestGetAnomaliesReturnsReport(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/anomalies?period=2024-04")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report model.AnomalyReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, f.bill.ID, report.BillID)
	assert.Equal(t, "2024-04", report.Period)
	assert.Empty(t, report.Findings)
}

func TestErrorStatusMapping(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/anomalies?period=2024-4").Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/anomalies?period=2023-01").Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/bills/not-a-uuid/anomalies").Code)

	f.store.err = model.NewCollaboratorError("storage", errors.New("connection refused"))
	assert.Equal(t, http.StatusServiceUnavailable, f.get(t, "/api/anomalies/summary").Code)
}

func TestForeignBillIsHidden(t *testing.T) {
	f := newAPIFixture(t)
	foreign := f.bill
	foreign.ID = uuid.New()
	foreign.UserID = uuid.New()
	f.store.bills = append(f.store.bills, foreign)

	assert.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/api/bills/%s/anomalies", f.bill.ID)).Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, fmt.Sprintf("/api/bills/%s/anomalies", foreign.ID)).Code)
}

func TestWriteErrorFallsBackToInternal(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("ctx: %w", model.ErrInvalidPeriod), http.StatusBadRequest},
		{fmt.Errorf("ctx: %w", model.NewNotFound("bill", "1")), http.StatusNotFound},
		{model.NewCollaboratorError("explain", errors.New("timeout")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err, testLogger(), "test")
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2, testLogger())
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(user string) int {
		req := WithUserID(httptest.NewRequest(http.MethodGet, "/api/cohort", nil), user)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("alice"))
	assert.Equal(t, http.StatusNoContent, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusNoContent, call("bob"))
}

func TestRateLimiterKeysAnonymousClientsByHost(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1, testLogger())
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.7:40001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.7:40002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.8:40001"))
	assert.Len(t, limiter.limiters, 2)
	assert.Contains(t, limiter.limiters, "10.0.0.7")
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(1, 1, testLogger())
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.limiter("alice")
	now = now.Add(5 * time.Minute)
	limiter.limiter("bob")
	require.Len(t, limiter.limiters, 2)

	// alice простаивает дольше limiterIdleTTL, bob еще нет
	now = now.Add(limiterIdleTTL - time.Minute)
	limiter.limiter("carol")
	assert.Len(t, limiter.limiters, 2)
	assert.NotContains(t, limiter.limiters, "alice")
	assert.Contains(t, limiter.limiters, "bob")
	assert.Contains(t, limiter.limiters, "carol")
}

func TestUsageTrendRejectsBadMonths(t *testing.T) {
	h := NewBillHandler(nil, nil, testLogger())

	for _, months := range []string{"abc", "0", "-2"} {
		req := WithUserID(httptest.NewRequest(http.MethodGet, "/api/usage/trend?months="+months, nil), uuid.NewString())
		rec := httptest.NewRecorder()
		h.GetUsageTrend(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "months=%s", months)
	}
}

func TestSimulateRejectsBadBody(t *testing.T) {
	logger := testLogger()
	h := NewSimulationHandler(nil, logger)

	req := WithUserID(httptest.NewRequest(http.MethodPost, "/api/simulations", strings.NewReader("{")), uuid.NewString())
	rec := httptest.NewRecorder()
	h.Simulate(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = WithUserID(httptest.NewRequest(http.MethodPost, "/api/simulations", strings.NewReader(`{"period":"24-05"}`)), uuid.NewString())
	rec = httptest.NewRecorder()
	h.Simulate(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsMiddlewarePassesStatus(t *testing.T) {
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(testLogger()))
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
