package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/auth/jwt"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/handler"
	"github.com/medflow/medsupply-backend/internal/pharmacy/notifier"
	"github.com/medflow/medsupply-backend/internal/pharmacy/repository"
	"github.com/medflow/medsupply-backend/internal/pharmacy/service"
	"github.com/medflow/medsupply-backend/pkg/config"
	"github.com/medflow/medsupply-backend/pkg/httputil"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/medflow/medsupply-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "/api/v1/pharmacy"

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *httputil.ErrorBody `json:"error"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Nop()

	store := repository.NewStateStore(repository.NewMemoryKV(), "", log)
	dispatcher := notifier.NewDispatcher(notifier.NewLogNotifier(log), time.Second, log)
	svc, err := service.NewPharmacyService(context.Background(), store, dispatcher, nil,
		service.Options{RecheckDelay: time.Hour, Now: func() time.Time { return testNow }}, log)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	authCfg := &config.AuthConfig{
		Username:      "test",
		Password:      "test",
		JWTSecret:     "test-secret",
		JWTIssuer:     "medsupply-test",
		SessionExpiry: time.Hour,
	}
	auth, err := service.NewAuthenticator(svc, jwt.NewManager(authCfg), authCfg, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route(base, handler.NewHandler(svc, auth, log).Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := testutil.NewHTTPRequest(method, base+path, body)
	if token != "" {
		testutil.WithBearer(req, token)
	}
	rr := testutil.ExecuteRequest(h, req)

	var env envelope
	if rr.Code != http.StatusNoContent {
		testutil.ParseJSONBody(t, rr, &env)
	}
	return rr, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rr, env := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"username": "test", "password": "test"})
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		AccessToken string `json:"access_token"`
		Message     string `json:"message"`
	}
	decode(t, env.Data, &resp)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Login successful", resp.Message)
	return resp.AccessToken
}

func TestRoutes_RequireToken(t *testing.T) {
	h := newRouter(t)

	rr, env := do(t, h, http.MethodGet, "/dashboard", "", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newRouter(t)

	rr, env := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"username": "test", "password": "wrong"})
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	rr, _ := do(t, h, http.MethodGet, "/auth/session", token, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr, _ = do(t, h, http.MethodPost, "/auth/logout", token, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr, _ = do(t, h, http.MethodGet, "/auth/session", token, nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestReorderFlow(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	rr, env := do(t, h, http.MethodPost, "/medicines", token, map[string]interface{}{
		"name": "Amox", "row": "A", "slot": "1", "stock": 5, "expiry": "2024-02-10",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var created struct {
		Message string          `json:"message"`
		Data    domain.Medicine `json:"data"`
	}
	decode(t, env.Data, &created)
	require.NotEmpty(t, created.Data.ID)

	var dash handler.DashboardResponse
	_, env = do(t, h, http.MethodGet, "/dashboard", token, nil)
	decode(t, env.Data, &dash)
	assert.Len(t, dash.LowStock, 1)
	assert.Len(t, dash.ExpiringSoon, 1)
	assert.Equal(t, 1, dash.Summary.MedicineCount)
	assert.Equal(t, "⚠ 1 medicine(s) expiring soon. ⚠ 1 medicine(s) low in stock.", dash.Message)

	rr, env = do(t, h, http.MethodPost, "/orders", token, map[string]interface{}{
		"id": "o1", "email": "ph@x.com", "items": []map[string]interface{}{{"medicine": "Amox", "quantity": 50}},
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertBodyContains(t, rr, "Order sent to ph@x.com!")

	dash = handler.DashboardResponse{}
	_, env = do(t, h, http.MethodGet, "/dashboard", token, nil)
	decode(t, env.Data, &dash)
	assert.Empty(t, dash.LowStock)
	require.Len(t, dash.AlreadyOrdered, 1)
	assert.Equal(t, created.Data.ID, dash.AlreadyOrdered[0].ID)

	rr, _ = do(t, h, http.MethodPost, "/orders/o1/receive", token, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var meds []domain.Medicine
	_, env = do(t, h, http.MethodGet, "/medicines", token, nil)
	decode(t, env.Data, &meds)
	require.Len(t, meds, 1)
	assert.Equal(t, 55, meds[0].Stock)

	var orders handler.OrdersResponse
	_, env = do(t, h, http.MethodGet, "/orders", token, nil)
	decode(t, env.Data, &orders)
	assert.Empty(t, orders.Pending)
	require.Len(t, orders.Completed, 1)
	assert.Equal(t, "Amox - 50", orders.Completed[0].Medicine)
}

func TestCreateOrder_DuplicateID(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)
	order := map[string]interface{}{
		"id": "o1", "email": "ph@x.com", "items": []map[string]interface{}{{"medicine": "Amox", "quantity": 5}},
	}

	rr, _ := do(t, h, http.MethodPost, "/orders", token, order)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr, env := do(t, h, http.MethodPost, "/orders", token, order)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	assert.Equal(t, "Order ID already exists!", env.Error.Message)
}

func TestCreateSupplier_Validation(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	rr, env := do(t, h, http.MethodPost, "/suppliers", token, map[string]string{"id": "s1", "name": "Acme", "email": "bad"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "Email")
	assert.Contains(t, env.Error.Details, "Phone")
}

func TestListSuppliers_Search(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	for _, s := range []map[string]string{
		{"id": "s1", "name": "Acme Pharma", "email": "acme@x.com", "phone": "111"},
		{"id": "s2", "name": "Medico", "email": "orders@medico.com", "phone": "222"},
	} {
		rr, _ := do(t, h, http.MethodPost, "/suppliers", token, s)
		testutil.AssertStatus(t, rr, http.StatusCreated)
	}

	var list []domain.Supplier
	_, env := do(t, h, http.MethodGet, "/suppliers?q=ACME", token, nil)
	decode(t, env.Data, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)
}

func TestPatients_ContactedLeavesReminders(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	rr, env := do(t, h, http.MethodPost, "/patients", token, map[string]interface{}{
		"name": "Ann", "age": 40, "gender": "F", "phone": "555", "email": "ann@x.com",
		"address": "Main St", "disease": "Flu", "medicineType": "Amox", "medicineExpiry": "2024-01-30",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var created struct {
		Data domain.Patient `json:"data"`
	}
	decode(t, env.Data, &created)

	var dash handler.DashboardResponse
	_, env = do(t, h, http.MethodGet, "/dashboard", token, nil)
	decode(t, env.Data, &dash)
	require.Len(t, dash.PatientsNeedingContact, 1)

	rr, env = do(t, h, http.MethodPost, "/patients/"+created.Data.ID+"/contacted", token, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertBodyContains(t, rr, "Contacted Ann")

	dash = handler.DashboardResponse{}
	_, env = do(t, h, http.MethodGet, "/dashboard", token, nil)
	decode(t, env.Data, &dash)
	assert.Empty(t, dash.PatientsNeedingContact)
}

func TestUseMedicine_NotEnoughStock(t *testing.T) {
	h := newRouter(t)
	token := login(t, h)

	_, env := do(t, h, http.MethodPost, "/medicines", token, map[string]interface{}{
		"name": "Amox", "row": "A", "slot": "1", "stock": 3, "expiry": "2025-01-01",
	})
	var created struct {
		Data domain.Medicine `json:"data"`
	}
	decode(t, env.Data, &created)

	rr, env := do(t, h, http.MethodPost, "/medicines/"+created.Data.ID+"/use", token, map[string]int{"quantity": 5})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	assert.Equal(t, "Not enough stock of Amox. Available: 3", env.Error.Message)

	rr, _ = do(t, h, http.MethodGet, "/flash", token, nil)
	testutil.AssertBodyContains(t, rr, "Not enough stock of Amox")

	rr, _ = do(t, h, http.MethodDelete, "/flash", token, nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}
