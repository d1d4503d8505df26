package handler_test

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/handler"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/repository"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

var chef = &actor.Actor{ID: "user-1", FirstName: "Ada", LastName: "Chef", Email: "chef@example.com"}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(t *testing.T) (http.Handler, *testutil.MockDB) {
	t.Helper()
	return newRouterWithLogger(t, logger.Nop())
}

func newRouterWithLogger(t *testing.T, log *logger.Logger) (http.Handler, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	svc := service.NewInventoryService(mockDB.DB, service.Repositories{
		Categories: repository.NewCategoryRepository(mockDB.DB),
		Products:   repository.NewProductRepository(mockDB.DB, nil),
		Batches:    repository.NewBatchRepository(mockDB.DB),
		UsageLogs:  repository.NewUsageLogRepository(mockDB.DB),
		Stats:      repository.NewStatsRepository(mockDB.DB),
	}, nil, nil, service.Config{
		Now: func() time.Time { return fixedNow },
	}, logger.Nop())

	r := chi.NewRouter()
	handler.Routes(r, svc, passthrough, log)
	return r, mockDB
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	return testutil.ExecuteRequest(router, req)
}

func TestAdd_Anonymous(t *testing.T) {
	router, mockDB := newRouter(t)

	rr := serve(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/inventory/add", `{}`))

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestAdd_ValidationFailure(t *testing.T) {
	router, _ := newRouter(t)
	body := `{"product": {"barcode": "0001", "name": "Milk", "unit_price": "abc"}, "quantity": 1,
		"purchase_date": "2025-06-10", "expiry_date": "2025-06-15", "supplier": "Farm", "cost_price": "1.00"}`

	req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodPost, "/api/v1/inventory/add", body), chef)
	rr := serve(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, map[string]string{"product.unit_price": "must be a valid number"}, env.Error.Details)
}

func TestAdd_WrongJSONTypeIsFieldError(t *testing.T) {
	router, _ := newRouter(t)

	req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodPost, "/api/v1/inventory/add", `{"quantity": "many"}`), chef)
	rr := serve(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.Contains(t, env.Error.Details, "quantity")
}

func TestAdd_Success(t *testing.T) {
	router, mockDB := newRouter(t)
	body := `{"product": {"barcode": "0001", "name": "Milk", "unit_price": 2.5}, "quantity": 4,
		"purchase_date": "2025-06-10", "expiry_date": "2025-06-15", "supplier": "Farm", "cost_price": "1.50"}`

	mockDB.ExpectBegin()
	mockDB.ExpectExec("pg_advisory_xact_lock").
		WithArgs("Food & Beverages").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectQuery("FROM categories WHERE name = $1").
		WillReturnRows(testutil.MockRows("id", "name", "description", "created_at").
			AddRow("cat-1", "Food & Beverages", "", fixedNow))
	mockDB.ExpectQuery("ON CONFLICT (barcode) DO NOTHING").
		WillReturnRows(testutil.MockRows("id", "created_at", "updated_at").AddRow("prod-1", fixedNow, fixedNow))
	mockDB.ExpectQuery("INSERT INTO inventory_batches").
		WillReturnRows(testutil.MockRows("id", "created_at", "updated_at").AddRow("batch-1", fixedNow, fixedNow))
	mockDB.ExpectCommit()

	req := testutil.WithActor(testutil.NewHTTPRequest(http.MethodPost, "/api/v1/inventory/add", body), chef)
	rr := serve(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var view struct {
		ID              string `json:"id"`
		Product         string `json:"product"`
		ProductName     string `json:"product_name"`
		DaysUntilExpiry int    `json:"days_until_expiry"`
		Status          string `json:"status"`
		CostPrice       string `json:"cost_price"`
		AddedBy         string `json:"added_by"`
	}
	env := testutil.ParseEnvelope(t, rr, &view)
	assert.True(t, env.Success)
	assert.Equal(t, "Product added to inventory successfully!", env.Message)
	assert.Equal(t, "batch-1", view.ID)
	assert.Equal(t, "prod-1", view.Product)
	assert.Equal(t, "Milk", view.ProductName)
	assert.Equal(t, 5, view.DaysUntilExpiry)
	assert.Equal(t, "expiring_soon", view.Status)
	assert.Equal(t, "1.50", view.CostPrice)
	assert.Equal(t, "user-1", view.AddedBy)
	mockDB.ExpectationsWereMet(t)
}

func TestSearchByBarcode(t *testing.T) {
	t.Run("missing parameter", func(t *testing.T) {
		router, _ := newRouter(t)
		rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/products/search_by_barcode", nil))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown barcode", func(t *testing.T) {
		router, mockDB := newRouter(t)
		mockDB.ExpectQuery("WHERE p.barcode = $1").
			WithArgs("9999").
			WillReturnRows(testutil.MockRows("id"))

		rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/products/search_by_barcode?barcode=9999", nil))

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		env := testutil.ParseEnvelope(t, rr, nil)
		assert.Equal(t, "product not found", env.Error.Message)
	})
}

func TestExpiringSoon_BadDays(t *testing.T) {
	for _, days := range []string{"abc", "1.5", "-1"} {
		t.Run(days, func(t *testing.T) {
			router, _ := newRouter(t)
			rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/items/expiring_soon?days="+days, nil))

			testutil.AssertStatus(t, rr, http.StatusBadRequest)
			env := testutil.ParseEnvelope(t, rr, nil)
			assert.Contains(t, env.Error.Details, "days")
		})
	}
}

func TestDashboardStats_Alias(t *testing.T) {
	for _, path := range []string{"/api/v1/inventory/items/dashboard_stats", "/api/v1/inventory/dashboard_stats"} {
		t.Run(path, func(t *testing.T) {
			router, mockDB := newRouter(t)
			mockDB.ExpectQuery("AS total_items").
				WillReturnRows(testutil.MockRows("total_items", "expiring_soon", "expired_items", "total_categories").
					AddRow(7, 2, 1, 3))

			rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, path, nil))

			testutil.AssertStatus(t, rr, http.StatusOK)
			var stats domain.DashboardStats
			testutil.ParseEnvelope(t, rr, &stats)
			assert.Equal(t, domain.DashboardStats{TotalItems: 7, ExpiringSoon: 2, ExpiredItems: 1, TotalCategories: 3}, stats)
		})
	}
}

func TestListItems_UnknownStatus(t *testing.T) {
	router, _ := newRouter(t)
	rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/items?status=stale", nil))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestExportItems(t *testing.T) {
	router, mockDB := newRouter(t)
	mockDB.ExpectQuery("SELECT COUNT(*) FROM inventory_batches b").
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mockDB.ExpectQuery("ORDER BY b.created_at DESC, b.id").
		WillReturnRows(testutil.MockRows("id"))

	rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/items/export", nil))

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "id,product_name,product_barcode"))
}

func TestUnexpectedErrorIsGeneric(t *testing.T) {
	var logs bytes.Buffer
	router, mockDB := newRouterWithLogger(t, logger.NewWithWriter("inventory-service", "test", &logs))
	mockDB.ExpectQuery("FROM categories WHERE id = $1").
		WillReturnError(stderrors.New("pq: relation \"categories\" does not exist"))

	rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/categories/cat-1", nil))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.Equal(t, "an unexpected error occurred", env.Message)
	assert.NotContains(t, rr.Body.String(), "relation")

	assert.Contains(t, logs.String(), `"message":"unexpected error"`)
	assert.Contains(t, logs.String(), `relation \"categories\" does not exist`)
	assert.Contains(t, logs.String(), `"path":"/api/v1/inventory/categories/cat-1"`)
}

func TestExpiringSoon_HugeWindowIsValidationError(t *testing.T) {
	router, mockDB := newRouter(t)

	rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/items/expiring_soon?days=10000000", nil))

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.Equal(t, "must be at most 3650", env.Error.Details["days"])
	mockDB.ExpectationsWereMet(t)
}

func TestDashboardStatsFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	router, mockDB := newRouterWithLogger(t, logger.NewWithWriter("inventory-service", "test", &logs))
	mockDB.Mock.ExpectQuery("FROM inventory_batches").
		WillReturnError(stderrors.New("connection reset by peer"))

	rr := serve(router, testutil.WithActor(testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/dashboard_stats", nil), chef))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	assert.Contains(t, logs.String(), "connection reset by peer")
}

func TestValidationErrorIsNotLogged(t *testing.T) {
	var logs bytes.Buffer
	router, _ := newRouterWithLogger(t, logger.NewWithWriter("inventory-service", "test", &logs))

	rr := serve(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/inventory/items/expiring_soon?days=-1", nil))

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	assert.Empty(t, logs.String())
}

func TestCreateCategory(t *testing.T) {
	router, mockDB := newRouter(t)
	mockDB.ExpectQuery("INSERT INTO categories").
		WithArgs("Dairy", "Milk and cheese").
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("cat-1", fixedNow))

	rr := serve(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/inventory/categories",
		`{"name": " Dairy ", "description": "Milk and cheese"}`))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var cat domain.Category
	testutil.ParseEnvelope(t, rr, &cat)
	assert.Equal(t, "cat-1", cat.ID)
	assert.Equal(t, "Dairy", cat.Name)
	require.NoError(t, mockDB.Mock.ExpectationsWereMet())
}
