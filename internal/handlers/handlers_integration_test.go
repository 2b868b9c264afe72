package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/app"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secret"
)

type testEnv struct {
	app *app.App
	db  *gorm.DB
}

// setupApp builds the full application on a private in-memory SQLite database
// with a seeded administrator.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db := database.OpenTest(t)
	cfg := &config.Config{
		JWTSecret:       "test_jwt_secret",
		JWTTTL:          time.Hour,
		PageSizeDefault: 20,
		PageSizeMax:     50,
	}
	a := app.New(app.Deps{Config: cfg, DB: db})
	require.NoError(t, a.Auth.EnsureAdmin(context.Background(), adminEmail, adminPassword))
	return &testEnv{app: a, db: db}
}

// do sends a request and decodes the JSON response into a generic map.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Fiber.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, username string) uint {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]interface{})
	return uint(user["id"].(float64))
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) createBook(t *testing.T, adminToken, title, price string) uint {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/admin/books", adminToken, map[string]interface{}{
		"title":    title,
		"author":   "Some Author",
		"price":    price,
		"quantity": 10,
		"genres":   []string{"fiction"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return uint(body["book"].(map[string]interface{})["id"].(float64))
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	env.register(t, "testuser")

	// Test Duplicate Registration (username)
	status, _ := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "another@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	// Test Invalid Registration (short password)
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "shorty",
		"email":    "shorty@example.com",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	token := env.login(t, "testuser", "password123")
	assert.NotEmpty(t, token)

	// Test Login with wrong password
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupApp(t)
	userID := env.register(t, "reader")
	token := env.login(t, "reader", "password123")

	status, _ := env.do(t, http.MethodGet, fmt.Sprintf("/api/cart/user/%d", userID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Regular users cannot reach admin routes
	status, _ = env.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodGet, "/api/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Nor another user's cart
	other := env.register(t, "other")
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/cart/user/%d", other), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The catalog stays public
	status, _ = env.do(t, http.MethodGet, "/api/catalog/books", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)

	id := env.createBook(t, adminToken, "Dune", "12.50")
	env.createBook(t, adminToken, "Emma", "8.00")

	status, body := env.do(t, http.MethodGet, "/api/catalog/books?size=1&sort=price", "", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["total_items"])
	assert.Equal(t, float64(2), body["total_pages"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Emma", items[0].(map[string]interface{})["title"])

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/catalog/books/%d", id), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dune", body["title"])
	assert.NotContains(t, body, "isbn", "unset optional fields are omitted")

	status, _ = env.do(t, http.MethodGet, "/api/catalog/books?sort=isbn", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/books/%d", id), adminToken, map[string]interface{}{
		"title": "Dune Messiah", "author": "Frank Herbert", "price": "13.00", "quantity": 3,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Dune Messiah", body["book"].(map[string]interface{})["title"])

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/books/%d", id), adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/catalog/books/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartToOrderFlow(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)
	dune := env.createBook(t, adminToken, "Dune", "12.50")
	emma := env.createBook(t, adminToken, "Emma", "8.00")

	userID := env.register(t, "buyer")
	token := env.login(t, "buyer", "password123")
	cartPath := fmt.Sprintf("/api/cart/user/%d", userID)

	// Checkout of an empty cart is rejected
	status, _ := env.do(t, http.MethodPost, cartPath, token, nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/user/%d", userID), token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body := env.do(t, http.MethodPost, fmt.Sprintf("%s/items?bookId=%d&quantity=2", cartPath, dune), token, nil)
	require.Equal(t, http.StatusOK, status, body)
	status, body = env.do(t, http.MethodPost, fmt.Sprintf("%s/items?bookId=%d", cartPath, emma), token, nil)
	require.Equal(t, http.StatusOK, status, body)
	cart := body["cart"].(map[string]interface{})
	assert.Len(t, cart["items"], 2)
	cartTotal, err := decimal.NewFromString(cart["total"].(string))
	require.NoError(t, err)
	assert.True(t, cartTotal.Equal(decimal.RequireFromString("33.00")))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("%s/items?bookId=9999", cartPath), token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/user/%d", userID), token, nil)
	require.Equal(t, http.StatusCreated, status, body)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusPending, order["status"])
	total, err := decimal.NewFromString(order["total_price"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("33.00")))
	orderID := uint(order["id"].(float64))
	for _, raw := range order["items"].([]interface{}) {
		item := raw.(map[string]interface{})
		assert.NotContains(t, item, "order", "items do not reference their order")
		assert.NotContains(t, item["book"], "orders")
	}

	// The cart is emptied by checkout
	status, body = env.do(t, http.MethodGet, cartPath, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["cart"].(map[string]interface{})["items"])

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(orderID), body["order"].(map[string]interface{})["id"])

	// Only admins change status; completed orders cannot be cancelled
	status, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status?status=COMPLETED", orderID), token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", orderID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status?status=COMPLETED", orderID), adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, models.OrderStatusCompleted, body["order"].(map[string]interface{})["status"])

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = env.do(t, http.MethodGet, "/api/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)
}

func TestCancelPendingOrder(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)
	book := env.createBook(t, adminToken, "Dune", "12.50")
	userID := env.register(t, "buyer")
	token := env.login(t, "buyer", "password123")

	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/cart/user/%d/items?bookId=%d", userID, book), token, nil)
	require.Equal(t, http.StatusOK, status)
	status, body := env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/user/%d", userID), token, nil)
	require.Equal(t, http.StatusCreated, status)
	orderID := uint(body["order"].(map[string]interface{})["id"].(float64))

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodDelete, "/api/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCartQuantityIsBounded(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)
	book := env.createBook(t, adminToken, "Dune", "12.50")
	userID := env.register(t, "buyer")
	token := env.login(t, "buyer", "password123")
	itemsPath := fmt.Sprintf("/api/cart/user/%d/items", userID)

	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("%s?bookId=%d&quantity=%d", itemsPath, book, math.MaxInt), token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.do(t, http.MethodPost, fmt.Sprintf("%s?bookId=%d", itemsPath, book), token, nil)
	require.Equal(t, http.StatusOK, status, body)
	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("%s?bookId=%d&quantity=%d", itemsPath, book, services.MaxItemQuantity), token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/cart/user/%d", userID), token, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["cart"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), items[0].(map[string]interface{})["quantity"])

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/user/%d", userID), token, nil)
	require.Equal(t, http.StatusCreated, status, body)
	total, err := decimal.NewFromString(body["order"].(map[string]interface{})["total_price"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("12.50")))
}

func TestOrderAccessIsLimitedToOwner(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)
	book := env.createBook(t, adminToken, "Dune", "12.50")
	ownerID := env.register(t, "buyer")
	ownerToken := env.login(t, "buyer", "password123")
	env.register(t, "other")
	otherToken := env.login(t, "other", "password123")

	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/api/cart/user/%d/items?bookId=%d", ownerID, book), ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, body := env.do(t, http.MethodPost, fmt.Sprintf("/api/orders/user/%d", ownerID), ownerToken, nil)
	require.Equal(t, http.StatusCreated, status)
	orderPath := fmt.Sprintf("/api/orders/%d", uint(body["order"].(map[string]interface{})["id"].(float64)))

	status, body = env.do(t, http.MethodGet, orderPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.NotContains(t, body, "order")
	status, _ = env.do(t, http.MethodDelete, orderPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodGet, "/api/orders/9999", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Still pending and visible to the owner and to admins
	status, body = env.do(t, http.MethodGet, orderPath, ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.OrderStatusPending, body["order"].(map[string]interface{})["status"])
	status, _ = env.do(t, http.MethodGet, orderPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodDelete, orderPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSalesHistoryEndpoint(t *testing.T) {
	env := setupApp(t)
	adminToken := env.login(t, adminEmail, adminPassword)
	dune := env.createBook(t, adminToken, "Dune", "12.50")
	emma := env.createBook(t, adminToken, "Emma", "8.00")
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	// Orders are written directly so their creation times are fixed.
	repo := repositories.NewGORMOrderRepository(env.db)
	place := func(userID, bookID uint, at time.Time) {
		o := &models.Order{
			UserID: userID, Status: models.OrderStatusPending, CreatedAt: at,
			TotalPrice: decimal.RequireFromString("10.00"),
			Items:      []models.OrderItem{{BookID: bookID, Quantity: 1, Price: decimal.RequireFromString("10.00")}},
		}
		require.NoError(t, repo.Create(context.Background(), o))
	}
	place(alice, dune, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	place(alice, emma, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	place(bob, dune, time.Date(2024, 2, 11, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		query string
		total float64
	}{
		{"all", "", 3},
		{"customer", fmt.Sprintf("?customerId=%d", alice), 2},
		{"customer in range", fmt.Sprintf("?customerId=%d&from=2024-02-01&to=2024-02-28", alice), 1},
		{"product", fmt.Sprintf("?productId=%d", dune), 2},
		{"product in range", fmt.Sprintf("?productId=%d&from=2024-01-01&to=2024-01-31", dune), 1},
		{"date range", "?from=2024-02-10&to=2024-02-10", 1},
		{"customer and product", fmt.Sprintf("?customerId=%d&productId=%d", bob, emma), 1},
		{"only from", "?from=2024-02-10", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/api/admin/orders"+tt.query, adminToken, nil)
			require.Equal(t, http.StatusOK, status, body)
			assert.Equal(t, tt.total, body["total_items"])
		})
	}

	status, body := env.do(t, http.MethodGet, "/api/admin/orders?page=0&size=2", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 2)
	assert.Equal(t, float64(2), body["total_pages"])

	status, _ = env.do(t, http.MethodGet, "/api/admin/orders?from=01-01-2024&to=2024-01-31", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodGet, "/api/admin/orders?customerId=abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodGet, "/api/admin/orders?page=-1", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupApp(t)

	status, body := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := env.app.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "bookstore_orders_created_total")
}
