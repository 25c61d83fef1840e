package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/config"
	"github.com/Adarsh0311/shopsphere-backend/database"
	"github.com/Adarsh0311/shopsphere-backend/middleware"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/payment"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test adjust the dependencies before routing.
func newTestServerWith(t *testing.T, adjust func(*Deps)) *testServer {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, database.AdminSeed{
		Username: "admin",
		Password: "admin123",
		Email:    "admin@example.com",
	}))

	tokens := auth.NewTokenIssuer("routes-test-secret", time.Hour)
	hub := notify.NewHub()
	outbox := notify.NewOutbox(db, notify.Multi{hub}, 3)
	deps := Deps{
		Tokens:  tokens,
		Users:   services.NewUserService(db, tokens),
		Catalog: services.NewCatalogService(db),
		Carts:   services.NewCartService(db),
		Checkout: services.NewCheckoutService(database.NewUnitOfWork(db), payment.NewSimulated(), outbox, services.CheckoutConfig{
			Currency:        "USD",
			MinorUnitDigits: 2,
			PaymentTimeout:  time.Second,
		}),
		Orders:             services.NewOrderService(db, false),
		Admin:              services.NewAdminService(db, 10),
		Outbox:             outbox,
		Hub:                hub,
		LowStockThreshold:  10,
		TelrWebhookEnabled: true,
		TelrSandbox:        true,
	}
	if adjust != nil {
		adjust(&deps)
	}

	r := gin.New()
	SetupRoutes(r, deps)
	return &testServer{t: t, db: db, router: r}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp services.AuthResponse
	decode(s.t, w, &resp)
	assert.Equal(s.t, "Bearer", resp.TokenType)
	return resp.AccessToken
}

func (s *testServer) registerAndLogin(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "secret123",
		"email":    username + "@example.com",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(username, "secret123")
}

func (s *testServer) createProduct(adminToken, name, price string, stock int) services.ProductResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/admin/products", adminToken, gin.H{
		"name":           name,
		"price":          price,
		"stock_quantity": stock,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var p services.ProductResponse
	decode(s.t, w, &p)
	return p
}

func shippingBody(token string) gin.H {
	return gin.H{
		"street":               "1 Main St",
		"city":                 "Springfield",
		"postal_code":          "62701",
		"country":              "US",
		"payment_method":       "credit_card",
		"payment_method_token": token,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin("jane")

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "jane",
		"password": "another1",
		"email":    "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin("jane")

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "jane", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	userToken := s.registerAndLogin("jane")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/dashboard", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/dashboard", userToken, nil).Code)

	adminToken := s.login("admin", "admin123")
	w := s.do(http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.DashboardStats
	decode(t, w, &stats)
	assert.Equal(t, int64(2), stats.TotalUsers)
}

func TestCatalogIsPublic(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")
	s.createProduct(adminToken, "Keyboard", "49.99", 5)
	s.createProduct(adminToken, "Mouse", "19.99", 50)

	w := s.do(http.MethodGet, "/api/products?max_price=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []services.ProductResponse
	decode(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Mouse", products[0].Name)

	w = s.do(http.MethodGet, "/api/products/search/name?name=keyboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products?min_price=abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products/price-range?min=30&max=10", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/does-not-exist", "", nil).Code)

	w = s.do(http.MethodGet, "/api/admin/products/low-stock", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Keyboard", products[0].Name)
}

func TestPlaceOrderOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")
	product := s.createProduct(adminToken, "Keyboard", "49.99", 5)
	userToken := s.registerAndLogin("jane")

	w := s.do(http.MethodPost, "/api/cart/add", userToken, gin.H{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/orders", userToken, shippingBody("tok_visa"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order services.OrderResponse
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "99.98", order.TotalAmount.String())
	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentStatusCompleted, order.Payment.Status)

	// cart is emptied
	w = s.do(http.MethodGet, "/api/cart", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart services.CartResponse
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)

	w = s.do(http.MethodGet, "/api/orders/my-orders", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []services.OrderResponse
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)

	// a second cart-less checkout is refused
	w = s.do(http.MethodPost, "/api/orders", userToken, shippingBody("tok_visa"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// another shopper cannot read the order
	otherToken := s.registerAndLogin("john")
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/orders/"+order.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/orders/"+order.ID, adminToken, nil).Code)

	w = s.do(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", adminToken, gin.H{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	w = s.do(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", adminToken, gin.H{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/admin/orders/"+order.ID+"/status", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusOfUnknownOrder(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")

	w := s.do(http.MethodPut, "/api/admin/orders/does-not-exist/status", adminToken, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/orders/does-not-exist/status", adminToken, gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/orders/does-not-exist/payment-status", adminToken, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestDeclinedPaymentKeepsCart(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")
	product := s.createProduct(adminToken, "Keyboard", "49.99", 5)
	userToken := s.registerAndLogin("jane")

	w := s.do(http.MethodPost, "/api/cart/add", userToken, gin.H{"product_id": product.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/orders", userToken, shippingBody(payment.TokenDeclined))
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = s.do(http.MethodGet, "/api/cart", userToken, nil)
	var cart services.CartResponse
	decode(t, w, &cart)
	assert.Len(t, cart.Items, 1)

	var stock models.Product
	require.NoError(t, s.db.First(&stock, "id = ?", product.ID).Error)
	assert.Equal(t, 5, stock.StockQuantity)
}

func TestTelrWebhookSettlesPendingOrder(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")
	product := s.createProduct(adminToken, "Keyboard", "49.99", 5)
	userToken := s.registerAndLogin("jane")

	s.do(http.MethodPost, "/api/cart/add", userToken, gin.H{"product_id": product.ID, "quantity": 1})
	w := s.do(http.MethodPost, "/api/orders", userToken, shippingBody(payment.TokenPending))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order services.OrderResponse
	decode(t, w, &order)
	require.Equal(t, models.OrderStatusPending, order.Status)

	form := url.Values{
		"tran_cartid": {order.ID},
		"tran_order":  {order.Payment.TransactionID},
		"tran_status": {"A"},
		"tran_ref":    {"ref-1"},
	}
	rec := s.postWebhook(form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w = s.do(http.MethodGet, "/api/orders/"+order.ID, userToken, nil)
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.Payment.Status)
}

func TestTelrWebhookRequiresCartID(t *testing.T) {
	s := newTestServer(t)
	rec := s.postWebhook(url.Values{"tran_status": {"A"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func (s *testServer) postWebhook(form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// pendingOrder places an order whose payment waits for the webhook.
func (s *testServer) pendingOrder() services.OrderResponse {
	s.t.Helper()
	adminToken := s.login("admin", "admin123")
	product := s.createProduct(adminToken, "Keyboard", "49.99", 5)
	userToken := s.registerAndLogin("jane")

	s.do(http.MethodPost, "/api/cart/add", userToken, gin.H{"product_id": product.ID, "quantity": 1})
	w := s.do(http.MethodPost, "/api/orders", userToken, shippingBody(payment.TokenPending))
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var order services.OrderResponse
	decode(s.t, w, &order)
	require.Equal(s.t, models.OrderStatusPending, order.Status)
	return order
}

func (s *testServer) orderStatus(id string) models.OrderStatus {
	s.t.Helper()
	var o models.Order
	require.NoError(s.t, s.db.First(&o, "id = ?", id).Error)
	return o.Status
}

func TestTelrWebhookRejectsUnsignedCallsByDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PAYMENT_PROVIDER", "telr")
	t.Setenv("TELR_STORE_ID", "1234")
	t.Setenv("TELR_AUTH_KEY", "key")
	t.Setenv("TELR_WEBHOOK_SECRET", "s3cret")
	t.Setenv("TELR_MODE", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	s := newTestServerWith(t, func(d *Deps) {
		d.TelrWebhookEnabled = cfg.TelrWebhookEnabled()
		d.TelrWebhookSecret = cfg.TelrWebhookKey
		d.TelrSandbox = cfg.TelrTestMode()
	})
	order := s.pendingOrder()
	form := url.Values{
		"tran_cartid": {order.ID},
		"tran_order":  {order.Payment.TransactionID},
		"tran_status": {"A"},
	}

	rec := s.postWebhook(form)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderStatusPending, s.orderStatus(order.ID))

	form.Set("tran_check", "0000")
	rec = s.postWebhook(form)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	form.Set("tran_check", middleware.TelrSignature(cfg.TelrWebhookKey, form.Get))
	rec = s.postWebhook(form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderStatusProcessing, s.orderStatus(order.ID))
}

func TestTelrWebhookRejectsForeignReference(t *testing.T) {
	s := newTestServer(t)
	order := s.pendingOrder()

	for _, ref := range []string{"", "someone-elses-order"} {
		rec := s.postWebhook(url.Values{
			"tran_cartid": {order.ID},
			"tran_order":  {ref},
			"tran_status": {"A"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, ref)
	}
	assert.Equal(t, models.OrderStatusPending, s.orderStatus(order.ID))
}

func TestTelrWebhookOnlyMountedForTelr(t *testing.T) {
	s := newTestServerWith(t, func(d *Deps) { d.TelrWebhookEnabled = false })
	order := s.pendingOrder()

	rec := s.postWebhook(url.Values{
		"tran_cartid": {order.ID},
		"tran_order":  {order.Payment.TransactionID},
		"tran_status": {"A"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.OrderStatusPending, s.orderStatus(order.ID))
}

func TestNotificationBacklog(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")

	w := s.do(http.MethodGet, "/api/admin/notifications", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending":0,"dead_lettered":0}`, w.Body.String())
}
