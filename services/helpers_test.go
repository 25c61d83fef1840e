package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/database"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []notify.OrderConfirmation
	err   error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, conf notify.OrderConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, conf)
	return r.err
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// countingGateway wraps a gateway and counts charges and voids.
type countingGateway struct {
	mu    sync.Mutex
	inner payment.Gateway
	calls []payment.ChargeRequest
	voids []payment.Result
}

func (g *countingGateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	return g.inner.Charge(ctx, req)
}

func (g *countingGateway) Void(ctx context.Context, charged payment.Result) error {
	g.mu.Lock()
	g.voids = append(g.voids, charged)
	g.mu.Unlock()
	return g.inner.Void(ctx, charged)
}

func (g *countingGateway) charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *countingGateway) voided() []payment.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.Result(nil), g.voids...)
}

// blockingGateway waits for the context to expire.
type blockingGateway struct{}

func (blockingGateway) Charge(ctx context.Context, _ payment.ChargeRequest) (payment.Result, error) {
	<-ctx.Done()
	return payment.Result{Outcome: payment.GatewayError, Reason: "timeout"}, ctx.Err()
}

func (blockingGateway) Void(context.Context, payment.Result) error { return nil }

type testEnv struct {
	db         *gorm.DB
	gateway    *countingGateway
	dispatcher *recordingDispatcher
	outbox     *notify.Outbox
	catalog    *CatalogService
	carts      *CartService
	checkout   *CheckoutService
	orders     *OrderService
	admin      *AdminService
	users      *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithGateway(t, payment.NewSimulated())
}

func newTestEnvWithGateway(t *testing.T, gw payment.Gateway) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, database.AdminSeed{}))

	env := &testEnv{
		db:         db,
		gateway:    &countingGateway{inner: gw},
		dispatcher: &recordingDispatcher{},
	}
	env.outbox = notify.NewOutbox(db, env.dispatcher, 3)
	env.catalog = NewCatalogService(db)
	env.carts = NewCartService(db)
	env.checkout = NewCheckoutService(database.NewUnitOfWork(db), env.gateway, env.outbox, CheckoutConfig{
		Currency:        "USD",
		MinorUnitDigits: 2,
		PaymentTimeout:  200 * time.Millisecond,
	})
	env.orders = NewOrderService(db, false)
	env.admin = NewAdminService(db, 10)
	env.users = NewUserService(db, auth.NewTokenIssuer("test-secret", time.Hour))
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, roleNames ...string) auth.Identity {
	t.Helper()
	if len(roleNames) == 0 {
		roleNames = []string{models.RoleUser}
	}
	var roles []models.Role
	require.NoError(t, e.db.Where("name IN ?", roleNames).Find(&roles).Error)

	u := models.User{
		Username:     username,
		PasswordHash: "x",
		Email:        username + "@example.com",
		FirstName:    "First",
		LastName:     username,
		Roles:        roles,
	}
	require.NoError(t, e.db.Create(&u).Error)
	return auth.Identity{UserID: u.ID, Username: u.Username, Roles: roleNames}
}

func (e *testEnv) createProduct(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

// putInCart writes a cart line directly, bypassing the add-to-cart stock check.
func (e *testEnv) putInCart(t *testing.T, id auth.Identity, p models.Product, qty int, price string) {
	t.Helper()
	cart, err := getOrCreateCart(e.db, id.UserID)
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&models.CartItem{
		CartID:          cart.ID,
		ProductID:       p.ID,
		Quantity:        qty,
		PriceAtAddition: decimal.RequireFromString(price),
	}).Error)
}

func (e *testEnv) stock(t *testing.T, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, "id = ?", productID).Error)
	return p.StockQuantity
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) cartItems(t *testing.T, id auth.Identity) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", id.UserID).Count(&n).Error)
	return n
}

func checkoutRequest(token string) PlaceOrderRequest {
	return PlaceOrderRequest{
		Street:             "1 Main St",
		City:               "Springfield",
		State:              "IL",
		PostalCode:         "62701",
		Country:            "US",
		PaymentMethod:      "credit_card",
		PaymentMethodToken: token,
	}
}
