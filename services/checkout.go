package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/database"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// checkoutAttempts bounds how often a checkout that lost a serialization
// race is re-run before its payment is charged.
const checkoutAttempts = 3

type CheckoutConfig struct {
	Currency        string
	MinorUnitDigits int32
	PaymentTimeout  time.Duration
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	uow     *database.UnitOfWork
	gateway payment.Gateway
	outbox  *notify.Outbox
	cfg     CheckoutConfig
}

func NewCheckoutService(uow *database.UnitOfWork, gateway payment.Gateway, outbox *notify.Outbox, cfg CheckoutConfig) *CheckoutService {
	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = 10 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &CheckoutService{uow: uow, gateway: gateway, outbox: outbox, cfg: cfg}
}

// PlaceOrder runs the whole checkout in one unit of work: stock is taken,
// the payment is charged and the order is written together, or not at all.
// A run that loses a serialization race before the charge is repeated, so
// it re-reads stock. A charge whose order is then not committed is voided.
// The confirmation is handed to the outbox only after the commit.
func (s *CheckoutService) PlaceOrder(ctx context.Context, id auth.Identity, req PlaceOrderRequest) (OrderResponse, error) {
	var (
		placed  models.Order
		row     *models.NotificationOutbox
		charged *payment.Result
		orderID string
	)

	err := s.uow.Retry(ctx, checkoutAttempts, func(tx *gorm.DB) error {
		charged = nil
		user, err := ensureUser(tx, id.UserID)
		if err != nil {
			return err
		}

		var cart models.Cart
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC") }).
			Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.BadRequest("no active cart found for user: %s", user.Username)
			}
			return apperror.Internal(err, "load cart for user %s", user.ID)
		}
		if len(cart.Items) == 0 {
			return apperror.BadRequest("cart is empty, cannot place an order")
		}

		// Validate every line before touching stock.
		products := make(map[string]models.Product, len(cart.Items))
		for _, item := range cart.Items {
			product, err := loadProduct(tx, item.ProductID)
			if err != nil {
				return err
			}
			if item.Quantity > product.StockQuantity {
				return insufficientStock(product)
			}
			products[product.ID] = product
		}

		orderID = uuid.NewString()
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, models.OrderItem{
				OrderID:         orderID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.PriceAtAddition,
			})
			total = total.Add(item.Subtotal())
		}

		for _, item := range cart.Items {
			ok, err := DecrementStock(tx, item.ProductID, item.Quantity)
			if err != nil {
				return apperror.Internal(err, "decrement stock for product %s", item.ProductID)
			}
			if !ok {
				return insufficientStock(products[item.ProductID])
			}
		}

		address := &models.Address{
			Street:      req.Street,
			City:        req.City,
			State:       req.State,
			PostalCode:  req.PostalCode,
			Country:     req.Country,
			AddressType: models.AddressTypeShippingOrder,
		}

		res, pay, status, err := s.charge(ctx, user, orderID, total, req)
		if err != nil {
			return err
		}
		charged = &res

		order := models.Order{
			ID:              orderID,
			UserID:          user.ID,
			OrderDate:       time.Now(),
			TotalAmount:     total,
			Status:          status,
			Items:           items,
			ShippingAddress: address,
			Payment:         pay,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperror.Internal(err, "save order")
		}

		if err := clearCart(tx, cart.ID); err != nil {
			return err
		}

		placed, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}

		row, err = s.outbox.Record(tx, toConfirmation(placed))
		if err != nil {
			return apperror.Internal(err, "record confirmation")
		}
		return nil
	}, func() bool { return charged == nil })
	if err != nil {
		if charged != nil {
			s.void(ctx, orderID, *charged)
		}
		return OrderResponse{}, err
	}

	log.Printf("🛒 Order %s placed by %s: total %s, status %s", placed.ID, placed.User.Username, placed.TotalAmount.StringFixed(2), placed.Status)

	// Committed. Delivery problems are retried by the outbox relay.
	if err := s.outbox.Deliver(ctx, row); err != nil {
		log.Printf("⚠️ Confirmation for order %s not delivered yet: %v", placed.ID, err)
	}

	return toOrderResponse(placed), nil
}

// void undoes a charge whose order was rolled back. It runs after the
// request may have been cancelled, so it gets its own deadline.
func (s *CheckoutService) void(ctx context.Context, orderID string, charged payment.Result) {
	voidCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PaymentTimeout)
	defer cancel()
	if err := s.gateway.Void(voidCtx, charged); err != nil {
		log.Printf("❌ Payment %s for rolled back order %s was not voided, refund it manually: %v", charged.TransactionID, orderID, err)
		return
	}
	log.Printf("↩️ Payment %s voided, order %s was not saved", charged.TransactionID, orderID)
}

// charge calls the gateway and maps the outcome to the payment and order
// states. Any outcome other than Succeeded or Pending aborts the checkout
// and returns an error; otherwise the gateway result is returned for void.
func (s *CheckoutService) charge(ctx context.Context, user models.User, orderID string, total decimal.Decimal, req PlaceOrderRequest) (payment.Result, *models.Payment, models.OrderStatus, error) {
	minor, err := payment.ToMinorUnits(total, s.cfg.MinorUnitDigits)
	if err != nil {
		return payment.Result{}, nil, "", apperror.Wrap(apperror.KindPaymentRequired, err, "invalid amount for payment: %s", total.String())
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	res, err := s.gateway.Charge(chargeCtx, payment.ChargeRequest{
		OrderID:     orderID,
		AmountMinor: minor,
		Amount:      total,
		Currency:    s.cfg.Currency,
		Method:      req.PaymentMethod,
		Token:       req.PaymentMethodToken,
		Description: "ShopSphere order " + orderID,
		Customer: payment.Customer{
			Name:       user.FullName(),
			Email:      user.Email,
			Phone:      user.PhoneNumber,
			Street:     req.Street,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
	})
	if err != nil {
		log.Printf("❌ Payment for order %s failed: %v", orderID, err)
		return payment.Result{}, nil, "", apperror.Wrap(apperror.KindPaymentRequired, err, "payment processing failed: %s", reasonOr(res.Reason, "gateway unavailable"))
	}

	txID := res.TransactionID
	if txID == "" {
		txID = "local_" + orderID
	}
	pay := &models.Payment{
		OrderID:       orderID,
		Amount:        total,
		PaymentMethod: strings.ToUpper(req.PaymentMethod),
		TransactionID: txID,
		ActionURL:     res.ActionURL,
		PaymentDate:   time.Now(),
	}

	switch res.Outcome {
	case payment.Succeeded:
		pay.Status = models.PaymentStatusCompleted
		return res, pay, models.OrderStatusProcessing, nil
	case payment.Pending:
		pay.Status = models.PaymentStatusPending
		return res, pay, models.OrderStatusPending, nil
	case payment.Declined:
		log.Printf("💳 Payment for order %s declined: %s", orderID, res.Reason)
		return payment.Result{}, nil, "", apperror.PaymentRequired("payment declined: %s", reasonOr(res.Reason, "card declined"))
	default:
		log.Printf("❌ Payment for order %s failed: %s", orderID, res.Reason)
		return payment.Result{}, nil, "", apperror.PaymentRequired("payment processing failed: %s", reasonOr(res.Reason, res.Outcome.String()))
	}
}

func insufficientStock(p models.Product) error {
	return apperror.BadRequest("insufficient stock for product: %s. Available: %d", p.Name, p.StockQuantity)
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

// loadOrder reads an order with everything OrderResponse and the
// confirmation need.
func loadOrder(db *gorm.DB, id string) (models.Order, error) {
	var o models.Order
	err := db.
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("ShippingAddress").
		Preload("Payment").
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return o, apperror.NotFound("order not found with id: %s", id)
		}
		return o, apperror.Internal(err, "load order %s", id)
	}
	return o, nil
}
