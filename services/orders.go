package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"gorm.io/gorm"
)

// allowedTransitions is enforced only in strict mode.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled, models.OrderStatusRefunded},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusRefunded},
}

var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

func canTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	db     *gorm.DB
	strict bool
}

func NewOrderService(db *gorm.DB, strictTransitions bool) *OrderService {
	return &OrderService{db: db, strict: strictTransitions}
}

func orderQuery(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("ShippingAddress").
		Preload("Payment").
		Order("order_date DESC, id ASC")
}

func (s *OrderService) GetUserOrders(ctx context.Context, id auth.Identity) ([]OrderResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := ensureUser(db, id.UserID); err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := orderQuery(db).Where("user_id = ?", id.UserID).Find(&orders).Error; err != nil {
		return nil, apperror.Internal(err, "list orders for user %s", id.UserID)
	}
	return toOrderResponses(orders), nil
}

// GetOrder returns the order if the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, id auth.Identity, orderID string) (OrderResponse, error) {
	order, err := loadOrder(s.db.WithContext(ctx), orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	if order.UserID != id.UserID && !id.IsAdmin() {
		return OrderResponse{}, apperror.Forbidden("you are not allowed to view this order")
	}
	return toOrderResponse(order), nil
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]OrderResponse, error) {
	var orders []models.Order
	if err := orderQuery(s.db.WithContext(ctx)).Find(&orders).Error; err != nil {
		return nil, apperror.Internal(err, "list orders")
	}
	return toOrderResponses(orders), nil
}

// UpdateOrderStatus has no inventory or payment side effects.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (OrderResponse, error) {
	var updated models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order not found with id: %s", orderID)
			}
			return apperror.Internal(err, "load order %s", orderID)
		}

		if strings.TrimSpace(status) == "" {
			return apperror.BadRequest("status is required")
		}
		next, ok := models.ParseOrderStatus(status)
		if !ok {
			return apperror.BadRequest("invalid order status: %s", status)
		}

		if s.strict && !canTransition(order.Status, next) {
			return apperror.BadRequest("order %s cannot move from %s to %s", orderID, order.Status, next)
		}
		from, fromOK := statusRank[order.Status]
		to, toOK := statusRank[next]
		if fromOK && toOK && to < from {
			log.Printf("⚠️ Order %s moved backwards from %s to %s", orderID, order.Status, next)
		}

		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return apperror.Internal(err, "update order %s", orderID)
		}
		var err error
		updated, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(updated), nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID, status string) (OrderResponse, error) {
	db := s.db.WithContext(ctx)
	order, err := loadOrder(db, orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	next, ok := models.ParsePaymentStatus(status)
	if !ok {
		return OrderResponse{}, apperror.BadRequest("invalid payment status: %s", status)
	}
	if order.Payment == nil {
		return OrderResponse{}, apperror.NotFound("order %s has no payment", orderID)
	}
	if err := db.Model(order.Payment).Update("status", next).Error; err != nil {
		return OrderResponse{}, apperror.Internal(err, "update payment for order %s", orderID)
	}
	order.Payment.Status = next
	return toOrderResponse(order), nil
}

// SettleHostedPayment applies a gateway callback to a pending payment.
// gatewayRef must equal the payment's transaction id. An approved payment
// completes and moves a PENDING order to PROCESSING. Repeated callbacks for
// a settled payment are ignored.
func (s *OrderService) SettleHostedPayment(ctx context.Context, orderID, gatewayRef string, approved bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pay models.Payment
		if err := tx.Where("order_id = ?", orderID).First(&pay).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("no payment for order: %s", orderID)
			}
			return apperror.Internal(err, "load payment for order %s", orderID)
		}
		// The callback must name the gateway order this payment was created with.
		if gatewayRef == "" || pay.TransactionID != gatewayRef {
			log.Printf("⚠️ Payment callback for order %s carries unknown ref %q", orderID, gatewayRef)
			return apperror.BadRequest("payment reference does not match order: %s", orderID)
		}
		if pay.Status == models.PaymentStatusCompleted || pay.Status == models.PaymentStatusRefunded {
			log.Printf("ℹ️ Payment for order %s already %s, ignoring callback", orderID, pay.Status)
			return nil
		}

		if !approved {
			log.Printf("💳 Hosted payment for order %s not approved (ref %s)", orderID, gatewayRef)
			return tx.Model(&pay).Update("status", models.PaymentStatusFailed).Error
		}

		if err := tx.Model(&pay).Update("status", models.PaymentStatusCompleted).Error; err != nil {
			return apperror.Internal(err, "complete payment for order %s", orderID)
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusProcessing).Error; err != nil {
			return apperror.Internal(err, "advance order %s", orderID)
		}
		log.Printf("✅ Hosted payment for order %s approved (ref %s)", orderID, gatewayRef)
		return nil
	})
}
