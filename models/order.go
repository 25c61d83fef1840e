package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"    // Order placed, payment not settled yet
	OrderStatusProcessing OrderStatus = "PROCESSING" // Paid, being prepared
	OrderStatusShipped    OrderStatus = "SHIPPED"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "DELIVERED"  // Customer received the items
	OrderStatusCancelled  OrderStatus = "CANCELLED"  // Cancelled before shipping
	OrderStatusRefunded   OrderStatus = "REFUNDED"   // Money returned to customer

	PaymentStatusPending    PaymentStatus = "PENDING"    // Waiting on the gateway or the customer
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"  // Charge captured
	PaymentStatusFailed     PaymentStatus = "FAILED"     // Charge declined or errored
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"   // Money returned to customer
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED" // Funds held, not captured
)

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
}

var paymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
	PaymentStatusRefunded, PaymentStatusAuthorized,
}

// ParseOrderStatus is case-insensitive. ok is false for unknown values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ParsePaymentStatus is case-insensitive. ok is false for unknown values.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, st := range paymentStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

const AddressTypeShippingOrder = "SHIPPING_ORDER"

type Address struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	UserID      *string `gorm:"type:varchar(36);index"` // nil for order snapshots
	Street      string
	City        string
	State       string
	PostalCode  string
	Country     string
	AddressType string `gorm:"type:varchar(32)"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Order struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)"`
	UserID            string          `gorm:"type:varchar(36);index;not null"`
	User              User            `gorm:"foreignKey:UserID"`
	OrderDate         time.Time       `gorm:"not null;index"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status            OrderStatus     `gorm:"type:varchar(20);default:'PENDING';index"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddressID string          `gorm:"type:varchar(36)"`
	ShippingAddress   *Address        `gorm:"foreignKey:ShippingAddressID"`
	Payment           *Payment        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	return nil
}

// OrderItem is a permanent record; it is never updated after creation.
type OrderItem struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `gorm:"type:varchar(36);index;not null"`
	ProductID       string          `gorm:"type:varchar(36);index;not null"`
	Product         Product         `gorm:"foreignKey:ProductID"`
	Quantity        int             `gorm:"not null"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID       string          `gorm:"type:varchar(36);uniqueIndex;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(32)"` // CREDIT_CARD, PAYPAL
	TransactionID string          `gorm:"type:varchar(128);uniqueIndex"`
	Status        PaymentStatus   `gorm:"type:varchar(20);default:'PENDING'"`
	ActionURL     string          // hosted payment page when the customer still has to act
	PaymentDate   time.Time
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}
	return nil
}
