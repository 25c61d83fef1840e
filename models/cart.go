package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `gorm:"type:varchar(36);uniqueIndex;not null"`         // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"` // Cascade delete items if cart is deleted
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CartItem struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	CartID          string          `gorm:"type:varchar(36);index;not null"`
	ProductID       string          `gorm:"type:varchar(36);index;not null"`
	Product         Product         `gorm:"foreignKey:ProductID"`
	Quantity        int             `gorm:"not null"`
	PriceAtAddition decimal.Decimal `gorm:"type:numeric(12,2);not null"` // price the customer was shown
	AddedAt         time.Time
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.AddedAt.IsZero() {
		i.AddedAt = time.Now()
	}
	return nil
}

// Subtotal is PriceAtAddition x Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.PriceAtAddition.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
