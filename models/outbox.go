package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxStatus string

const (
	OutboxStatusPending      OutboxStatus = "PENDING"
	OutboxStatusDelivered    OutboxStatus = "DELIVERED"
	OutboxStatusDeadLettered OutboxStatus = "DEAD_LETTERED"
)

// NotificationOutbox holds one order confirmation that still has to reach
// (or already reached) the notification channel.
type NotificationOutbox struct {
	ID            string       `gorm:"primaryKey;type:varchar(36)"`
	OrderID       string       `gorm:"type:varchar(36);index;not null"`
	Payload       string       `gorm:"type:text;not null"`
	Status        OutboxStatus `gorm:"type:varchar(20);index;not null"`
	Attempts      int          `gorm:"not null;default:0"`
	NextAttemptAt time.Time    `gorm:"index"`
	LastError     string       `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }

func (n *NotificationOutbox) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
