// Package notify delivers order confirmations to downstream consumers.
package notify

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type ConfirmationItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderConfirmation is the message placed on the order queue.
type OrderConfirmation struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Status      string             `json:"status"`
	Items       []ConfirmationItem `json:"items"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, conf OrderConfirmation) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, conf OrderConfirmation) error

func (f DispatcherFunc) Dispatch(ctx context.Context, conf OrderConfirmation) error {
	return f(ctx, conf)
}

// Multi sends to every dispatcher and reports all failures.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, conf OrderConfirmation) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, conf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
