// Package payment charges customers through an external gateway.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Outcome int

const (
	Succeeded Outcome = iota
	Pending
	Declined
	GatewayError
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Pending:
		return "pending"
	case Declined:
		return "declined"
	default:
		return "gateway_error"
	}
}

type Customer struct {
	Name  string
	Email string
	Phone string

	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

type ChargeRequest struct {
	OrderID     string
	AmountMinor int64
	Amount      decimal.Decimal // AmountMinor expressed in major units, for gateways that want a string
	Currency    string
	Method      string
	Token       string
	Description string
	Customer    Customer
}

type Result struct {
	Outcome       Outcome
	TransactionID string
	Reason        string
	ActionURL     string // set when the customer must finish on the gateway's page
}

// Gateway is the external card-charge capability.
//
// Void undoes a Succeeded or Pending charge whose order could not be saved:
// a captured payment is refunded, an unfinished one is cancelled.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
	Void(ctx context.Context, charged Result) error
}

var ErrInexactAmount = errors.New("amount cannot be expressed exactly in minor units")

// ToMinorUnits converts a decimal amount to integer minor units without
// rounding. 10.005 with two digits is ErrInexactAmount, not 1000 or 1001.
func ToMinorUnits(amount decimal.Decimal, digits int32) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("negative amount %s: %w", amount, ErrInexactAmount)
	}
	scaled := amount.Shift(digits)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%s has more than %d decimal places: %w", amount, digits, ErrInexactAmount)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("%s overflows minor units: %w", amount, ErrInexactAmount)
	}
	return scaled.IntPart(), nil
}
