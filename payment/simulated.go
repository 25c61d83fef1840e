package payment

import (
	"context"

	"github.com/google/uuid"
)

// Tokens recognised by Simulated. Any other token is charged successfully.
const (
	TokenDeclined = "tok_declined"
	TokenPending  = "tok_pending"
	TokenError    = "tok_error"
)

// Simulated is the development gateway. It never leaves the process.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

func (s *Simulated) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Outcome: GatewayError, Reason: err.Error()}, err
	}

	txID := "sim_" + uuid.NewString()
	switch req.Token {
	case TokenDeclined:
		return Result{Outcome: Declined, TransactionID: txID, Reason: "card declined"}, nil
	case TokenPending:
		return Result{Outcome: Pending, TransactionID: txID, Reason: "requires_action"}, nil
	case TokenError:
		return Result{Outcome: GatewayError, Reason: "simulated gateway failure"}, nil
	}
	return Result{Outcome: Succeeded, TransactionID: txID}, nil
}

func (s *Simulated) Void(ctx context.Context, _ Result) error { return ctx.Err() }
