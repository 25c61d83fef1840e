package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe creates and confirms a PaymentIntent in one call.
type Stripe struct {
	sc *client.API
}

func NewStripe(secretKey string) *Stripe {
	return &Stripe{sc: client.New(secretKey, nil)}
}

// NewStripeWithBackends points the client at custom backends (stripe-mock, tests).
func NewStripeWithBackends(secretKey string, backends *stripe.Backends) *Stripe {
	return &Stripe{sc: client.New(secretKey, backends)}
}

func (s *Stripe) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		PaymentMethod:      stripe.String(req.Token),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String(req.Description),
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.SetIdempotencyKey("order-" + req.OrderID)

	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return classifyStripeError(err), nil
	}
	return stripeResult(pi), nil
}

func (s *Stripe) Void(ctx context.Context, charged Result) error {
	if charged.TransactionID == "" {
		return errors.New("stripe void: no payment intent id")
	}
	if charged.Outcome == Succeeded {
		params := &stripe.RefundParams{PaymentIntent: stripe.String(charged.TransactionID)}
		params.Context = ctx
		params.SetIdempotencyKey("void-" + charged.TransactionID)
		if _, err := s.sc.Refunds.New(params); err != nil {
			return fmt.Errorf("stripe refund %s: %w", charged.TransactionID, err)
		}
		return nil
	}

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := s.sc.PaymentIntents.Cancel(charged.TransactionID, params); err != nil {
		return fmt.Errorf("stripe cancel %s: %w", charged.TransactionID, err)
	}
	return nil
}

func stripeResult(pi *stripe.PaymentIntent) Result {
	res := Result{TransactionID: pi.ID, Reason: string(pi.Status)}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		res.Outcome = Succeeded
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresPaymentMethod:
		res.Outcome = Pending
		if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
			res.ActionURL = pi.NextAction.RedirectToURL.URL
		}
	default:
		res.Outcome = Declined
	}
	return res
}

func classifyStripeError(err error) Result {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.Type == stripe.ErrorTypeCard {
			return Result{Outcome: Declined, Reason: se.Msg}
		}
		return Result{Outcome: GatewayError, Reason: se.Msg}
	}
	return Result{Outcome: GatewayError, Reason: err.Error()}
}
