package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type TelrConfig struct {
	StoreID    int
	AuthKey    string
	APIURL     string
	TestMode   bool
	SuccessURL string
	FailureURL string
	CancelURL  string
}

// Telr creates hosted payment page orders. The customer pays on Telr's page,
// so a created order is Pending until the webhook settles it.
type Telr struct {
	cfg    TelrConfig
	client *http.Client
}

func NewTelr(cfg TelrConfig, client *http.Client) *Telr {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Telr{cfg: cfg, client: client}
}

type telrResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Message string `json:"message"`
		Note    string `json:"note"`
	} `json:"error,omitempty"`
}

func (t *Telr) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	test := 0
	if t.cfg.TestMode {
		test = 1
	}

	payload := map[string]interface{}{
		"method":  "create",
		"store":   t.cfg.StoreID,
		"authkey": t.cfg.AuthKey,
		"order": map[string]interface{}{
			"cartid":      req.OrderID,
			"test":        test,
			"amount":      req.Amount.StringFixed(2),
			"currency":    req.Currency,
			"description": req.Description,
		},
		"customer": map[string]interface{}{
			"name":  req.Customer.Name,
			"email": req.Customer.Email,
			"phone": req.Customer.Phone,
			"address": map[string]string{
				"line1":    req.Customer.Street,
				"city":     req.Customer.City,
				"region":   req.Customer.State,
				"country":  req.Customer.Country,
				"postcode": req.Customer.PostalCode,
			},
		},
		"return": map[string]string{
			"authorised": t.cfg.SuccessURL,
			"declined":   t.cfg.FailureURL,
			"cancelled":  t.cfg.CancelURL,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: GatewayError, Reason: err.Error()}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return Result{Outcome: GatewayError, Reason: err.Error()}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Result{Outcome: GatewayError, Reason: "failed to reach Telr"}, fmt.Errorf("telr request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return Result{Outcome: GatewayError, Reason: fmt.Sprintf("telr API error (%d)", resp.StatusCode)},
			fmt.Errorf("telr API error (%d): %s", resp.StatusCode, string(body))
	}

	var telrResp telrResponse
	if err := json.Unmarshal(body, &telrResp); err != nil {
		return Result{Outcome: GatewayError, Reason: "unreadable Telr response"}, fmt.Errorf("parse telr response: %w", err)
	}

	if telrResp.Error != nil {
		log.Printf("💳 Telr refused order %s: %s %s", req.OrderID, telrResp.Error.Message, telrResp.Error.Note)
		return Result{Outcome: Declined, Reason: telrResp.Error.Message}, nil
	}
	if telrResp.Order.URL == "" || telrResp.Order.Ref == "" {
		return Result{Outcome: GatewayError, Reason: "telr returned empty payment URL"}, nil
	}

	return Result{
		Outcome:       Pending,
		TransactionID: telrResp.Order.Ref,
		ActionURL:     telrResp.Order.URL,
	}, nil
}

// Void has nothing to call: a Telr order is only Pending, and its payment
// page URL never reached the customer, so the unpaid order just expires.
func (t *Telr) Void(_ context.Context, charged Result) error {
	log.Printf("💳 Abandoning Telr order %s", charged.TransactionID)
	return nil
}
