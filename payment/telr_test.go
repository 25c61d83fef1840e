package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTelrServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func telrRequest() ChargeRequest {
	return ChargeRequest{
		OrderID:     "order-1",
		AmountMinor: 2000,
		Amount:      decimal.RequireFromString("20"),
		Currency:    "AED",
		Description: "Order order-1",
		Customer:    Customer{Name: "Jane Doe", Email: "jane@example.com", City: "Dubai"},
	}
}

func TestTelrCreatedOrderIsPending(t *testing.T) {
	srv := newTelrServer(t, func(w http.ResponseWriter, body map[string]interface{}) {
		order := body["order"].(map[string]interface{})
		assert.Equal(t, "create", body["method"])
		assert.Equal(t, "order-1", order["cartid"])
		assert.Equal(t, "20.00", order["amount"])
		assert.Equal(t, float64(1), order["test"])
		_, _ = w.Write([]byte(`{"order":{"ref":"TELR123","url":"https://secure.telr.com/gateway/process.html?o=TELR123"}}`))
	})

	gw := NewTelr(TelrConfig{StoreID: 1, AuthKey: "k", APIURL: srv.URL, TestMode: true}, nil)
	res, err := gw.Charge(context.Background(), telrRequest())
	require.NoError(t, err)
	assert.Equal(t, Pending, res.Outcome)
	assert.Equal(t, "TELR123", res.TransactionID)
	assert.Contains(t, res.ActionURL, "TELR123")
}

func TestTelrErrorObjectIsDecline(t *testing.T) {
	srv := newTelrServer(t, func(w http.ResponseWriter, _ map[string]interface{}) {
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid request","note":"E01"}}`))
	})

	res, err := NewTelr(TelrConfig{APIURL: srv.URL}, nil).Charge(context.Background(), telrRequest())
	require.NoError(t, err)
	assert.Equal(t, Declined, res.Outcome)
	assert.Equal(t, "Invalid request", res.Reason)
}

func TestTelrHTTPFailureIsGatewayError(t *testing.T) {
	srv := newTelrServer(t, func(w http.ResponseWriter, _ map[string]interface{}) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res, err := NewTelr(TelrConfig{APIURL: srv.URL}, nil).Charge(context.Background(), telrRequest())
	require.Error(t, err)
	assert.Equal(t, GatewayError, res.Outcome)
}

func TestTelrTimeoutIsGatewayError(t *testing.T) {
	srv := newTelrServer(t, func(w http.ResponseWriter, _ map[string]interface{}) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := NewTelr(TelrConfig{APIURL: srv.URL}, nil).Charge(ctx, telrRequest())
	require.Error(t, err)
	assert.Equal(t, GatewayError, res.Outcome)
}
