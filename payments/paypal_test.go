package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePayPal(t *testing.T, status, value, currency string) (*httptest.Server, *int) {
	t.Helper()
	captures := 0
	order := func(s string) map[string]interface{} {
		return map[string]interface{}{
			"id":     "ORDER-1",
			"status": s,
			"purchase_units": []map[string]interface{}{
				{"amount": map[string]string{"currency_code": currency, "value": value}},
			},
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(order(status))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		captures++
		_ = json.NewEncoder(w).Encode(order("COMPLETED"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &captures
}

func TestPayPalVerifyCompletedOrder(t *testing.T) {
	srv, captures := fakePayPal(t, "COMPLETED", "50.00", "USD")
	client := NewPayPalClient(srv.URL, "id", "secret")

	v, err := client.Verify(context.Background(), "ORDER-1", 50, "usd")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", v.Reference)
	assert.Equal(t, 50.0, v.Amount)
	assert.Equal(t, "USD", v.Currency)
	assert.Zero(t, *captures)
}

func TestPayPalVerifyCapturesApprovedOrder(t *testing.T) {
	srv, captures := fakePayPal(t, "APPROVED", "9.99", "USD")
	client := NewPayPalClient(srv.URL, "id", "secret")

	v, err := client.Verify(context.Background(), "ORDER-1", 9.99, "USD")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", v.Status)
	assert.Equal(t, 1, *captures)
}

func TestPayPalVerifyFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		value   string
		amount  float64
		wantErr error
	}{
		{"not paid", "CREATED", "50.00", 50, ErrPaymentNotCompleted},
		{"underpaid", "COMPLETED", "10.00", 50, ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakePayPal(t, tt.status, tt.value, "USD")
			client := NewPayPalClient(srv.URL, "id", "secret")

			_, err := client.Verify(context.Background(), "ORDER-1", tt.amount, "USD")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPayPalBadCredentials(t *testing.T) {
	srv, _ := fakePayPal(t, "COMPLETED", "50.00", "USD")
	client := NewPayPalClient(srv.URL, "id", "wrong")

	_, err := client.Verify(context.Background(), "ORDER-1", 50, "USD")
	assert.Error(t, err)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(999), toMinorUnits(9.99))
	assert.Equal(t, int64(8999), toMinorUnits(89.99))
	assert.True(t, amountsMatch(84.995, 84.99+0.004))
}
