package payments

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

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"10":     1000,
		"38.5":   3850,
		"29.99":  2999,
		"0.005":  1,
		"0.004":  0,
		"159.00": 15900,
	}
	for in, want := range cases {
		assert.Equal(t, want, MinorUnits(decimal.RequireFromString(in)), in)
	}
}

func TestStubRedirectsToSuccess(t *testing.T) {
	s, err := Stub{}.CreateSession(context.Background(), SessionRequest{SuccessURL: "http://shop/checkout/success?order_id=o1"})
	require.NoError(t, err)
	assert.Equal(t, "http://shop/checkout/success?order_id=o1", s.URL)
	assert.Contains(t, s.ID, "stub_")
}

func TestHTTPGatewayCreateSession(t *testing.T) {
	var got SessionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_123","url":"https://pay.test/cs_123"}`))
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test", 2*time.Second)
	s, err := g.CreateSession(context.Background(), SessionRequest{
		Currency:  "myr",
		Mode:      "payment",
		LineItems: []LineItem{{Name: "Arabica", UnitAmount: 3850, Quantity: 2}},
		Metadata:  map[string]string{"order_id": "o1", "user_id": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, Session{ID: "cs_123", URL: "https://pay.test/cs_123"}, s)
	assert.Equal(t, "Bearer sk_test", auth)
	assert.Equal(t, "o1", got.Metadata["order_id"])
	require.Len(t, got.LineItems, 1)
	assert.EqualValues(t, 3850, got.LineItems[0].UnitAmount)
}

func TestHTTPGatewayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, "nope", time.Second).CreateSession(context.Background(), SessionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewHTTPGateway(srv.URL, "", time.Second).CreateSession(ctx, SessionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
