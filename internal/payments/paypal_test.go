package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestPayPalClient(t *testing.T, baseURL string) *PayPalClient {
	t.Helper()
	client, err := NewPayPalClient(PayPalConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		APIBaseURL:   baseURL,
		ReturnURL:    "https://app.example.com/return",
		CancelURL:    "https://app.example.com/cancel",
		BrandName:    "CogniPDF",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestAccessTokenSingleFlight(t *testing.T) {
	var tokenRequests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/oauth2/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		n := atomic.AddInt64(&tokenRequests, 1)
		fmt.Fprintf(w, `{"access_token":"tok_%d","expires_in":3600}`, n)
	}))
	defer srv.Close()

	client := newTestPayPalClient(t, srv.URL)
	ctx := context.Background()

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := client.accessToken(ctx)
			if err != nil {
				t.Errorf("access token: %v", err)
				return
			}
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt64(&tokenRequests); got != 1 {
		t.Fatalf("expected a single token fetch, got %d", got)
	}
	for i, token := range tokens {
		if token != "tok_1" {
			t.Fatalf("caller %d got %q, want shared token", i, token)
		}
	}

	// A later caller reuses the cached token without touching the network.
	if _, err := client.accessToken(ctx); err != nil {
		t.Fatalf("cached access token: %v", err)
	}
	if got := atomic.LoadInt64(&tokenRequests); got != 1 {
		t.Fatalf("cached token should not refetch, got %d requests", got)
	}
}

func TestAccessTokenRefreshesInsideExpiryBuffer(t *testing.T) {
	var tokenRequests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenRequests, 1)
		// Expires sooner than the safety margin, so it is never cached.
		fmt.Fprint(w, `{"access_token":"short","expires_in":60}`)
	}))
	defer srv.Close()

	client := newTestPayPalClient(t, srv.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.accessToken(ctx); err != nil {
			t.Fatalf("access token %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt64(&tokenRequests); got != 2 {
		t.Fatalf("token inside the expiry buffer must refetch, got %d requests", got)
	}
}

func TestCaptureOrderParsesProviderResponse(t *testing.T) {
	accountID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
		case "/v2/checkout/orders/ORDER-1/capture":
			fmt.Fprintf(w, `{
				"id": "ORDER-1",
				"status": "COMPLETED",
				"purchase_units": [{
					"reference_id": "pro_monthly",
					"payments": {"captures": [{
						"id": "CAP-9",
						"status": "COMPLETED",
						"custom_id": "account_%s",
						"amount": {"currency_code": "USD", "value": "9.00"}
					}]}
				}]
			}`, accountID)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestPayPalClient(t, srv.URL)
	result, err := client.CaptureOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if !result.Completed() {
		t.Fatalf("capture should be completed, status %q", result.Status)
	}
	if result.TransactionID() != "CAP-9" {
		t.Fatalf("transaction id should be the capture id, got %q", result.TransactionID())
	}
	if result.PlanPurchaseID != "pro_monthly" {
		t.Fatalf("unexpected plan purchase id %q", result.PlanPurchaseID)
	}
	if result.CustomID != AccountCustomID(accountID) {
		t.Fatalf("unexpected custom id %q", result.CustomID)
	}

	amount, err := MinorUnits(result.AmountValue)
	if err != nil {
		t.Fatalf("minor units: %v", err)
	}
	if amount != 900 || result.CurrencyCode != "USD" {
		t.Fatalf("unexpected amount %d %s", amount, result.CurrencyCode)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "9.00", want: 900},
		{in: "13.00", want: 1300},
		{in: "0.50", want: 50},
		{in: "7", want: 700},
		{in: "7.5", want: 750},
		{in: "130.001", wantErr: true},
		{in: "", wantErr: true},
		{in: "-1.00", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := MinorUnits(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("MinorUnits(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("MinorUnits(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MinorUnits(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(900); got != "9.00" {
		t.Fatalf("FormatMinor(900) = %q", got)
	}
	if got := FormatMinor(1305); got != "13.05" {
		t.Fatalf("FormatMinor(1305) = %q", got)
	}
}
