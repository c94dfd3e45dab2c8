package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"cognipdf/internal/catalog"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string // e.g. https://api-m.sandbox.paypal.com
	ReturnURL    string
	CancelURL    string
	BrandName    string
}

// Refresh the OAuth token this long before the provider-reported expiry.
const tokenExpiryBuffer = 10 * time.Minute

// PayPalClient talks to the PayPal Orders v2 REST API. The OAuth access
// token is a process-wide memoized value; concurrent callers needing a
// refresh share a single in-flight token request.
type PayPalClient struct {
	cfg   PayPalConfig
	httpc *http.Client
	log   *zap.Logger

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
	refresh        singleflight.Group
}

func NewPayPalClient(cfg PayPalConfig, log *zap.Logger) (*PayPalClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.APIBaseURL == "" {
		return nil, errors.New("missing PayPal credentials")
	}
	return &PayPalClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
		log:   log.Named("payments.paypal"),
	}, nil
}

func (c *PayPalClient) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiresAt.Add(-tokenExpiryBuffer)) {
		return c.token, true
	}
	return "", false
}

func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(); ok {
		return token, nil
	}

	v, err, _ := c.refresh.Do("token", func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		if token, ok := c.cachedToken(); ok {
			return token, nil
		}
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *PayPalClient) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal oauth: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int64  `json:"expires_in"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("paypal oauth: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		c.log.Error("paypal oauth failed",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", body.ErrorDescription))
		return "", fmt.Errorf("paypal oauth: status %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.token = body.AccessToken
	c.tokenExpiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	c.mu.Unlock()

	return body.AccessToken, nil
}

// AccountCustomID tags provider-side metadata with the purchasing account.
func AccountCustomID(accountID uuid.UUID) string {
	return "account_" + accountID.String()
}

// CreateOrder creates a CAPTURE-intent order carrying the plan-purchase id as
// reference and the account as custom id. No local state is written at this
// point.
func (c *PayPalClient) CreateOrder(ctx context.Context, accountID uuid.UUID, planPurchaseID string, purchase catalog.Purchase) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": planPurchaseID,
			"description":  fmt.Sprintf("%s Subscription - %s Plan", c.cfg.BrandName, purchase.PlanName),
			"custom_id":    AccountCustomID(accountID),
			"amount": map[string]string{
				"currency_code": purchase.Currency,
				"value":         FormatMinor(purchase.PriceMinor),
			},
		}},
		"application_context": map[string]string{
			"return_url":          c.cfg.ReturnURL,
			"cancel_url":          c.cfg.CancelURL,
			"brand_name":          c.cfg.BrandName,
			"user_action":         "PAY_NOW",
			"shipping_preference": "NO_SHIPPING",
		},
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, token, "/v2/checkout/orders", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("paypal order: empty order id")
	}
	return out.ID, nil
}

// CaptureResult is the provider's view of a captured order.
type CaptureResult struct {
	OrderID        string
	CaptureID      string
	Status         string
	PlanPurchaseID string
	CustomID       string
	AmountValue    string
	CurrencyCode   string
	Raw            []byte
}

func (r *CaptureResult) Completed() bool {
	return r.Status == "COMPLETED"
}

// TransactionID is the idempotency key: the capture id, or the order id when
// the provider omitted one.
func (r *CaptureResult) TransactionID() string {
	if r.CaptureID != "" {
		return r.CaptureID
	}
	return r.OrderID
}

func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.postRaw(ctx, token, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			CustomID    string `json:"custom_id"`
			Payments    struct {
				Captures []struct {
					ID       string `json:"id"`
					Status   string `json:"status"`
					CustomID string `json:"custom_id"`
					Amount   struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("paypal capture: %w", err)
	}
	if len(body.PurchaseUnits) == 0 || len(body.PurchaseUnits[0].Payments.Captures) == 0 {
		return nil, errors.New("paypal capture: no capture in response")
	}

	unit := body.PurchaseUnits[0]
	capture := unit.Payments.Captures[0]
	customID := capture.CustomID
	if customID == "" {
		customID = unit.CustomID
	}

	return &CaptureResult{
		OrderID:        orderID,
		CaptureID:      capture.ID,
		Status:         capture.Status,
		PlanPurchaseID: unit.ReferenceID,
		CustomID:       customID,
		AmountValue:    capture.Amount.Value,
		CurrencyCode:   capture.Amount.CurrencyCode,
		Raw:            raw,
	}, nil
}

func (c *PayPalClient) post(ctx context.Context, token, path string, payload, out interface{}) error {
	raw, err := c.postRaw(ctx, token, path, payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *PayPalClient) postRaw(ctx context.Context, token, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paypal %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("paypal request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, fmt.Errorf("paypal %s: status %d", path, resp.StatusCode)
	}
	return raw, nil
}
