package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"cognipdf/internal/models/db_models"
)

const testWebhookSecret = "whsec_test"

func newTestStripeGateway(t *testing.T) *StripeGateway {
	t.Helper()
	gateway, err := NewStripeGateway(StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return gateway
}

func signStripePayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func succeededIntentPayload(accountID uuid.UUID) []byte {
	return fmt.Appendf(nil, `{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_42",
			"object": "payment_intent",
			"amount": 900,
			"currency": "usd",
			"metadata": {"account_id": %q, "plan_purchase_id": "pro_monthly"}
		}}
	}`, stripe.APIVersion, accountID)
}

func TestParseWebhookSucceededIntent(t *testing.T) {
	gateway := newTestStripeGateway(t)
	accountID := uuid.New()
	payload := succeededIntentPayload(accountID)
	header := signStripePayload(payload, testWebhookSecret, time.Now())

	evt, err := gateway.ParseWebhook(payload, header)
	if err != nil {
		t.Fatalf("parse webhook: %v", err)
	}
	if evt == nil {
		t.Fatal("expected a confirmed event")
	}

	if evt.AccountID != accountID {
		t.Fatalf("unexpected account %s", evt.AccountID)
	}
	if evt.TransactionID != "pi_42" {
		t.Fatalf("transaction id should be the intent id, got %q", evt.TransactionID)
	}
	if evt.AmountMinor != 900 || evt.Currency != "USD" {
		t.Fatalf("unexpected amount %d %s", evt.AmountMinor, evt.Currency)
	}
	if evt.PlanPurchaseID != "pro_monthly" {
		t.Fatalf("unexpected plan purchase id %q", evt.PlanPurchaseID)
	}
	if evt.Processor != db_models.ProcessorStripe || evt.Channel != db_models.ChannelWebhook {
		t.Fatalf("unexpected provenance: %s/%s", evt.Processor, evt.Channel)
	}
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	gateway := newTestStripeGateway(t)
	payload := succeededIntentPayload(uuid.New())
	header := signStripePayload(payload, "whsec_other", time.Now())

	if _, err := gateway.ParseWebhook(payload, header); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestParseWebhookRejectsStaleTimestamp(t *testing.T) {
	gateway := newTestStripeGateway(t)
	payload := succeededIntentPayload(uuid.New())
	header := signStripePayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	if _, err := gateway.ParseWebhook(payload, header); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature for stale timestamp, got %v", err)
	}
}

func TestParseWebhookIgnoresOtherEventTypes(t *testing.T) {
	gateway := newTestStripeGateway(t)
	payload := fmt.Appendf(nil, `{
		"id": "evt_2",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_43", "object": "payment_intent"}}
	}`, stripe.APIVersion)
	header := signStripePayload(payload, testWebhookSecret, time.Now())

	evt, err := gateway.ParseWebhook(payload, header)
	if err != nil {
		t.Fatalf("parse webhook: %v", err)
	}
	if evt != nil {
		t.Fatalf("other event types must be ignored, got %+v", evt)
	}
}

func TestParseWebhookRejectsBadAccountMetadata(t *testing.T) {
	gateway := newTestStripeGateway(t)
	payload := fmt.Appendf(nil, `{
		"id": "evt_3",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_44",
			"object": "payment_intent",
			"amount": 900,
			"currency": "usd",
			"metadata": {"account_id": "not-a-uuid", "plan_purchase_id": "pro_monthly"}
		}}
	}`, stripe.APIVersion)
	header := signStripePayload(payload, testWebhookSecret, time.Now())

	if _, err := gateway.ParseWebhook(payload, header); err == nil {
		t.Fatal("expected error for unparseable account metadata")
	}
}
