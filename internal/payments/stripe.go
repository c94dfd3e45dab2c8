package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"cognipdf/internal/catalog"
	"cognipdf/internal/models/db_models"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// ErrSignature is returned before any parsing when the webhook signature
// header does not verify.
var ErrSignature = errors.New("invalid webhook signature")

// StripeGateway creates payment intents and turns verified webhook events
// into the shared confirmed-payment event.
type StripeGateway struct {
	cfg StripeConfig
	log *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, log *zap.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		return nil, errors.New("missing Stripe credentials")
	}
	stripe.Key = cfg.SecretKey
	return &StripeGateway{
		cfg: cfg,
		log: log.Named("payments.stripe"),
	}, nil
}

// CreatePaymentIntent opens a purchase attempt tagged with the account and
// plan-purchase id; fulfillment happens only through the webhook.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, accountID uuid.UUID, planPurchaseID string, purchase catalog.Purchase) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(purchase.PriceMinor),
		Currency: stripe.String(strings.ToLower(purchase.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("account_id", accountID.String())
	params.AddMetadata("plan_purchase_id", planPurchaseID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}

// ParseWebhook verifies the signature over the raw body, then extracts a
// confirmed event from payment_intent.succeeded. Other event types return
// (nil, nil): acknowledged but ignored.
func (g *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*ConfirmedEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	if event.Type != "payment_intent.succeeded" {
		g.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe webhook payload: %w", err)
	}

	accountID, err := uuid.Parse(pi.Metadata["account_id"])
	if err != nil {
		return nil, fmt.Errorf("stripe webhook: bad account metadata %q", pi.Metadata["account_id"])
	}

	return &ConfirmedEvent{
		AccountID:      accountID,
		PlanPurchaseID: pi.Metadata["plan_purchase_id"],
		TransactionID:  pi.ID,
		AmountMinor:    pi.Amount,
		Currency:       strings.ToUpper(string(pi.Currency)),
		Processor:      db_models.ProcessorStripe,
		Channel:        db_models.ChannelWebhook,
		Receipt:        payload,
	}, nil
}
