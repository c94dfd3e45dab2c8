package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cognipdf/internal/catalog"
	"cognipdf/internal/models/db_models"
	"cognipdf/internal/payments"
	"cognipdf/pkg/utils"
)

// PaymentServiceInterface is the HTTP-facing edge of the two payment
// channels. PayPal confirms synchronously on capture; Stripe confirms
// asynchronously through its webhook. Both funnel into the reconciliation
// service.
type PaymentServiceInterface interface {
	CreatePayPalOrder(ctx context.Context, accountID uuid.UUID, planPurchaseID string) (string, error)
	CapturePayPalOrder(ctx context.Context, accountID uuid.UUID, orderID string) error
	CreateStripePaymentIntent(ctx context.Context, accountID uuid.UUID, planPurchaseID string) (string, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type PaymentService struct {
	paypal         *payments.PayPalClient
	stripe         *payments.StripeGateway
	reconciliation ReconciliationServiceInterface
	plans          *catalog.Catalog
	log            *zap.Logger
}

func NewPaymentService(
	paypal *payments.PayPalClient,
	stripe *payments.StripeGateway,
	reconciliation ReconciliationServiceInterface,
	plans *catalog.Catalog,
	log *zap.Logger,
) PaymentServiceInterface {
	return &PaymentService{
		paypal:         paypal,
		stripe:         stripe,
		reconciliation: reconciliation,
		plans:          plans,
		log:            log.Named("payment.service"),
	}
}

func (s *PaymentService) CreatePayPalOrder(ctx context.Context, accountID uuid.UUID, planPurchaseID string) (string, error) {
	purchase, err := s.plans.Purchase(planPurchaseID)
	if err != nil {
		return "", err
	}

	orderID, err := s.paypal.CreateOrder(ctx, accountID, planPurchaseID, purchase)
	if err != nil {
		s.log.Error("paypal order creation failed",
			zap.String("account_id", accountID.String()),
			zap.String("plan_purchase_id", planPurchaseID),
			zap.Error(err))
		return "", utils.ErrPaymentVerification
	}
	return orderID, nil
}

// CapturePayPalOrder captures the order at the provider and applies the
// result. The provider response, not the capture request, is the source of
// truth for who paid, for what, and how much.
func (s *PaymentService) CapturePayPalOrder(ctx context.Context, accountID uuid.UUID, orderID string) error {
	result, err := s.paypal.CaptureOrder(ctx, orderID)
	if err != nil {
		s.log.Error("paypal capture failed",
			zap.String("account_id", accountID.String()),
			zap.String("order_id", orderID),
			zap.Error(err))
		return utils.ErrPaymentVerification
	}

	if !result.Completed() {
		s.log.Error("paypal capture not completed",
			zap.String("account_id", accountID.String()),
			zap.String("order_id", orderID),
			zap.String("status", result.Status))
		return utils.ErrPaymentVerification
	}

	// The order was created with our custom id; a mismatch means this
	// order belongs to another account.
	if result.CustomID != payments.AccountCustomID(accountID) {
		s.log.Error("paypal capture account mismatch",
			zap.String("account_id", accountID.String()),
			zap.String("order_id", orderID),
			zap.String("custom_id", result.CustomID))
		return utils.ErrPaymentVerification
	}

	amountMinor, err := payments.MinorUnits(result.AmountValue)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPaymentVerification, err)
	}

	return s.reconciliation.Apply(ctx, payments.ConfirmedEvent{
		AccountID:      accountID,
		PlanPurchaseID: result.PlanPurchaseID,
		TransactionID:  result.TransactionID(),
		AmountMinor:    amountMinor,
		Currency:       result.CurrencyCode,
		Processor:      db_models.ProcessorPayPal,
		Channel:        db_models.ChannelCapture,
		Receipt:        result.Raw,
	})
}

func (s *PaymentService) CreateStripePaymentIntent(ctx context.Context, accountID uuid.UUID, planPurchaseID string) (string, error) {
	purchase, err := s.plans.Purchase(planPurchaseID)
	if err != nil {
		return "", err
	}

	clientSecret, err := s.stripe.CreatePaymentIntent(ctx, accountID, planPurchaseID, purchase)
	if err != nil {
		s.log.Error("stripe payment intent creation failed",
			zap.String("account_id", accountID.String()),
			zap.String("plan_purchase_id", planPurchaseID),
			zap.Error(err))
		return "", utils.ErrPaymentVerification
	}
	return clientSecret, nil
}

// HandleStripeWebhook verifies and applies one webhook delivery. Signature
// failures surface as payments.ErrSignature so the transport layer can reject
// with 400; everything else follows the reconciliation service's error
// contract.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	evt, err := s.stripe.ParseWebhook(payload, signatureHeader)
	if err != nil {
		return err
	}
	if evt == nil {
		// Unhandled event type; acknowledge and move on.
		return nil
	}
	return s.reconciliation.Apply(ctx, *evt)
}
