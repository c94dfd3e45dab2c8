package payment_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cognipdf/internal/api/controllers"
	"cognipdf/internal/catalog"
	"cognipdf/internal/payments"
	"cognipdf/internal/services"
)

var Module = fx.Provide(
	providePayPalClient, provideStripeGateway,
	provideReconciliationService, providePaymentService, providePaymentController,
)

func providePayPalClient(logger *zap.Logger) *payments.PayPalClient {
	cfg := payments.PayPalConfig{
		ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		APIBaseURL:   os.Getenv("PAYPAL_API_BASE_URL"), // https://api-m.sandbox.paypal.com for sandbox
		ReturnURL:    os.Getenv("PAYPAL_RETURN_URL"),
		CancelURL:    os.Getenv("PAYPAL_CANCEL_URL"),
		BrandName:    "CogniPDF",
	}

	client, err := payments.NewPayPalClient(cfg, logger)
	if err != nil {
		log.Fatalf("Error initializing PayPal client: %v", err)
	}
	return client
}

func provideStripeGateway(logger *zap.Logger) *payments.StripeGateway {
	cfg := payments.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}

	gateway, err := payments.NewStripeGateway(cfg, logger)
	if err != nil {
		log.Fatalf("Error initializing Stripe gateway: %v", err)
	}
	return gateway
}

func provideReconciliationService(db *gorm.DB, plans *catalog.Catalog, logger *zap.Logger) services.ReconciliationServiceInterface {
	return services.NewReconciliationService(db, plans, logger)
}

func providePaymentService(
	paypal *payments.PayPalClient,
	stripe *payments.StripeGateway,
	reconciliation services.ReconciliationServiceInterface,
	plans *catalog.Catalog,
	logger *zap.Logger,
) services.PaymentServiceInterface {
	return services.NewPaymentService(paypal, stripe, reconciliation, plans, logger)
}

func providePaymentController(paymentService services.PaymentServiceInterface, logger *zap.Logger) *controllers.PaymentController {
	return controllers.NewPaymentController(paymentService, logger)
}
