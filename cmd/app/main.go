package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"cognipdf/cmd/fx/account_fx"
	"cognipdf/cmd/fx/catalog_fx"
	"cognipdf/cmd/fx/chat_fx"
	"cognipdf/cmd/fx/db_fx"
	"cognipdf/cmd/fx/logger_fx"
	"cognipdf/cmd/fx/mail_fx"
	"cognipdf/cmd/fx/memcache_fx"
	"cognipdf/cmd/fx/payment_fx"
	"cognipdf/cmd/fx/usage_fx"
	"cognipdf/internal/api/controllers"
	"cognipdf/internal/infra"
	"cognipdf/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := fx.New(
		logger_fx.Module,
		db_fx.Module,
		catalog_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		usage_fx.Module,
		payment_fx.Module,
		chat_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			infra.ClosePostgresql(db)
			return nil
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	usageController *controllers.UsageController,
	paymentController *controllers.PaymentController,
	chatController *controllers.ChatController,
	summaryController *controllers.SummaryController,
	contactController *controllers.ContactController,
	planController *controllers.PlanController,
) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r,
		accountController, usageController, paymentController,
		chatController, summaryController, contactController, planController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	usageController *controllers.UsageController,
	paymentController *controllers.PaymentController,
	chatController *controllers.ChatController,
	summaryController *controllers.SummaryController,
	contactController *controllers.ContactController,
	planController *controllers.PlanController) {

	api := r.Group("/api")

	accounts := api.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.POST("/verify-email", accountController.VerifyEmail)
	accounts.POST("/login", accountController.Login)
	accounts.GET("/profile", middleware.JWTAuthMiddleware(), accountController.Profile)

	limits := api.Group("/limits", middleware.JWTAuthMiddleware())
	limits.GET("/status", usageController.Status)
	limits.POST("/increment-upload", usageController.IncrementUpload)
	limits.POST("/increment-chat", usageController.IncrementChat)

	payments := api.Group("/payments")
	paypal := payments.Group("/paypal", middleware.JWTAuthMiddleware())
	paypal.POST("/create-order", paymentController.CreatePayPalOrder)
	paypal.POST("/capture-order", paymentController.CapturePayPalOrder)

	stripe := payments.Group("/stripe")
	stripe.POST("/create-payment-intent", middleware.JWTAuthMiddleware(), paymentController.CreateStripePaymentIntent)
	stripe.POST("/webhook", paymentController.StripeWebhook)

	api.POST("/chat/generate", middleware.JWTAuthMiddleware(), chatController.Generate)
	api.POST("/summary/generate", middleware.JWTAuthMiddleware(), summaryController.Generate)

	api.POST("/contact/send", contactController.Send)
	api.GET("/plans", planController.List)
}
