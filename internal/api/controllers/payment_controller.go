package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cognipdf/internal/models/request_models"
	"cognipdf/internal/models/response_models"
	"cognipdf/internal/payments"
	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentServiceInterface
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentServiceInterface, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log.Named("payment.controller"),
	}
}

// CreatePayPalOrder godoc
// @Summary Create a PayPal order for a subscription plan
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateOrderRequest true "Create Order Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/paypal/create-order [post]
func (p *PaymentController) CreatePayPalOrder(c *gin.Context) {
	var request request_models.CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	orderID, err := p.paymentService.CreatePayPalOrder(c.Request.Context(), accountID, request.PlanID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.CreateOrderResponse{OrderID: orderID}, "Order created successfully")
}

// CapturePayPalOrder godoc
// @Summary Capture an approved PayPal order
// @Description Captures at the provider, verifies the result and activates the subscription
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CaptureOrderRequest true "Capture Order Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/paypal/capture-order [post]
func (p *PaymentController) CapturePayPalOrder(c *gin.Context) {
	var request request_models.CaptureOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := p.paymentService.CapturePayPalOrder(c.Request.Context(), accountID, request.OrderID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Payment captured and subscription activated")
}

// CreateStripePaymentIntent godoc
// @Summary Create a Stripe payment intent for a subscription plan
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentIntentRequest true "Create Payment Intent Request"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/stripe/create-payment-intent [post]
func (p *PaymentController) CreateStripePaymentIntent(c *gin.Context) {
	var request request_models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	clientSecret, err := p.paymentService.CreateStripePaymentIntent(c.Request.Context(), accountID, request.PlanID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.CreatePaymentIntentResponse{ClientSecret: clientSecret}, "Payment intent created")
}

// StripeWebhook acknowledges terminal rejections with 2xx so the provider
// stops retrying a delivery that can never succeed, and answers 5xx only for
// storage faults, which a retry can fix.
func (p *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = p.paymentService.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, payments.ErrSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
	case errors.Is(err, utils.ErrDatabaseError):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		// Verification rejects and malformed payloads are terminal; the
		// details were already logged at error severity downstream.
		p.log.Warn("stripe webhook rejected", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
