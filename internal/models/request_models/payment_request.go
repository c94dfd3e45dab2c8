package request_models

type CreateOrderRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type CreatePaymentIntentRequest struct {
	PlanID string `json:"planId" binding:"required"`
}
