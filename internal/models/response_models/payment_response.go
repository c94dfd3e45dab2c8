package response_models

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
