package response_models

import "cognipdf/internal/catalog"

type PlanOffer struct {
	ID             string `json:"id"` // plan-purchase identifier
	PlanName       string `json:"planName"`
	DurationMonths int    `json:"durationMonths"`
	PriceMinor     int64  `json:"priceMinor"`
	Currency       string `json:"currency"`

	Entitlements catalog.Entitlements `json:"entitlements"`
}
