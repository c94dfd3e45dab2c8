package response_models

import "cognipdf/internal/catalog"

// UsageStatusResponse mirrors the entitlement-check endpoint contract: limits
// serialize as a number or the explicit "unbounded" sentinel.
type UsageStatusResponse struct {
	UploadCount       int64         `json:"uploadCount"`
	UploadLimit       catalog.Limit `json:"limit"`
	ChatMessagesCount int64         `json:"chatMessagesCount"`
	ChatLimit         catalog.Limit `json:"chatLimit"`
	PlanName          string        `json:"planName"`
}

type IncrementUploadResponse struct {
	UploadCount       int64 `json:"uploadCount"`
	ChatMessagesCount int64 `json:"chatMessagesCount"`
}

type IncrementChatResponse struct {
	ChatMessagesCount int64         `json:"chatMessagesCount"`
	ChatLimit         catalog.Limit `json:"chatLimit"`
}
