package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Which notification path delivered the confirmation.
type PaymentChannel string

const (
	ChannelCapture PaymentChannel = "capture"
	ChannelWebhook PaymentChannel = "webhook"
)

// PaymentEvent records one applied provider transaction. The unique index on
// (processor, provider_txn_id) is the idempotency guard: at-least-once
// delivery across both channels collapses to a single row, and therefore a
// single subscription grant.
type PaymentEvent struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;index"`

	Processor     PaymentProcessor `gorm:"uniqueIndex:idx_payment_events_txn"`
	ProviderTxnID string           `gorm:"uniqueIndex:idx_payment_events_txn"`
	Channel       PaymentChannel

	PlanPurchaseID string
	AmountMinor    int64
	Currency       string `gorm:"size:3"`

	// Raw provider payload for manual reconciliation.
	Receipt datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
