// Package payments holds the provider integrations. Each processor is a
// variant producing the same ConfirmedEvent, so verification and idempotency
// stay single-sourced in the reconciliation service no matter how many
// processors exist.
package payments

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"cognipdf/internal/models/db_models"
)

// ConfirmedEvent is a provider-reported completed payment, normalized across
// processors and notification channels.
type ConfirmedEvent struct {
	AccountID      uuid.UUID
	PlanPurchaseID string

	// Provider transaction id; the idempotency key.
	TransactionID string

	AmountMinor int64
	Currency    string // upper-case ISO 4217

	Processor db_models.PaymentProcessor
	Channel   db_models.PaymentChannel

	// Raw provider payload, persisted for manual reconciliation.
	Receipt []byte
}

// MinorUnits parses a provider decimal amount ("13.00") into minor units
// without going through floats.
func MinorUnits(value string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(value), ".")
	if whole == "" {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid amount %q", value)
	}

	switch len(frac) {
	case 0:
		return units * 100, nil
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return units*100 + cents, nil
}

// FormatMinor renders minor units as the two-decimal string providers expect.
func FormatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
