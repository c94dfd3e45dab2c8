package db_models

import (
	"time"

	"github.com/google/uuid"
)

// RollingWindow is the usage reset period: a rolling 30 days anchored to the
// last reset, not a calendar month.
const RollingWindow = 30 * 24 * time.Hour

// UsageLedger counts metered actions for one account. The ledger is a dumb
// counter: limits are enforced by the entitlement service, never here.
type UsageLedger struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UploadCount      int64 `gorm:"not null;default:0"`
	ChatMessageCount int64 `gorm:"not null;default:0"`

	// Start of the current rolling window, unix seconds.
	WindowStart int64 `gorm:"not null"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

// WindowExpired reports whether the rolling window has elapsed at the given
// instant.
func (l *UsageLedger) WindowExpired(now time.Time) bool {
	return now.Sub(time.Unix(l.WindowStart, 0)) > RollingWindow
}
