package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cognipdf/internal/catalog"
	"cognipdf/internal/models/db_models"
	"cognipdf/internal/payments"
	"cognipdf/pkg/utils"
)

// ReconciliationServiceInterface applies a provider-confirmed payment to the
// account's subscription snapshot, exactly once per real-world transaction,
// no matter which channel (or how many retries) delivers the news.
type ReconciliationServiceInterface interface {
	Apply(ctx context.Context, evt payments.ConfirmedEvent) error
}

type ReconciliationService struct {
	db    *gorm.DB
	plans *catalog.Catalog
	log   *zap.Logger
}

func NewReconciliationService(db *gorm.DB, plans *catalog.Catalog, log *zap.Logger) ReconciliationServiceInterface {
	return &ReconciliationService{
		db:    db,
		plans: plans,
		log:   log.Named("reconciliation.service"),
	}
}

// Reported by the transaction body when the dedupe row already exists.
var errAlreadyApplied = errors.New("transaction already applied")

// Apply verifies the event against the catalog and account store, then
// writes the new snapshot. Expected amount and currency are re-derived from
// the catalog; nothing asserted by the client or the raw provider payload is
// trusted. Verification failures are terminal and logged at error severity
// with enough context for manual reconciliation.
func (s *ReconciliationService) Apply(ctx context.Context, evt payments.ConfirmedEvent) error {
	purchase, err := s.plans.Purchase(evt.PlanPurchaseID)
	if err != nil {
		s.log.Error("payment for unknown plan",
			zap.String("account_id", evt.AccountID.String()),
			zap.String("transaction_id", evt.TransactionID),
			zap.String("plan_purchase_id", evt.PlanPurchaseID),
			zap.String("processor", string(evt.Processor)))
		return fmt.Errorf("%w: unknown plan %s", utils.ErrPaymentVerification, evt.PlanPurchaseID)
	}

	if evt.AmountMinor != purchase.PriceMinor || evt.Currency != purchase.Currency {
		// Tampering or catalog drift; the money already moved.
		s.log.Error("payment amount mismatch",
			zap.String("account_id", evt.AccountID.String()),
			zap.String("transaction_id", evt.TransactionID),
			zap.String("plan_purchase_id", evt.PlanPurchaseID),
			zap.Int64("expected_minor", purchase.PriceMinor),
			zap.String("expected_currency", purchase.Currency),
			zap.Int64("got_minor", evt.AmountMinor),
			zap.String("got_currency", evt.Currency))
		return fmt.Errorf("%w: amount mismatch for %s", utils.ErrPaymentVerification, evt.TransactionID)
	}

	var account db_models.Account
	err = s.db.WithContext(ctx).First(&account, "id = ?", evt.AccountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("payment for unknown account",
			zap.String("account_id", evt.AccountID.String()),
			zap.String("transaction_id", evt.TransactionID),
			zap.String("plan_purchase_id", evt.PlanPurchaseID))
		return fmt.Errorf("%w: unknown account for %s", utils.ErrPaymentVerification, evt.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	receipt := evt.Receipt
	if len(receipt) == 0 {
		receipt = []byte("{}")
	}

	now := time.Now()
	snapshot := db_models.SubscriptionSnapshot{
		PlanName:           purchase.PlanName,
		Status:             db_models.SubStatusActive,
		PaymentProcessor:   evt.Processor,
		ExternalPaymentRef: evt.TransactionID,
		StartDate:          now.Unix(),
		EndDate:            now.AddDate(0, purchase.DurationMonths, 0).Unix(),
		LastPaymentDate:    now.Unix(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := &db_models.PaymentEvent{
			AccountID:      evt.AccountID,
			Processor:      evt.Processor,
			ProviderTxnID:  evt.TransactionID,
			Channel:        evt.Channel,
			PlanPurchaseID: evt.PlanPurchaseID,
			AmountMinor:    evt.AmountMinor,
			Currency:       evt.Currency,
			Receipt:        datatypes.JSON(receipt),
		}

		// Insert-once dedupe: whichever channel lands second sees zero rows
		// and must not write a second snapshot.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "processor"}, {Name: "provider_txn_id"}},
			DoNothing: true,
		}).Create(record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyApplied
		}

		// Snapshot replacement is wholesale: every column, one statement.
		return tx.Model(&db_models.Account{}).
			Where("id = ?", evt.AccountID).
			Updates(map[string]interface{}{
				"sub_plan_name":            snapshot.PlanName,
				"sub_status":               snapshot.Status,
				"sub_payment_processor":    snapshot.PaymentProcessor,
				"sub_external_payment_ref": snapshot.ExternalPaymentRef,
				"sub_start_date":           snapshot.StartDate,
				"sub_end_date":             snapshot.EndDate,
				"sub_last_payment_date":    snapshot.LastPaymentDate,
			}).Error
	})

	if errors.Is(err, errAlreadyApplied) {
		// No-op success so the provider stops retrying.
		s.log.Info("duplicate payment notification ignored",
			zap.String("transaction_id", evt.TransactionID),
			zap.String("channel", string(evt.Channel)))
		return nil
	}
	if err != nil {
		// Rolled back: the provider must retry or the grant is lost.
		s.log.Error("failed to apply payment",
			zap.String("account_id", evt.AccountID.String()),
			zap.String("transaction_id", evt.TransactionID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.log.Info("subscription updated",
		zap.String("account_id", evt.AccountID.String()),
		zap.String("plan", purchase.PlanName),
		zap.String("transaction_id", evt.TransactionID),
		zap.String("processor", string(evt.Processor)),
		zap.Int64("ends_at", snapshot.EndDate))
	return nil
}
