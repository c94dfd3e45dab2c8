package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cognipdf/internal/models/db_models"
)

// UsageRepository owns the per-account usage ledger. Reads are not
// side-effect free: an expired rolling window is reset and persisted as part
// of GetOrCreate. Increments are single UPDATE .. RETURNING statements so
// concurrent increments for the same account never lose an update; limit
// enforcement lives one layer up in the entitlement service.
type UsageRepository interface {
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error)
	IncrementUpload(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error)
	IncrementChat(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{
		db: db,
	}
}

func (r *usageRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error) {
	now := time.Now()

	var ledger db_models.UsageLedger
	err := r.db.WithContext(ctx).First(&ledger, "account_id = ?", accountID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ledger = db_models.UsageLedger{
			AccountID:   accountID,
			WindowStart: now.Unix(),
		}
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&ledger)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			return &ledger, nil
		}
		// Lost the creation race; read whoever won.
		if err := r.db.WithContext(ctx).First(&ledger, "account_id = ?", accountID).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if !ledger.WindowExpired(now) {
		return &ledger, nil
	}

	// The guard on the observed window_start makes concurrent readers reset
	// at most once.
	res := r.db.WithContext(ctx).
		Model(&db_models.UsageLedger{}).
		Where("account_id = ? AND window_start = ?", accountID, ledger.WindowStart).
		Updates(map[string]interface{}{
			"upload_count":       0,
			"chat_message_count": 0,
			"window_start":       now.Unix(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if err := r.db.WithContext(ctx).First(&ledger, "account_id = ?", accountID).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

// IncrementUpload bumps the upload counter and starts a fresh per-document
// chat budget in the same statement.
func (r *usageRepository) IncrementUpload(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error) {
	if _, err := r.GetOrCreate(ctx, accountID); err != nil {
		return nil, err
	}

	var ledger db_models.UsageLedger
	err := r.db.WithContext(ctx).
		Model(&ledger).
		Clauses(clause.Returning{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"upload_count":       gorm.Expr("upload_count + ?", 1),
			"chat_message_count": 0,
		}).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *usageRepository) IncrementChat(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error) {
	if _, err := r.GetOrCreate(ctx, accountID); err != nil {
		return nil, err
	}

	var ledger db_models.UsageLedger
	err := r.db.WithContext(ctx).
		Model(&ledger).
		Clauses(clause.Returning{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"chat_message_count": gorm.Expr("chat_message_count + ?", 1),
		}).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}
