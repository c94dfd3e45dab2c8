package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cognipdf/internal/catalog"
	"cognipdf/internal/models/db_models"
	"cognipdf/internal/repositories"
	"cognipdf/pkg/utils"
)

func setupEntitlementTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entitlement.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&db_models.Account{}, &db_models.UsageLedger{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newEntitlementService(t *testing.T, db *gorm.DB) EntitlementServiceInterface {
	t.Helper()
	return NewEntitlementService(
		repositories.NewAccountRepository(db),
		repositories.NewUsageRepository(db),
		catalog.Default(),
		zap.NewNop(),
	)
}

func insertAccount(t *testing.T, db *gorm.DB, planName string) *db_models.Account {
	t.Helper()
	account := &db_models.Account{
		Name:         "Test",
		Email:        planName + "@example.com",
		PasswordHash: "x",
		Verified:     true,
		Subscription: db_models.SubscriptionSnapshot{
			PlanName: planName,
			Status:   db_models.SubStatusActive,
		},
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("insert account: %v", err)
	}
	return account
}

func TestStarterUploadLimitEnforced(t *testing.T) {
	db := setupEntitlementTestDB(t)
	svc := newEntitlementService(t, db)
	account := insertAccount(t, db, catalog.PlanStarter)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordUpload(ctx, account.ID); err != nil {
			t.Fatalf("upload %d should be allowed: %v", i+1, err)
		}
	}

	_, err := svc.RecordUpload(ctx, account.ID)
	var limitErr *utils.LimitReachedError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitReachedError, got %v", err)
	}
	if limitErr.Used != 3 || limitErr.Limit != 3 {
		t.Fatalf("unexpected denial payload: %+v", limitErr)
	}
	if limitErr.Action != "upload" {
		t.Fatalf("unexpected action %q", limitErr.Action)
	}
}

func TestChatLimitDenialLeavesCounterAlone(t *testing.T) {
	db := setupEntitlementTestDB(t)
	svc := newEntitlementService(t, db)
	account := insertAccount(t, db, catalog.PlanStarter)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := svc.RecordChat(ctx, account.ID); err != nil {
			t.Fatalf("chat %d should be allowed: %v", i+1, err)
		}
	}

	var limitErr *utils.LimitReachedError
	if _, err := svc.RecordChat(ctx, account.ID); !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitReachedError, got %v", err)
	}

	status, err := svc.Status(ctx, account.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.ChatMessagesCount != 10 {
		t.Fatalf("denied attempt must not increment, got %d", status.ChatMessagesCount)
	}
}

func TestPremiumChatIsUnbounded(t *testing.T) {
	db := setupEntitlementTestDB(t)
	svc := newEntitlementService(t, db)
	account := insertAccount(t, db, catalog.PlanPremium)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		if _, err := svc.RecordChat(ctx, account.ID); err != nil {
			t.Fatalf("premium chat %d denied: %v", i+1, err)
		}
	}

	decision, err := svc.CanSendChat(ctx, account.ID)
	if err != nil {
		t.Fatalf("can send chat: %v", err)
	}
	if !decision.Allowed || !decision.Limit.IsUnbounded() {
		t.Fatalf("premium chat should stay allowed: %+v", decision)
	}
}

func TestStatusReflectsPlanAndCounters(t *testing.T) {
	db := setupEntitlementTestDB(t)
	svc := newEntitlementService(t, db)
	account := insertAccount(t, db, catalog.PlanPro)
	ctx := context.Background()

	if _, err := svc.RecordUpload(ctx, account.ID); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.RecordChat(ctx, account.ID); err != nil {
		t.Fatalf("chat: %v", err)
	}

	status, err := svc.Status(ctx, account.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.PlanName != catalog.PlanPro {
		t.Fatalf("unexpected plan %q", status.PlanName)
	}
	if status.UploadCount != 1 || status.ChatMessagesCount != 1 {
		t.Fatalf("unexpected counters: %+v", status)
	}
	if status.UploadLimit.Value() != 50 || status.ChatLimit.Value() != 200 {
		t.Fatalf("unexpected limits: %+v", status)
	}
}

func TestStatusUnknownAccount(t *testing.T) {
	db := setupEntitlementTestDB(t)
	svc := newEntitlementService(t, db)

	_, err := svc.Status(context.Background(), uuid.New())
	if !errors.Is(err, utils.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
