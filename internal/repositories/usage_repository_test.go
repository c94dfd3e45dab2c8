package repositories

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cognipdf/internal/models/db_models"
)

func setupUsageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// SQLite serializes writes anyway; a single connection avoids
	// SQLITE_BUSY under the concurrency tests.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&db_models.UsageLedger{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetOrCreateStartsZeroed(t *testing.T) {
	repo := NewUsageRepository(setupUsageTestDB(t))
	accountID := uuid.New()

	ledger, err := repo.GetOrCreate(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if ledger.UploadCount != 0 || ledger.ChatMessageCount != 0 {
		t.Fatalf("fresh ledger not zeroed: %+v", ledger)
	}
	if ledger.WindowStart == 0 {
		t.Fatal("fresh ledger has no window start")
	}
}

func TestIncrementUploadResetsChatCounter(t *testing.T) {
	repo := NewUsageRepository(setupUsageTestDB(t))
	accountID := uuid.New()
	ctx := context.Background()

	if _, err := repo.IncrementUpload(ctx, accountID); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := repo.IncrementChat(ctx, accountID); err != nil {
			t.Fatalf("chat %d: %v", i, err)
		}
	}

	ledger, err := repo.IncrementUpload(ctx, accountID)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if ledger.UploadCount != 2 {
		t.Fatalf("expected 2 uploads, got %d", ledger.UploadCount)
	}
	if ledger.ChatMessageCount != 0 {
		t.Fatalf("new document must reset the chat budget, got %d", ledger.ChatMessageCount)
	}
}

func TestExpiredWindowResetsOnRead(t *testing.T) {
	db := setupUsageTestDB(t)
	repo := NewUsageRepository(db)
	accountID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.IncrementUpload(ctx, accountID); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	// Age the window past the rolling period.
	staleStart := time.Now().Add(-db_models.RollingWindow - time.Hour).Unix()
	if err := db.Model(&db_models.UsageLedger{}).
		Where("account_id = ?", accountID).
		Update("window_start", staleStart).Error; err != nil {
		t.Fatalf("age window: %v", err)
	}

	ledger, err := repo.GetOrCreate(ctx, accountID)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if ledger.UploadCount != 0 || ledger.ChatMessageCount != 0 {
		t.Fatalf("expired window not reset: %+v", ledger)
	}
	if ledger.WindowStart == staleStart {
		t.Fatal("window start not advanced")
	}

	// The first action of the new window counts from one.
	ledger, err = repo.IncrementUpload(ctx, accountID)
	if err != nil {
		t.Fatalf("upload after reset: %v", err)
	}
	if ledger.UploadCount != 1 {
		t.Fatalf("expected 1 upload in fresh window, got %d", ledger.UploadCount)
	}
}

func TestConcurrentIncrementsLoseNothing(t *testing.T) {
	repo := NewUsageRepository(setupUsageTestDB(t))
	accountID := uuid.New()
	ctx := context.Background()

	// Materialize the row first so every goroutine takes the UPDATE path.
	if _, err := repo.GetOrCreate(ctx, accountID); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementChat(ctx, accountID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment: %v", err)
	}

	ledger, err := repo.GetOrCreate(ctx, accountID)
	if err != nil {
		t.Fatalf("final read: %v", err)
	}
	if ledger.ChatMessageCount != workers {
		t.Fatalf("lost updates: expected %d, got %d", workers, ledger.ChatMessageCount)
	}
}
