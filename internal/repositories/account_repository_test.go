package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cognipdf/internal/models/db_models"
)

func setupAccountTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&db_models.Account{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFindByEmailMissingReturnsNil(t *testing.T) {
	repo := NewAccountRepository(setupAccountTestDB(t))

	account, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if account != nil {
		t.Fatalf("expected nil for missing account, got %+v", account)
	}
}

func TestMarkVerifiedFlipsOnce(t *testing.T) {
	repo := NewAccountRepository(setupAccountTestDB(t))
	ctx := context.Background()

	account := &db_models.Account{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "x",
	}
	if err := repo.Insert(ctx, account); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	got, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Verified {
		t.Fatal("account not verified after mark")
	}

	// A second mark matches no row and must not error.
	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		t.Fatalf("second mark: %v", err)
	}
}
