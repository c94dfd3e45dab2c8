package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cognipdf/internal/models/db_models"
	"cognipdf/internal/models/request_models"
	"cognipdf/internal/repositories"
	mem "cognipdf/pkg/memcache"
	"cognipdf/pkg/utils"
)

type fakeMailer struct {
	verificationsSent int
	lastTo            string
	lastCode          string
	fail              bool
}

func (f *fakeMailer) SendVerificationCode(to, name, code string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.verificationsSent++
	f.lastTo = to
	f.lastCode = code
	return nil
}

func (f *fakeMailer) SendContactMessage(name, fromEmail, message string) error {
	return nil
}

func setupAccountService(t *testing.T) (AccountServiceInterface, *fakeMailer, mem.VerificationCodeStore, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&db_models.Account{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mailer := &fakeMailer{}
	codes := mem.NewVerificationCodes()
	svc := NewAccountService(repositories.NewAccountRepository(db), mailer, codes, zap.NewNop())
	return svc, mailer, codes, db
}

func register(t *testing.T, svc AccountServiceInterface) request_models.SignUpRequest {
	t.Helper()
	req := request_models.SignUpRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	}
	if err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register: %v", err)
	}
	return req
}

func TestRegisterSendsVerificationCode(t *testing.T) {
	svc, mailer, codes, db := setupAccountService(t)
	req := register(t, svc)

	if mailer.verificationsSent != 1 || mailer.lastTo != req.Email {
		t.Fatalf("verification mail not sent: %+v", mailer)
	}
	stored, ok := codes.Peek(req.Email)
	if !ok || stored != mailer.lastCode {
		t.Fatalf("stored code %q does not match mailed code %q", stored, mailer.lastCode)
	}
	if len(stored) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", stored)
	}

	var account db_models.Account
	if err := db.First(&account, "email = ?", req.Email).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if account.Verified {
		t.Fatal("fresh account must start unverified")
	}
	if account.Subscription.PlanName != "Starter" || account.Subscription.Status != db_models.SubStatusInactive {
		t.Fatalf("fresh account should start on inactive Starter: %+v", account.Subscription)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := setupAccountService(t)
	req := register(t, svc)

	if err := svc.Register(context.Background(), req); !errors.Is(err, utils.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestVerifyEmailHappyPath(t *testing.T) {
	svc, mailer, codes, _ := setupAccountService(t)
	req := register(t, svc)
	ctx := context.Background()

	resp, err := svc.VerifyEmail(ctx, request_models.VerifyEmailRequest{
		Email:            req.Email,
		VerificationCode: mailer.lastCode,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("verification must mint a session token")
	}

	// The code is single-use.
	if _, ok := codes.Peek(req.Email); ok {
		t.Fatal("code not consumed on success")
	}
	if _, err := svc.VerifyEmail(ctx, request_models.VerifyEmailRequest{
		Email:            req.Email,
		VerificationCode: mailer.lastCode,
	}); !errors.Is(err, utils.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyEmailWrongCodeDoesNotBurn(t *testing.T) {
	svc, mailer, _, _ := setupAccountService(t)
	req := register(t, svc)
	ctx := context.Background()

	if _, err := svc.VerifyEmail(ctx, request_models.VerifyEmailRequest{
		Email:            req.Email,
		VerificationCode: "000000",
	}); !errors.Is(err, utils.ErrInvalidVerificationCode) {
		t.Fatalf("expected ErrInvalidVerificationCode, got %v", err)
	}

	// The right code still works after a wrong guess.
	if _, err := svc.VerifyEmail(ctx, request_models.VerifyEmailRequest{
		Email:            req.Email,
		VerificationCode: mailer.lastCode,
	}); err != nil {
		t.Fatalf("verify after wrong guess: %v", err)
	}
}

func TestLoginRejectsUnverified(t *testing.T) {
	svc, _, _, _ := setupAccountService(t)
	req := register(t, svc)

	_, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if !errors.Is(err, utils.ErrAccountNotVerified) {
		t.Fatalf("expected ErrAccountNotVerified, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mailer, _, _ := setupAccountService(t)
	req := register(t, svc)
	ctx := context.Background()

	if _, err := svc.VerifyEmail(ctx, request_models.VerifyEmailRequest{
		Email:            req.Email,
		VerificationCode: mailer.lastCode,
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if _, err := svc.Login(ctx, request_models.LoginRequest{
		Email:    req.Email,
		Password: "wrong",
	}); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	resp, err := svc.Login(ctx, request_models.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login did not mint a token")
	}
}

func TestRegisterSurfacesMailFailure(t *testing.T) {
	svc, mailer, _, _ := setupAccountService(t)
	mailer.fail = true

	err := svc.Register(context.Background(), request_models.SignUpRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, utils.ErrEmailDelivery) {
		t.Fatalf("expected ErrEmailDelivery, got %v", err)
	}
}
