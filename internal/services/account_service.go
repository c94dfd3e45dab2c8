package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cognipdf/internal/models/db_models"
	"cognipdf/internal/models/request_models"
	"cognipdf/internal/models/response_models"
	"cognipdf/internal/repositories"
	mem "cognipdf/pkg/memcache"
	"cognipdf/pkg/utils"
)

const verificationCodeTTL = 15 * time.Minute

type AccountServiceInterface interface {
	Register(ctx context.Context, request request_models.SignUpRequest) error
	VerifyEmail(ctx context.Context, request request_models.VerifyEmailRequest) (*response_models.AuthResponse, error)
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AuthResponse, error)
	Profile(ctx context.Context, accountID uuid.UUID) (*response_models.ProfileResponse, error)
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	mailService MailServiceInterface
	codes       mem.VerificationCodeStore
	log         *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	mailService MailServiceInterface,
	codes mem.VerificationCodeStore,
	log *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		mailService: mailService,
		codes:       codes,
		log:         log.Named("account.service"),
	}
}

func (a *AccountService) Register(ctx context.Context, request request_models.SignUpRequest) error {
	existing, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	account := &db_models.Account{
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Subscription: db_models.SubscriptionSnapshot{
			PlanName: "Starter",
			Status:   db_models.SubStatusInactive,
		},
	}
	if err := a.accountRepo.Insert(ctx, account); err != nil {
		return utils.ErrDatabaseError
	}

	code, err := utils.GenerateOtpCode(6)
	if err != nil {
		return utils.ErrDatabaseError
	}
	a.codes.Set(account.Email, code, verificationCodeTTL)

	if err := a.mailService.SendVerificationCode(account.Email, account.Name, code); err != nil {
		a.log.Warn("verification mail failed", zap.String("email", account.Email), zap.Error(err))
		return utils.ErrEmailDelivery
	}

	return nil
}

func (a *AccountService) VerifyEmail(ctx context.Context, request request_models.VerifyEmailRequest) (*response_models.AuthResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	if account.Verified {
		return nil, utils.ErrAlreadyVerified
	}

	// Single-use: a wrong code burns nothing, a right one is consumed.
	code, ok := a.codes.Peek(request.Email)
	if !ok || code != request.VerificationCode {
		return nil, utils.ErrInvalidVerificationCode
	}
	a.codes.Consume(request.Email)

	if err := a.accountRepo.MarkVerified(ctx, account.ID); err != nil {
		return nil, utils.ErrDatabaseError
	}

	token, err := utils.CreateToken(account.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &response_models.AuthResponse{
		ID:           account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Token:        token,
		Subscription: account.Subscription,
	}, nil
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AuthResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	if !account.Verified {
		return nil, utils.ErrAccountNotVerified
	}

	token, err := utils.CreateToken(account.ID)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	return &response_models.AuthResponse{
		ID:           account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Token:        token,
		Subscription: account.Subscription,
	}, nil
}

func (a *AccountService) Profile(ctx context.Context, accountID uuid.UUID) (*response_models.ProfileResponse, error) {
	account, err := a.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	return &response_models.ProfileResponse{
		ID:           account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Subscription: account.Subscription,
	}, nil
}
