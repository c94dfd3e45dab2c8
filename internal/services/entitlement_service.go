package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cognipdf/internal/catalog"
	"cognipdf/internal/models/db_models"
	"cognipdf/internal/models/response_models"
	"cognipdf/internal/repositories"
	"cognipdf/pkg/utils"
)

// Decision is the outcome of one entitlement check.
type Decision struct {
	Allowed bool
	Used    int64
	Limit   catalog.Limit
}

// EntitlementServiceInterface decides whether metered actions are permitted
// and records them. Checks never mutate the ledger; Record* is the explicit
// commit step and re-checks before incrementing. The check and the increment
// are deliberately not atomic (soft limits): two racing requests can both
// pass the check, but the counters themselves never lose updates.
type EntitlementServiceInterface interface {
	Status(ctx context.Context, accountID uuid.UUID) (*response_models.UsageStatusResponse, error)
	CanUpload(ctx context.Context, accountID uuid.UUID) (Decision, error)
	CanSendChat(ctx context.Context, accountID uuid.UUID) (Decision, error)
	RecordUpload(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error)
	RecordChat(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error)
}

type EntitlementService struct {
	accountRepo repositories.AccountRepository
	usageRepo   repositories.UsageRepository
	plans       *catalog.Catalog
	log         *zap.Logger
}

func NewEntitlementService(
	accountRepo repositories.AccountRepository,
	usageRepo repositories.UsageRepository,
	plans *catalog.Catalog,
	log *zap.Logger,
) EntitlementServiceInterface {
	return &EntitlementService{
		accountRepo: accountRepo,
		usageRepo:   usageRepo,
		plans:       plans,
		log:         log.Named("entitlement.service"),
	}
}

func (s *EntitlementService) entitlements(ctx context.Context, accountID uuid.UUID) (catalog.Entitlements, *db_models.UsageLedger, string, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return catalog.Entitlements{}, nil, "", utils.ErrDatabaseError
	}
	if account == nil {
		return catalog.Entitlements{}, nil, "", utils.ErrAccountNotFound
	}

	ent, err := s.plans.Entitlements(account.Subscription.PlanName)
	if err != nil {
		return catalog.Entitlements{}, nil, "", err
	}

	// The read performs the rolling-window reset when due.
	ledger, err := s.usageRepo.GetOrCreate(ctx, accountID)
	if err != nil {
		return catalog.Entitlements{}, nil, "", utils.ErrDatabaseError
	}

	return ent, ledger, account.Subscription.PlanName, nil
}

func (s *EntitlementService) Status(ctx context.Context, accountID uuid.UUID) (*response_models.UsageStatusResponse, error) {
	ent, ledger, planName, err := s.entitlements(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &response_models.UsageStatusResponse{
		UploadCount:       ledger.UploadCount,
		UploadLimit:       ent.UploadLimit,
		ChatMessagesCount: ledger.ChatMessageCount,
		ChatLimit:         ent.ChatLimitPerDocument,
		PlanName:          planName,
	}, nil
}

func (s *EntitlementService) CanUpload(ctx context.Context, accountID uuid.UUID) (Decision, error) {
	ent, ledger, _, err := s.entitlements(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed: ent.UploadLimit.Allows(ledger.UploadCount),
		Used:    ledger.UploadCount,
		Limit:   ent.UploadLimit,
	}, nil
}

func (s *EntitlementService) CanSendChat(ctx context.Context, accountID uuid.UUID) (Decision, error) {
	ent, ledger, _, err := s.entitlements(ctx, accountID)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed: ent.ChatLimitPerDocument.Allows(ledger.ChatMessageCount),
		Used:    ledger.ChatMessageCount,
		Limit:   ent.ChatLimitPerDocument,
	}, nil
}

func (s *EntitlementService) RecordUpload(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error) {
	decision, err := s.CanUpload(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &utils.LimitReachedError{
			Action: "upload",
			Used:   decision.Used,
			Limit:  decision.Limit.Value(),
		}
	}

	ledger, err := s.usageRepo.IncrementUpload(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return ledger, nil
}

func (s *EntitlementService) RecordChat(ctx context.Context, accountID uuid.UUID) (*db_models.UsageLedger, error) {
	decision, err := s.CanSendChat(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &utils.LimitReachedError{
			Action: "chat",
			Used:   decision.Used,
			Limit:  decision.Limit.Value(),
		}
	}

	ledger, err := s.usageRepo.IncrementChat(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return ledger, nil
}
