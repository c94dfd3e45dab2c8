package usage_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cognipdf/internal/api/controllers"
	"cognipdf/internal/catalog"
	"cognipdf/internal/repositories"
	"cognipdf/internal/services"
)

var Module = fx.Provide(
	provideUsageRepo, provideEntitlementService, provideUsageController)

func provideUsageRepo(db *gorm.DB) repositories.UsageRepository {
	return repositories.NewUsageRepository(db)
}

func provideEntitlementService(
	accountRepo repositories.AccountRepository,
	usageRepo repositories.UsageRepository,
	plans *catalog.Catalog,
	logger *zap.Logger,
) services.EntitlementServiceInterface {
	return services.NewEntitlementService(accountRepo, usageRepo, plans, logger)
}

func provideUsageController(entitlementService services.EntitlementServiceInterface) *controllers.UsageController {
	return controllers.NewUsageController(entitlementService)
}
