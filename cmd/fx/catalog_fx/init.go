package catalog_fx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"cognipdf/internal/api/controllers"
	"cognipdf/internal/catalog"
	"cognipdf/internal/services"
)

var Module = fx.Provide(
	provideCatalog, providePlanService, providePlanController,
)

func provideCatalog() *catalog.Catalog {
	path := os.Getenv("PLAN_CATALOG_PATH")
	if path == "" {
		return catalog.Default()
	}

	plans, err := catalog.Load(path)
	if err != nil {
		log.Fatalf("Failed to load plan catalog from %s: %v", path, err)
	}
	return plans
}

func providePlanService(plans *catalog.Catalog) services.PlanServiceInterface {
	return services.NewPlanService(plans)
}

func providePlanController(planService services.PlanServiceInterface) *controllers.PlanController {
	return controllers.NewPlanController(planService)
}
