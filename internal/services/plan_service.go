package services

import (
	"cognipdf/internal/catalog"
	"cognipdf/internal/models/response_models"
)

type PlanServiceInterface interface {
	ListOffers() []response_models.PlanOffer
}

// PlanService projects the static catalog onto the pricing page. The catalog
// never changes at runtime, so the offers are computed once.
type PlanService struct {
	offers []response_models.PlanOffer
}

func NewPlanService(plans *catalog.Catalog) PlanServiceInterface {
	ids := plans.PurchaseIDs()
	offers := make([]response_models.PlanOffer, 0, len(ids))
	for _, id := range ids {
		p, err := plans.Purchase(id)
		if err != nil {
			continue
		}
		ent, err := plans.Entitlements(p.PlanName)
		if err != nil {
			continue
		}
		offers = append(offers, response_models.PlanOffer{
			ID:             id,
			PlanName:       p.PlanName,
			DurationMonths: p.DurationMonths,
			PriceMinor:     p.PriceMinor,
			Currency:       p.Currency,
			Entitlements:   ent,
		})
	}
	return &PlanService{offers: offers}
}

func (s *PlanService) ListOffers() []response_models.PlanOffer {
	return s.offers
}
