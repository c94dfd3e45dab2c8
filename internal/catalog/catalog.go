// Package catalog is the authoritative plan configuration: purchasable SKUs
// and per-tier entitlement limits. It is read-only at runtime; prices are
// never taken from client input or provider payloads.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"cognipdf/pkg/utils"
)

const (
	PlanStarter = "Starter"
	PlanPro     = "Pro"
	PlanPremium = "Premium"
)

// Purchase describes one purchasable SKU ("pro_monthly", ...).
type Purchase struct {
	PlanName       string `json:"plan_name"`
	DurationMonths int    `json:"duration_months"`
	PriceMinor     int64  `json:"price_minor"` // 900 = $9.00
	Currency       string `json:"currency"`    // ISO 4217
}

// Entitlements are the metered-action limits of a tier.
type Entitlements struct {
	UploadLimit          Limit `json:"upload_limit"`
	ChatLimitPerDocument Limit `json:"chat_limit_per_document"`
}

type Catalog struct {
	purchases map[string]Purchase
	tiers     map[string]Entitlements
}

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return &Catalog{
		purchases: map[string]Purchase{
			"pro_monthly":     {PlanName: PlanPro, DurationMonths: 1, PriceMinor: 900, Currency: "USD"},
			"pro_yearly":      {PlanName: PlanPro, DurationMonths: 12, PriceMinor: 7000, Currency: "USD"},
			"premium_monthly": {PlanName: PlanPremium, DurationMonths: 1, PriceMinor: 1300, Currency: "USD"},
			"premium_yearly":  {PlanName: PlanPremium, DurationMonths: 12, PriceMinor: 13000, Currency: "USD"},
		},
		tiers: map[string]Entitlements{
			PlanStarter: {UploadLimit: Bounded(3), ChatLimitPerDocument: Bounded(10)},
			PlanPro:     {UploadLimit: Bounded(50), ChatLimitPerDocument: Bounded(200)},
			PlanPremium: {UploadLimit: Bounded(500), ChatLimitPerDocument: Unbounded()},
		},
	}
}

type catalogFile struct {
	Purchases map[string]Purchase     `json:"purchases"`
	Tiers     map[string]Entitlements `json:"tiers"`
}

// Load reads a catalog override from a JSON file. An empty path returns the
// compiled-in defaults, so pricing changes never require a rebuild.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(f.Purchases) == 0 || len(f.Tiers) == 0 {
		return nil, fmt.Errorf("catalog file %s is missing purchases or tiers", path)
	}
	for id, p := range f.Purchases {
		if _, ok := f.Tiers[p.PlanName]; !ok {
			return nil, fmt.Errorf("purchase %s references unknown tier %s", id, p.PlanName)
		}
		if p.DurationMonths <= 0 || p.PriceMinor <= 0 || p.Currency == "" {
			return nil, fmt.Errorf("purchase %s is not billable", id)
		}
	}

	return &Catalog{purchases: f.Purchases, tiers: f.Tiers}, nil
}

// Purchase resolves a plan-purchase identifier. Unknown ids are a client
// input error, not a server fault.
func (c *Catalog) Purchase(planPurchaseID string) (Purchase, error) {
	p, ok := c.purchases[planPurchaseID]
	if !ok {
		return Purchase{}, fmt.Errorf("%w: %s", utils.ErrUnknownPlan, planPurchaseID)
	}
	return p, nil
}

// Entitlements resolves a bare tier name.
func (c *Catalog) Entitlements(planName string) (Entitlements, error) {
	e, ok := c.tiers[planName]
	if !ok {
		return Entitlements{}, fmt.Errorf("%w: %s", utils.ErrUnknownPlan, planName)
	}
	return e, nil
}

// PurchaseIDs lists the purchasable SKUs in a stable order, for the pricing
// page.
func (c *Catalog) PurchaseIDs() []string {
	ids := make([]string, 0, len(c.purchases))
	for id := range c.purchases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
