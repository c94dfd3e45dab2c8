package db_models

type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusInactive  SubscriptionStatus = "inactive"
	SubStatusCancelled SubscriptionStatus = "cancelled"
)

type PaymentProcessor string

const (
	ProcessorNone   PaymentProcessor = ""
	ProcessorPayPal PaymentProcessor = "paypal"
	ProcessorStripe PaymentProcessor = "stripe"
)

// SubscriptionSnapshot is embedded in the account row. It has no lifecycle of
// its own: the reconciliation service only ever replaces it wholesale, never
// patches individual fields.
type SubscriptionSnapshot struct {
	PlanName         string             `gorm:"default:Starter" json:"plan_name"`
	Status           SubscriptionStatus `gorm:"default:inactive" json:"status"`
	PaymentProcessor PaymentProcessor   `json:"payment_processor,omitempty"`

	// Provider transaction id of the payment that produced this snapshot;
	// doubles as the idempotency/audit reference.
	ExternalPaymentRef string `json:"external_payment_ref,omitempty"`

	// Unix seconds
	StartDate       int64 `json:"start_date,omitempty"`
	EndDate         int64 `json:"end_date,omitempty"`
	LastPaymentDate int64 `json:"last_payment_date,omitempty"`
}

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string `json:"-"`
	Verified     bool   `gorm:"default:false"`

	Subscription SubscriptionSnapshot `gorm:"embedded;embeddedPrefix:sub_"`
}
