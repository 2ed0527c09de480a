package plan

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
// The engine stores and reports amounts; it never converts between currencies.
type Money struct {
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`
}

// Type represents the plan tier.
type Type string

const (
	TypeBasic        Type = "basic"
	TypePremium      Type = "premium"
	TypeProfessional Type = "professional"
	TypeEnterprise   Type = "enterprise"
)

// Unlimited indicates no limit for a resource (-1 chosen for storage compatibility).
const Unlimited int64 = -1

// CycleOption holds the pricing for one billing cycle of a plan.
type CycleOption struct {
	Price           Money `json:"price" bson:"price"`
	DiscountPercent int   `json:"discount_percent,omitempty" bson:"discount_percent,omitempty"`
}

// TrialPolicy defines whether and how long new subscribers can trial a plan.
type TrialPolicy struct {
	Enabled      bool `json:"enabled" bson:"enabled"`
	DurationDays int  `json:"duration_days" bson:"duration_days"`
}

// CustomFeature is an arbitrary named plan capability with an optional numeric limit.
type CustomFeature struct {
	Enabled bool   `json:"enabled" bson:"enabled"`
	Limit   *int64 `json:"limit,omitempty" bson:"limit,omitempty"`
}

// FeatureLimits defines the resource quotas and capabilities granted by a plan.
// A limit of Unlimited (-1) means no cap.
type FeatureLimits struct {
	MaxUsers       int64                    `json:"max_users" bson:"max_users"`
	MaxProjects    int64                    `json:"max_projects" bson:"max_projects"`
	StorageQuotaGB int64                    `json:"storage_quota_gb" bson:"storage_quota_gb"`
	APICallQuota   int64                    `json:"api_call_quota" bson:"api_call_quota"`
	Flags          map[string]bool          `json:"flags,omitempty" bson:"flags,omitempty"`
	Custom         map[string]CustomFeature `json:"custom,omitempty" bson:"custom,omitempty"`
}

// Clone returns a deep copy so snapshots never alias catalog state.
func (f FeatureLimits) Clone() FeatureLimits {
	out := f
	if f.Flags != nil {
		out.Flags = make(map[string]bool, len(f.Flags))
		for k, v := range f.Flags {
			out.Flags[k] = v
		}
	}
	if f.Custom != nil {
		out.Custom = make(map[string]CustomFeature, len(f.Custom))
		for k, v := range f.Custom {
			if v.Limit != nil {
				limit := *v.Limit
				v.Limit = &limit
			}
			out.Custom[k] = v
		}
	}
	return out
}
