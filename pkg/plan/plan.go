package plan

import (
	"errors"
	"fmt"
	"time"
)

// Plan describes a purchasable subscription plan and its constraints.
// Plans are immutable-by-version: every update bumps Version, and existing
// subscription snapshots keep the attributes they were created with.
type Plan struct {
	ID          string                       `json:"id" bson:"_id"`
	Name        string                       `json:"name" bson:"name"`
	Description string                       `json:"description,omitempty" bson:"description,omitempty"`
	Type        Type                         `json:"type" bson:"type"`
	Price       Money                        `json:"price" bson:"price"`
	Cycles      map[BillingCycle]CycleOption `json:"cycles,omitempty" bson:"cycles,omitempty"`
	Trial       TrialPolicy                  `json:"trial" bson:"trial"`
	Features    FeatureLimits                `json:"features" bson:"features"`
	Active      bool                         `json:"active" bson:"active"`
	Public      bool                         `json:"public" bson:"public"`
	Recommended bool                         `json:"recommended" bson:"recommended"`
	Popular     bool                         `json:"popular" bson:"popular"`
	Version     int64                        `json:"version" bson:"version"`
	CreatedAt   time.Time                    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at" bson:"updated_at"`
}

// PriceFor returns the price for the given billing cycle, falling back to the
// plan's base price when no cycle-specific option is configured.
func (p Plan) PriceFor(cycle BillingCycle) Money {
	if opt, ok := p.Cycles[cycle]; ok {
		return opt.Price
	}
	return p.Price
}

// TrialEnd calculates when a trial started at the given time ends.
// Returns startedAt unchanged if the plan has no trial.
func (p Plan) TrialEnd(startedAt time.Time) time.Time {
	if !p.Trial.Enabled || p.Trial.DurationDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.Trial.DurationDays)
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := p
	if p.Cycles != nil {
		out.Cycles = make(map[BillingCycle]CycleOption, len(p.Cycles))
		for k, v := range p.Cycles {
			out.Cycles[k] = v
		}
	}
	out.Features = p.Features.Clone()
	return out
}

// Validate checks that the plan definition is internally consistent.
// Catches configuration errors early, before the plan reaches the catalog.
func (p Plan) Validate() error {
	if p.Name == "" {
		return errors.Join(ErrInvalidPlan, errors.New("plan name is required"))
	}

	switch p.Type {
	case TypeBasic, TypePremium, TypeProfessional, TypeEnterprise:
	default:
		return errors.Join(ErrInvalidPlan, fmt.Errorf("unknown plan type %q", p.Type))
	}

	if p.Price.Amount < 0 {
		return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s has negative price: %d", p.Name, p.Price.Amount))
	}

	for cycle, opt := range p.Cycles {
		if !cycle.Valid() {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s has unknown billing cycle %q", p.Name, cycle))
		}
		if opt.Price.Amount < 0 {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s has negative price for cycle %s", p.Name, cycle))
		}
		if opt.DiscountPercent < 0 || opt.DiscountPercent > 100 {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s has out-of-range discount for cycle %s: %d", p.Name, cycle, opt.DiscountPercent))
		}
	}

	if p.Trial.Enabled && p.Trial.DurationDays <= 0 {
		return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s enables trial with non-positive duration: %d", p.Name, p.Trial.DurationDays))
	}
	if p.Trial.DurationDays < 0 {
		return errors.Join(ErrInvalidPlan, fmt.Errorf("plan %s has negative trial days: %d", p.Name, p.Trial.DurationDays))
	}

	return nil
}
