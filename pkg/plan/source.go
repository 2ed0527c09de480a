package plan

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// planFile is the YAML representation of a seed catalog.
type planFile struct {
	Plans []planSpec `yaml:"plans"`
}

type planSpec struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Type        string      `yaml:"type"`
	Price       moneySpec   `yaml:"price"`
	Cycles      []cycleSpec `yaml:"cycles"`
	Trial       struct {
		Enabled      bool `yaml:"enabled"`
		DurationDays int  `yaml:"duration_days"`
	} `yaml:"trial"`
	Features struct {
		MaxUsers       int64                    `yaml:"max_users"`
		MaxProjects    int64                    `yaml:"max_projects"`
		StorageQuotaGB int64                    `yaml:"storage_quota_gb"`
		APICallQuota   int64                    `yaml:"api_call_quota"`
		Flags          map[string]bool          `yaml:"flags"`
		Custom         map[string]CustomFeature `yaml:"custom"`
	} `yaml:"features"`
	Active  bool `yaml:"active"`
	Public  bool `yaml:"public"`
	Popular bool `yaml:"popular"`
}

type moneySpec struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

type cycleSpec struct {
	Cycle           string    `yaml:"cycle"`
	Price           moneySpec `yaml:"price"`
	DiscountPercent int       `yaml:"discount_percent"`
}

// Parse decodes a YAML plan catalog and validates every plan in it.
// Intended for seeding a catalog from a checked-in plans file.
func Parse(data []byte) ([]Plan, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrInvalidPlan, fmt.Errorf("parse plans file: %w", err))
	}

	plans := make([]Plan, 0, len(file.Plans))
	for _, spec := range file.Plans {
		p := Plan{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Type:        Type(spec.Type),
			Price:       Money{Amount: spec.Price.Amount, Currency: spec.Price.Currency},
			Trial:       TrialPolicy{Enabled: spec.Trial.Enabled, DurationDays: spec.Trial.DurationDays},
			Features: FeatureLimits{
				MaxUsers:       spec.Features.MaxUsers,
				MaxProjects:    spec.Features.MaxProjects,
				StorageQuotaGB: spec.Features.StorageQuotaGB,
				APICallQuota:   spec.Features.APICallQuota,
				Flags:          spec.Features.Flags,
				Custom:         spec.Features.Custom,
			},
			Active:  spec.Active,
			Public:  spec.Public,
			Popular: spec.Popular,
		}

		if len(spec.Cycles) > 0 {
			p.Cycles = make(map[BillingCycle]CycleOption, len(spec.Cycles))
			for _, c := range spec.Cycles {
				p.Cycles[BillingCycle(c.Cycle)] = CycleOption{
					Price:           Money{Amount: c.Price.Amount, Currency: c.Price.Currency},
					DiscountPercent: c.DiscountPercent,
				}
			}
		}

		if err := p.Validate(); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, nil
}

// LoadFile reads and parses a YAML plan catalog from disk.
func LoadFile(path string) ([]Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return Parse(data)
}
