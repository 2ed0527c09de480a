package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

const plansYAML = `
plans:
  - id: basic-monthly
    name: Basic
    type: basic
    price:
      amount: 1000
      currency: USD
    cycles:
      - cycle: monthly
        price:
          amount: 1000
          currency: USD
      - cycle: yearly
        price:
          amount: 10000
          currency: USD
        discount_percent: 17
    trial:
      enabled: true
      duration_days: 14
    features:
      max_users: 5
      max_projects: 3
      storage_quota_gb: 10
      api_call_quota: 1000
      flags:
        api: true
        sso: false
    active: true
    public: true
  - id: enterprise
    name: Enterprise
    type: enterprise
    price:
      amount: 100000
      currency: USD
    features:
      max_users: -1
      max_projects: -1
      storage_quota_gb: 1000
      api_call_quota: -1
    active: true
    public: false
`

func TestParse(t *testing.T) {
	t.Parallel()

	plans, err := plan.Parse([]byte(plansYAML))
	require.NoError(t, err)
	require.Len(t, plans, 2)

	basic := plans[0]
	assert.Equal(t, "basic-monthly", basic.ID)
	assert.Equal(t, plan.TypeBasic, basic.Type)
	assert.EqualValues(t, 1000, basic.Price.Amount)
	assert.True(t, basic.Trial.Enabled)
	assert.Equal(t, 14, basic.Trial.DurationDays)
	assert.EqualValues(t, 10000, basic.Cycles[plan.CycleYearly].Price.Amount)
	assert.Equal(t, 17, basic.Cycles[plan.CycleYearly].DiscountPercent)
	assert.True(t, basic.Features.Flags["api"])

	enterprise := plans[1]
	assert.Equal(t, plan.Unlimited, enterprise.Features.MaxUsers)
	assert.False(t, enterprise.Public)
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing name",
			yaml: "plans:\n  - type: basic\n    price:\n      amount: 100\n      currency: USD\n",
		},
		{
			name: "unknown cycle",
			yaml: "plans:\n  - name: X\n    type: basic\n    cycles:\n      - cycle: weekly\n        price:\n          amount: 100\n          currency: USD\n",
		},
		{
			name: "not yaml",
			yaml: "{{nope",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := plan.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, plan.ErrInvalidPlan)
		})
	}
}
