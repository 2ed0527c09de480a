package plan_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

func testPlan(name string, typ plan.Type, amount int64) plan.Plan {
	return plan.Plan{
		Name:  name,
		Type:  typ,
		Price: plan.Money{Amount: amount, Currency: "USD"},
		Cycles: map[plan.BillingCycle]plan.CycleOption{
			plan.CycleMonthly: {Price: plan.Money{Amount: amount, Currency: "USD"}},
			plan.CycleYearly:  {Price: plan.Money{Amount: amount * 10, Currency: "USD"}, DiscountPercent: 17},
		},
		Features: plan.FeatureLimits{
			MaxUsers:       5,
			MaxProjects:    3,
			StorageQuotaGB: 10,
			APICallQuota:   1000,
		},
		Active: true,
		Public: true,
	}
}

func TestCatalogCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigns id and version", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.EqualValues(t, 1, created.Version)
		assert.False(t, created.Recommended)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("rejects missing name", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		p := testPlan("", plan.TypeBasic, 1000)
		_, err := catalog.Create(ctx, p)
		assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		p := testPlan("Basic", plan.Type("platinum"), 1000)
		_, err := catalog.Create(ctx, p)
		assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		p := testPlan("Basic", plan.TypeBasic, -1)
		_, err := catalog.Create(ctx, p)
		assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	})

	t.Run("rejects trial without duration", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		p := testPlan("Basic", plan.TypeBasic, 1000)
		p.Trial = plan.TrialPolicy{Enabled: true, DurationDays: 0}
		_, err := catalog.Create(ctx, p)
		assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	})
}

func TestCatalogUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("patches fields and bumps version", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)

		newName := "Basic v2"
		newPrice := plan.Money{Amount: 1500, Currency: "USD"}
		updated, err := catalog.Update(ctx, created.ID, plan.Patch{
			Name:  &newName,
			Price: &newPrice,
		})
		require.NoError(t, err)
		assert.Equal(t, "Basic v2", updated.Name)
		assert.EqualValues(t, 1500, updated.Price.Amount)
		assert.EqualValues(t, 2, updated.Version)
		// Untouched fields survive the patch.
		assert.Equal(t, plan.TypeBasic, updated.Type)
		assert.True(t, updated.Public)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		_, err := catalog.Update(ctx, "missing", plan.Patch{})
		assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	})

	t.Run("patch cannot break validation", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)

		bad := plan.Money{Amount: -5, Currency: "USD"}
		_, err = catalog.Update(ctx, created.ID, plan.Patch{Price: &bad})
		assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	})

	t.Run("update racing a recommended switch cannot resurrect the flag", func(t *testing.T) {
		t.Parallel()
		store := plan.NewMemoryStore()
		gate := &gatedStore{Store: store, entered: make(chan struct{}), release: make(chan struct{})}
		catalog := plan.NewCatalog(gate)

		x, err := catalog.Create(ctx, testPlan("Plan X", plan.TypeBasic, 1000))
		require.NoError(t, err)
		y, err := catalog.Create(ctx, testPlan("Plan Y", plan.TypePremium, 2500))
		require.NoError(t, err)
		require.NoError(t, catalog.SetRecommended(ctx, x.ID))

		// Park an update of X between its read (which saw the flag set) and
		// its write.
		done := make(chan error, 1)
		go func() {
			desc := "updated while the recommendation moved"
			_, err := catalog.Update(ctx, x.ID, plan.Patch{Description: &desc})
			done <- err
		}()
		<-gate.entered

		// The recommendation moves to Y while the update is in flight.
		require.NoError(t, catalog.SetRecommended(ctx, y.ID))

		close(gate.release)
		require.NoError(t, <-done)

		plans, err := store.List(ctx)
		require.NoError(t, err)

		var recommended []string
		for _, p := range plans {
			if p.Recommended {
				recommended = append(recommended, p.ID)
			}
		}
		require.Len(t, recommended, 1)
		assert.Equal(t, y.ID, recommended[0])

		// The patch itself still landed.
		got, err := catalog.Get(ctx, x.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated while the recommendation moved", got.Description)
	})

	t.Run("stale version surfaces a conflict", func(t *testing.T) {
		t.Parallel()
		store := plan.NewMemoryStore()
		catalog := plan.NewCatalog(store)

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)

		// A competing writer bumps the plan underneath the catalog's read.
		stale, err := store.Get(ctx, created.ID)
		require.NoError(t, err)

		name := "Basic v2"
		_, err = catalog.Update(ctx, created.ID, plan.Patch{Name: &name})
		require.NoError(t, err)

		stale.Version++
		err = store.Update(ctx, stale, created.Version)
		assert.ErrorIs(t, err, plan.ErrVersionConflict)

		got, err := catalog.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Basic v2", got.Name)
	})
}

// gatedStore delays Update writes until released, widening the window
// between a catalog read and the corresponding store write.
type gatedStore struct {
	plan.Store
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Update(ctx context.Context, p *plan.Plan, expectedVersion int64) error {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.Update(ctx, p, expectedVersion)
}

func TestCatalogSetRecommended(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("exactly one recommended after switching", func(t *testing.T) {
		t.Parallel()
		store := plan.NewMemoryStore()
		catalog := plan.NewCatalog(store)

		x, err := catalog.Create(ctx, testPlan("Plan X", plan.TypeBasic, 1000))
		require.NoError(t, err)
		y, err := catalog.Create(ctx, testPlan("Plan Y", plan.TypePremium, 2500))
		require.NoError(t, err)

		require.NoError(t, catalog.SetRecommended(ctx, x.ID))
		require.NoError(t, catalog.SetRecommended(ctx, y.ID))

		plans, err := store.List(ctx)
		require.NoError(t, err)

		var recommended []string
		for _, p := range plans {
			if p.Recommended {
				recommended = append(recommended, p.ID)
			}
		}
		require.Len(t, recommended, 1)
		assert.Equal(t, y.ID, recommended[0])
	})

	t.Run("concurrent callers never leave two recommended", func(t *testing.T) {
		t.Parallel()
		store := plan.NewMemoryStore()
		catalog := plan.NewCatalog(store)

		ids := make([]string, 0, 4)
		for _, name := range []string{"A", "B", "C", "D"} {
			p, err := catalog.Create(ctx, testPlan("Plan "+name, plan.TypeBasic, 1000))
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_ = catalog.SetRecommended(ctx, id)
			}(ids[i%len(ids)])
		}
		wg.Wait()

		plans, err := store.List(ctx)
		require.NoError(t, err)

		count := 0
		for _, p := range plans {
			if p.Recommended {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())
		assert.ErrorIs(t, catalog.SetRecommended(ctx, "missing"), plan.ErrPlanNotFound)
	})
}

func TestCatalogDeactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejected while subscribers remain", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)

		err = catalog.Deactivate(ctx, created.ID, 3)
		assert.ErrorIs(t, err, plan.ErrActiveSubscribers)

		got, err := catalog.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
	})

	t.Run("soft retires with zero subscribers", func(t *testing.T) {
		t.Parallel()
		catalog := plan.NewCatalog(plan.NewMemoryStore())

		created, err := catalog.Create(ctx, testPlan("Basic", plan.TypeBasic, 1000))
		require.NoError(t, err)

		require.NoError(t, catalog.Deactivate(ctx, created.ID, 0))

		got, err := catalog.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})
}

func TestCatalogList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	catalog := plan.NewCatalog(plan.NewMemoryStore())

	public, err := catalog.Create(ctx, testPlan("Public", plan.TypeBasic, 1000))
	require.NoError(t, err)

	private := testPlan("Private", plan.TypeEnterprise, 50000)
	private.Public = false
	created, err := catalog.Create(ctx, private)
	require.NoError(t, err)

	retired := testPlan("Retired", plan.TypeBasic, 500)
	retiredPlan, err := catalog.Create(ctx, retired)
	require.NoError(t, err)
	require.NoError(t, catalog.Deactivate(ctx, retiredPlan.ID, 0))

	t.Run("public only", func(t *testing.T) {
		plans, err := catalog.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, public.ID, plans[0].ID)
	})

	t.Run("including private", func(t *testing.T) {
		plans, err := catalog.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, plans, 2)

		ids := []string{plans[0].ID, plans[1].ID}
		assert.Contains(t, ids, public.ID)
		assert.Contains(t, ids, created.ID)
	})
}

func TestPlanPriceFor(t *testing.T) {
	t.Parallel()

	p := testPlan("Basic", plan.TypeBasic, 1000)

	assert.EqualValues(t, 1000, p.PriceFor(plan.CycleMonthly).Amount)
	assert.EqualValues(t, 10000, p.PriceFor(plan.CycleYearly).Amount)
	// Falls back to base price for cycles without an option.
	assert.EqualValues(t, 1000, p.PriceFor(plan.CycleQuarterly).Amount)
}
