package entitlement_test

import (
	"context"
	"encoding/json"
	"testing"

	"go-peoplehub/internal/entitlement"
	entitlementerrors "go-peoplehub/internal/entitlement/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEntitlementRepository struct {
	findTenantFn                func(ctx context.Context, tenantID string) (*entitlement.Tenant, error)
	findActiveSubscriptionsFn   func(ctx context.Context, tenantID string) ([]entitlement.ProductSubscription, error)
	findSubscriptionByProductFn func(ctx context.Context, tenantID, productID string) (*entitlement.ProductSubscription, error)
	findFeaturesByProductsFn    func(ctx context.Context, productIDs []string) ([]entitlement.ProductFeature, error)
	upsertSubscriptionFn        func(ctx context.Context, sub *entitlement.ProductSubscription) error
	updateDisabledModulesFn     func(ctx context.Context, tenantID string, modules []string) error
}

func (f *fakeEntitlementRepository) FindTenant(ctx context.Context, tenantID string) (*entitlement.Tenant, error) {
	if f.findTenantFn != nil {
		return f.findTenantFn(ctx, tenantID)
	}
	return nil, nil
}

func (f *fakeEntitlementRepository) FindActiveSubscriptions(ctx context.Context, tenantID string) ([]entitlement.ProductSubscription, error) {
	if f.findActiveSubscriptionsFn != nil {
		return f.findActiveSubscriptionsFn(ctx, tenantID)
	}
	return nil, nil
}

func (f *fakeEntitlementRepository) FindSubscriptionByProduct(ctx context.Context, tenantID, productID string) (*entitlement.ProductSubscription, error) {
	if f.findSubscriptionByProductFn != nil {
		return f.findSubscriptionByProductFn(ctx, tenantID, productID)
	}
	return nil, nil
}

func (f *fakeEntitlementRepository) FindFeaturesByProducts(ctx context.Context, productIDs []string) ([]entitlement.ProductFeature, error) {
	if f.findFeaturesByProductsFn != nil {
		return f.findFeaturesByProductsFn(ctx, productIDs)
	}
	return nil, nil
}

func (f *fakeEntitlementRepository) UpsertSubscription(ctx context.Context, sub *entitlement.ProductSubscription) error {
	if f.upsertSubscriptionFn != nil {
		return f.upsertSubscriptionFn(ctx, sub)
	}
	return nil
}

func (f *fakeEntitlementRepository) UpdateDisabledModules(ctx context.Context, tenantID string, modules []string) error {
	if f.updateDisabledModulesFn != nil {
		return f.updateDisabledModulesFn(ctx, tenantID, modules)
	}
	return nil
}

type entitlementServiceDeps struct {
	service   entitlement.Service
	repo      *fakeEntitlementRepository
	redisMock redismock.ClientMock
}

func setupEntitlementServiceTest(t *testing.T) *entitlementServiceDeps {
	t.Helper()

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEntitlementRepository{}
	svc := entitlement.NewService(repo, rdb)

	return &entitlementServiceDeps{
		service:   svc,
		repo:      repo,
		redisMock: redisMock,
	}
}

// twoProductCatalog models one base plan and one add-on: the base plan keeps
// leave_management off with a headcount of 25, the add-on switches it on and
// raises the headcount to 100.
func twoProductCatalog(deps *entitlementServiceDeps, tenantID string) {
	tid := uuid.MustParse(tenantID)
	deps.repo.findActiveSubscriptionsFn = func(ctx context.Context, got string) ([]entitlement.ProductSubscription, error) {
		return []entitlement.ProductSubscription{
			{ID: uuid.New(), TenantID: tid, ProductID: "p_base", Status: entitlement.SubscriptionActive},
			{ID: uuid.New(), TenantID: tid, ProductID: "p_plus", Status: entitlement.SubscriptionTrial},
		}, nil
	}
	deps.repo.findFeaturesByProductsFn = func(ctx context.Context, productIDs []string) ([]entitlement.ProductFeature, error) {
		return []entitlement.ProductFeature{
			{ProductID: "p_base", Key: "leave_management", Type: entitlement.FeatureBoolean, BoolValue: false},
			{ProductID: "p_base", Key: "max_employees", Type: entitlement.FeatureNumeric, NumericValue: 25},
			{ProductID: "p_plus", Key: "leave_management", Type: entitlement.FeatureBoolean, BoolValue: true},
			{ProductID: "p_plus", Key: "max_employees", Type: entitlement.FeatureNumeric, NumericValue: 100},
		}, nil
	}
}

func TestEntitlementService_GetTenantEntitlements(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New().String()
	cacheKey := entitlement.GetEntitlementKey(tenantID)

	t.Run("cache miss folds across products", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		twoProductCatalog(deps, tenantID)

		expected := entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: true},
			"max_employees":    {Type: entitlement.FeatureNumeric, Numeric: 100},
		}
		expectedJSON, err := json.Marshal(expected)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, expectedJSON, entitlement.EntitlementTTL).SetVal("OK")

		ents, err := deps.service.GetTenantEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.True(t, ents.Enabled("leave_management"))
		limit, ok := ents.Limit("max_employees")
		assert.True(t, ok)
		assert.Equal(t, float64(100), limit)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		cached := entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: true},
		}
		cachedJSON, err := json.Marshal(cached)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).SetVal(string(cachedJSON))
		deps.repo.findActiveSubscriptionsFn = func(ctx context.Context, got string) ([]entitlement.ProductSubscription, error) {
			t.Fatal("repository must not be queried on a cache hit")
			return nil, nil
		}

		ents, err := deps.service.GetTenantEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.True(t, ents.Enabled("leave_management"))
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("disabled modules force booleans off", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		twoProductCatalog(deps, tenantID)
		deps.repo.findTenantFn = func(ctx context.Context, got string) (*entitlement.Tenant, error) {
			return &entitlement.Tenant{
				ID:              uuid.MustParse(tenantID),
				Name:            "Acme",
				Status:          entitlement.TenantActive,
				DisabledModules: []string{"leave_management"},
			}, nil
		}

		expected := entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: false},
			"max_employees":    {Type: entitlement.FeatureNumeric, Numeric: 100},
		}
		expectedJSON, err := json.Marshal(expected)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, expectedJSON, entitlement.EntitlementTTL).SetVal("OK")

		ents, err := deps.service.GetTenantEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.False(t, ents.Enabled("leave_management"))
		limit, ok := ents.Limit("max_employees")
		assert.True(t, ok)
		assert.Equal(t, float64(100), limit)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("no subscriptions yields an empty map", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, []byte("{}"), entitlement.EntitlementTTL).SetVal("OK")

		ents, err := deps.service.GetTenantEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.Empty(t, ents)
		assert.False(t, ents.Enabled("leave_management"))
		_, ok := ents.Limit("max_employees")
		assert.False(t, ok)
	})

	t.Run("invalid tenant id", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		_, err := deps.service.GetTenantEntitlements(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, entitlementerrors.ErrInvalidTenantID)
	})
}

func TestEntitlementService_InvalidateRecomputes(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New().String()
	tid := uuid.MustParse(tenantID)
	cacheKey := entitlement.GetEntitlementKey(tenantID)

	t.Run("read after invalidate reflects the mutated subscriptions", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		catalog := map[string][]entitlement.ProductFeature{
			"p_base": {
				{ProductID: "p_base", Key: "leave_management", Type: entitlement.FeatureBoolean, BoolValue: false},
				{ProductID: "p_base", Key: "max_employees", Type: entitlement.FeatureNumeric, NumericValue: 25},
			},
			"p_plus": {
				{ProductID: "p_plus", Key: "leave_management", Type: entitlement.FeatureBoolean, BoolValue: true},
				{ProductID: "p_plus", Key: "max_employees", Type: entitlement.FeatureNumeric, NumericValue: 100},
			},
		}
		subscriptions := []entitlement.ProductSubscription{
			{ID: uuid.New(), TenantID: tid, ProductID: "p_base", Status: entitlement.SubscriptionActive},
		}
		deps.repo.findActiveSubscriptionsFn = func(ctx context.Context, got string) ([]entitlement.ProductSubscription, error) {
			return subscriptions, nil
		}
		deps.repo.findFeaturesByProductsFn = func(ctx context.Context, productIDs []string) ([]entitlement.ProductFeature, error) {
			var features []entitlement.ProductFeature
			for _, id := range productIDs {
				features = append(features, catalog[id]...)
			}
			return features, nil
		}

		before := entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: false},
			"max_employees":    {Type: entitlement.FeatureNumeric, Numeric: 25},
		}
		beforeJSON, err := json.Marshal(before)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, beforeJSON, entitlement.EntitlementTTL).SetVal("OK")

		ents, err := deps.service.GetTenantEntitlements(ctx, tenantID)
		assert.NoError(t, err)
		assert.False(t, ents.Enabled("leave_management"))

		// The add-on lands and the snapshot is invalidated: the next read
		// must hit the repository again, never the pre-invalidation value.
		subscriptions = append(subscriptions, entitlement.ProductSubscription{
			ID: uuid.New(), TenantID: tid, ProductID: "p_plus", Status: entitlement.SubscriptionTrial,
		})

		after := entitlement.Entitlements{
			"leave_management": {Type: entitlement.FeatureBoolean, Bool: true},
			"max_employees":    {Type: entitlement.FeatureNumeric, Numeric: 100},
		}
		afterJSON, err := json.Marshal(after)
		assert.NoError(t, err)

		deps.redisMock.ExpectDel(cacheKey).SetVal(1)
		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, afterJSON, entitlement.EntitlementTTL).SetVal("OK")

		assert.NoError(t, deps.service.Invalidate(ctx, tenantID))

		ents, err = deps.service.GetTenantEntitlements(ctx, tenantID)
		assert.NoError(t, err)
		assert.True(t, ents.Enabled("leave_management"))
		limit, ok := ents.Limit("max_employees")
		assert.True(t, ok)
		assert.Equal(t, float64(100), limit)

		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}

func TestEntitlementService_UpsertSubscription(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New().String()

	t.Run("success invalidates the cache", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		deps.repo.findTenantFn = func(ctx context.Context, got string) (*entitlement.Tenant, error) {
			return &entitlement.Tenant{ID: uuid.MustParse(tenantID), Name: "Acme"}, nil
		}
		var saved *entitlement.ProductSubscription
		deps.repo.upsertSubscriptionFn = func(ctx context.Context, sub *entitlement.ProductSubscription) error {
			saved = sub
			return nil
		}

		deps.redisMock.ExpectDel(entitlement.GetEntitlementKey(tenantID)).SetVal(1)

		resp, err := deps.service.UpsertSubscription(ctx, tenantID, entitlement.UpsertSubscriptionRequest{
			ProductID: "p_plus",
			Status:    entitlement.SubscriptionActive,
		})

		assert.NoError(t, err)
		assert.NotNil(t, saved)
		assert.Equal(t, "p_plus", saved.ProductID)
		assert.Equal(t, entitlement.SubscriptionActive, saved.Status)
		assert.Equal(t, "p_plus", resp.ProductID)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("unknown tenant", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		deps.repo.findTenantFn = func(ctx context.Context, got string) (*entitlement.Tenant, error) {
			return nil, nil
		}

		_, err := deps.service.UpsertSubscription(ctx, tenantID, entitlement.UpsertSubscriptionRequest{
			ProductID: "p_plus",
			Status:    entitlement.SubscriptionActive,
		})

		assert.ErrorIs(t, err, entitlementerrors.ErrTenantNotFound)
	})
}

func TestEntitlementService_UpdateDisabledModules(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New().String()

	t.Run("success invalidates the cache", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		var savedModules []string
		deps.repo.updateDisabledModulesFn = func(ctx context.Context, got string, modules []string) error {
			savedModules = modules
			return nil
		}

		deps.redisMock.ExpectDel(entitlement.GetEntitlementKey(tenantID)).SetVal(1)

		err := deps.service.UpdateDisabledModules(ctx, tenantID, entitlement.UpdateDisabledModulesRequest{
			DisabledModules: []string{"leave_management"},
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"leave_management"}, savedModules)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("nil modules clears the override list", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		var savedModules []string
		deps.repo.updateDisabledModulesFn = func(ctx context.Context, got string, modules []string) error {
			savedModules = modules
			return nil
		}

		deps.redisMock.ExpectDel(entitlement.GetEntitlementKey(tenantID)).SetVal(1)

		err := deps.service.UpdateDisabledModules(ctx, tenantID, entitlement.UpdateDisabledModulesRequest{})

		assert.NoError(t, err)
		assert.NotNil(t, savedModules)
		assert.Empty(t, savedModules)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		deps.repo.updateDisabledModulesFn = func(ctx context.Context, got string, modules []string) error {
			return gorm.ErrRecordNotFound
		}

		err := deps.service.UpdateDisabledModules(ctx, tenantID, entitlement.UpdateDisabledModulesRequest{
			DisabledModules: []string{"leave_management"},
		})

		assert.ErrorIs(t, err, entitlementerrors.ErrTenantNotFound)
	})
}

func TestEntitlementService_GetMyEntitlements(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New().String()
	cacheKey := entitlement.GetEntitlementKey(tenantID)

	t.Run("includes the base plan", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		twoProductCatalog(deps, tenantID)
		deps.repo.findSubscriptionByProductFn = func(ctx context.Context, got, productID string) (*entitlement.ProductSubscription, error) {
			assert.Equal(t, entitlement.BaseProductID, productID)
			return &entitlement.ProductSubscription{
				ID:        uuid.New(),
				TenantID:  uuid.MustParse(tenantID),
				ProductID: entitlement.BaseProductID,
				Status:    entitlement.SubscriptionActive,
			}, nil
		}

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.Regexp().ExpectSet(cacheKey, `.*`, entitlement.EntitlementTTL).SetVal("OK")

		resp, err := deps.service.GetMyEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.NotNil(t, resp.Plan)
		assert.Equal(t, entitlement.BaseProductID, resp.Plan.ProductID)
		assert.Equal(t, entitlement.SubscriptionActive, resp.Plan.Status)
		assert.True(t, resp.Features.Enabled("leave_management"))
	})

	t.Run("no base subscription leaves plan empty", func(t *testing.T) {
		deps := setupEntitlementServiceTest(t)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()
		deps.redisMock.ExpectSet(cacheKey, []byte("{}"), entitlement.EntitlementTTL).SetVal("OK")

		resp, err := deps.service.GetMyEntitlements(ctx, tenantID)

		assert.NoError(t, err)
		assert.Nil(t, resp.Plan)
		assert.Empty(t, resp.Features)
	})
}
