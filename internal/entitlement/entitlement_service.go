package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entitlementerrors "go-peoplehub/internal/entitlement/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	EntitlementKeyPrefix = "entitlements:"

	// Short enough that plan changes land without an explicit flush, long
	// enough to keep the per-request gate checks off the database.
	EntitlementTTL = 5 * time.Minute
)

func GetEntitlementKey(tenantID string) string {
	return EntitlementKeyPrefix + tenantID
}

type Service interface {
	GetTenantEntitlements(ctx context.Context, tenantID string) (Entitlements, error)
	GetMyEntitlements(ctx context.Context, tenantID string) (MyEntitlementsResponse, error)
	UpsertSubscription(ctx context.Context, tenantID string, req UpsertSubscriptionRequest) (SubscriptionResponse, error)
	UpdateDisabledModules(ctx context.Context, tenantID string, req UpdateDisabledModulesRequest) error
	Invalidate(ctx context.Context, tenantID string) error
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("entitlement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("entitlement.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// GetTenantEntitlements returns the tenant's effective feature map. Reads go
// through redis first; a miss falls to a singleflight-guarded recompute so
// concurrent requests for the same tenant share one database round trip.
func (s *service) GetTenantEntitlements(ctx context.Context, tenantID string) (Entitlements, error) {
	if _, err := uuid.Parse(tenantID); err != nil {
		return nil, entitlementerrors.ErrInvalidTenantID
	}

	cacheKey := GetEntitlementKey(tenantID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var ents Entitlements
			if uerr := json.Unmarshal([]byte(cached), &ents); uerr == nil {
				return ents, nil
			} else {
				s.logger.Warn("discarding unreadable entitlement cache entry",
					zap.String("tenant_id", tenantID),
					zap.Error(uerr),
				)
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("entitlement cache read failed, falling back to db",
				zap.String("tenant_id", tenantID),
				zap.Error(err),
			)
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		ents, err := s.computeEntitlements(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(ents); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, jsonData, EntitlementTTL).Err(); err != nil {
					s.logger.Warn("failed to cache entitlements",
						zap.String("tenant_id", tenantID),
						zap.Error(err),
					)
				}
			}
		}

		return ents, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(Entitlements), nil
}

// computeEntitlements folds the tenant's active subscriptions into one map.
// Boolean features OR across products, numeric features take the MAX, and the
// tenant's disabled modules force the named booleans off afterwards.
func (s *service) computeEntitlements(ctx context.Context, tenantID string) (Entitlements, error) {
	subs, err := s.repo.FindActiveSubscriptions(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find active subscriptions: %w", err)
	}

	productIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		productIDs = append(productIDs, sub.ProductID)
	}

	features, err := s.repo.FindFeaturesByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find product features: %w", err)
	}

	ents := make(Entitlements, len(features))
	for _, f := range features {
		current, seen := ents[f.Key]
		switch f.Type {
		case FeatureBoolean:
			ents[f.Key] = FeatureValue{Type: FeatureBoolean, Bool: f.BoolValue || (seen && current.Bool)}
		case FeatureNumeric:
			value := f.NumericValue
			if seen && current.Numeric > value {
				value = current.Numeric
			}
			ents[f.Key] = FeatureValue{Type: FeatureNumeric, Numeric: value}
		default:
			s.logger.Warn("skipping feature with unknown type",
				zap.String("key", f.Key),
				zap.String("type", f.Type),
			)
		}
	}

	tenant, err := s.repo.FindTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	if tenant != nil {
		for _, module := range tenant.DisabledModules {
			if v, ok := ents[module]; ok && v.Type == FeatureBoolean {
				v.Bool = false
				ents[module] = v
			}
		}
	}

	return ents, nil
}

func (s *service) GetMyEntitlements(ctx context.Context, tenantID string) (MyEntitlementsResponse, error) {
	ents, err := s.GetTenantEntitlements(ctx, tenantID)
	if err != nil {
		return MyEntitlementsResponse{}, err
	}

	resp := MyEntitlementsResponse{Features: ents}

	base, err := s.repo.FindSubscriptionByProduct(ctx, tenantID, BaseProductID)
	if err != nil {
		return MyEntitlementsResponse{}, fmt.Errorf("find base subscription: %w", err)
	}
	if base != nil {
		resp.Plan = &PlanResponse{
			ProductID: base.ProductID,
			Status:    base.Status,
			TrialEnd:  base.TrialEnd,
		}
	}

	return resp, nil
}

func (s *service) UpsertSubscription(ctx context.Context, tenantID string, req UpsertSubscriptionRequest) (SubscriptionResponse, error) {
	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return SubscriptionResponse{}, entitlementerrors.ErrInvalidTenantID
	}

	tenant, err := s.repo.FindTenant(ctx, tenantID)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	if tenant == nil {
		return SubscriptionResponse{}, entitlementerrors.ErrTenantNotFound
	}

	sub := &ProductSubscription{
		ID:        uuid.New(),
		TenantID:  tenantUUID,
		ProductID: req.ProductID,
		Status:    req.Status,
	}
	if req.TrialEnd != nil {
		t, err := time.Parse("2006-01-02", *req.TrialEnd)
		if err != nil {
			return SubscriptionResponse{}, err
		}
		sub.TrialEnd = &t
	}
	if req.DiscountType != "" {
		sub.DiscountType = req.DiscountType
	}
	if req.DiscountValue != nil {
		sub.DiscountValue = *req.DiscountValue
	}

	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return SubscriptionResponse{}, err
	}

	// Drop the cached snapshot before answering so the next gate check sees
	// the new plan instead of waiting out the TTL.
	if err := s.Invalidate(ctx, tenantID); err != nil {
		s.logger.Error("failed to invalidate entitlements after subscription change",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}

	s.logger.Info("subscription upserted",
		zap.String("tenant_id", tenantID),
		zap.String("product_id", req.ProductID),
		zap.String("status", req.Status),
	)

	return mapToSubscriptionResponse(*sub), nil
}

func (s *service) UpdateDisabledModules(ctx context.Context, tenantID string, req UpdateDisabledModulesRequest) error {
	if _, err := uuid.Parse(tenantID); err != nil {
		return entitlementerrors.ErrInvalidTenantID
	}

	modules := req.DisabledModules
	if modules == nil {
		modules = []string{}
	}

	if err := s.repo.UpdateDisabledModules(ctx, tenantID, modules); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlementerrors.ErrTenantNotFound
		}
		return err
	}

	if err := s.Invalidate(ctx, tenantID); err != nil {
		s.logger.Error("failed to invalidate entitlements after module change",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}

	s.logger.Info("disabled modules updated",
		zap.String("tenant_id", tenantID),
		zap.Strings("disabled_modules", modules),
	)

	return nil
}

func (s *service) Invalidate(ctx context.Context, tenantID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, GetEntitlementKey(tenantID)).Err()
}

func mapToSubscriptionResponse(sub ProductSubscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:            sub.ID.String(),
		TenantID:      sub.TenantID.String(),
		ProductID:     sub.ProductID,
		Status:        sub.Status,
		TrialEnd:      sub.TrialEnd,
		DiscountType:  sub.DiscountType,
		DiscountValue: sub.DiscountValue,
	}
}
