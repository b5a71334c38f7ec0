package entitlement

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FindTenant(ctx context.Context, tenantID string) (*Tenant, error)
	FindActiveSubscriptions(ctx context.Context, tenantID string) ([]ProductSubscription, error)
	FindSubscriptionByProduct(ctx context.Context, tenantID string, productID string) (*ProductSubscription, error)
	FindFeaturesByProducts(ctx context.Context, productIDs []string) ([]ProductFeature, error)
	UpsertSubscription(ctx context.Context, sub *ProductSubscription) error
	UpdateDisabledModules(ctx context.Context, tenantID string, modules []string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	var tenant Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindActiveSubscriptions returns the subscriptions that contribute
// entitlements. TRIAL counts as active until it is moved to PAST_DUE or
// CANCELLED by billing.
func (r *gormRepository) FindActiveSubscriptions(ctx context.Context, tenantID string) ([]ProductSubscription, error) {
	var subs []ProductSubscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID, []string{SubscriptionTrial, SubscriptionActive}).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *gormRepository) FindSubscriptionByProduct(ctx context.Context, tenantID string, productID string) (*ProductSubscription, error) {
	var sub ProductSubscription
	err := r.db.WithContext(ctx).
		First(&sub, "tenant_id = ? AND product_id = ?", tenantID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) FindFeaturesByProducts(ctx context.Context, productIDs []string) ([]ProductFeature, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var features []ProductFeature
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}

func (r *gormRepository) UpsertSubscription(ctx context.Context, sub *ProductSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "trial_end", "discount_type", "discount_value", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *gormRepository) UpdateDisabledModules(ctx context.Context, tenantID string, modules []string) error {
	res := r.db.WithContext(ctx).
		Model(&Tenant{}).
		Where("id = ?", tenantID).
		Update("disabled_modules", modules)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
