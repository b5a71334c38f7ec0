package entitlement

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TenantActive    = "ACTIVE"
	TenantSuspended = "SUSPENDED"
)

const (
	SubscriptionTrial     = "TRIAL"
	SubscriptionActive    = "ACTIVE"
	SubscriptionPastDue   = "PAST_DUE"
	SubscriptionCancelled = "CANCELLED"
)

const (
	FeatureBoolean = "BOOLEAN"
	FeatureNumeric = "NUMERIC"
)

// BaseProductID identifies the subscription whose product is shown as the
// tenant's plan.
const BaseProductID = "p_base"

// Well-known feature keys used by the route gates.
const (
	FeatureLeaveManagement = "leave_management"
	FeatureMaxEmployees    = "max_employees"
)

type Tenant struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"type:varchar(120);not null"`
	Status string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	// Explicit per-tenant off switches. They can force a boolean feature to
	// false, never raise one to true.
	DisabledModules []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_tenants_deleted_at"`
}

type ProductSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_subscriptions_tenant_product"`
	ProductID string    `gorm:"type:varchar(60);not null;uniqueIndex:uq_subscriptions_tenant_product"`
	Status    string    `gorm:"type:varchar(20);not null;default:'TRIAL'"`

	TrialEnd      *time.Time
	DiscountType  string  `gorm:"type:varchar(20)"`
	DiscountValue float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductFeature struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID string    `gorm:"type:varchar(60);not null;index:idx_product_features_product"`
	Key       string    `gorm:"type:varchar(80);not null"`
	Type      string    `gorm:"type:varchar(10);not null"`

	BoolValue    bool    `gorm:"not null;default:false"`
	NumericValue float64 `gorm:"not null;default:0"`
}

// FeatureValue is one resolved entitlement. It serializes as {type, value}
// so cached snapshots read the same as the API response.
type FeatureValue struct {
	Type    string
	Bool    bool
	Numeric float64
}

func (v FeatureValue) MarshalJSON() ([]byte, error) {
	var value any
	switch v.Type {
	case FeatureBoolean:
		value = v.Bool
	case FeatureNumeric:
		value = v.Numeric
	default:
		return nil, fmt.Errorf("unknown feature type: %s", v.Type)
	}
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}{Type: v.Type, Value: value})
}

func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Type = raw.Type
	switch raw.Type {
	case FeatureBoolean:
		return json.Unmarshal(raw.Value, &v.Bool)
	case FeatureNumeric:
		return json.Unmarshal(raw.Value, &v.Numeric)
	default:
		return fmt.Errorf("unknown feature type: %s", raw.Type)
	}
}

// Entitlements is a tenant's effective feature map. A key absent from the map
// means the same as false / zero to callers.
type Entitlements map[string]FeatureValue

// Enabled reports whether key resolves to a true boolean feature.
func (e Entitlements) Enabled(key string) bool {
	v, ok := e[key]
	return ok && v.Type == FeatureBoolean && v.Bool
}

// Limit returns the numeric entitlement for key, or ok=false when the key is
// absent or not numeric (callers treat that as unbounded).
func (e Entitlements) Limit(key string) (float64, bool) {
	v, ok := e[key]
	if !ok || v.Type != FeatureNumeric {
		return 0, false
	}
	return v.Numeric, true
}
