package entitlement

import "time"

type UpsertSubscriptionRequest struct {
	ProductID     string   `json:"product_id" binding:"required"`
	Status        string   `json:"status" binding:"required,oneof=TRIAL ACTIVE PAST_DUE CANCELLED"`
	TrialEnd      *string  `json:"trial_end,omitempty" binding:"omitempty,datetime=2006-01-02"`
	DiscountType  string   `json:"discount_type,omitempty" binding:"omitempty,oneof=PERCENT FLAT"`
	DiscountValue *float64 `json:"discount_value,omitempty" binding:"omitempty,gte=0"`
}

type UpdateDisabledModulesRequest struct {
	// An empty list clears all overrides.
	DisabledModules []string `json:"disabled_modules" binding:"dive,min=1"`
}

type SubscriptionResponse struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	ProductID     string     `json:"product_id"`
	Status        string     `json:"status"`
	TrialEnd      *time.Time `json:"trial_end,omitempty"`
	DiscountType  string     `json:"discount_type,omitempty"`
	DiscountValue float64    `json:"discount_value"`
}

type PlanResponse struct {
	ProductID string     `json:"product_id"`
	Status    string     `json:"status"`
	TrialEnd  *time.Time `json:"trial_end,omitempty"`
}

type MyEntitlementsResponse struct {
	Plan     *PlanResponse `json:"plan"`
	Features Entitlements  `json:"features"`
}
