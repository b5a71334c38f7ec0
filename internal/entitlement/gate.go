package entitlement

import (
	"context"
	"net/http"

	"go-peoplehub/internal/shared/apperror"
	"go-peoplehub/internal/shared/contextutil"
	"go-peoplehub/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UsageFunc reports a tenant's current consumption for a numeric feature,
// e.g. the active employee headcount for max_employees.
type UsageFunc func(ctx context.Context, tenantID string) (int64, error)

// EnsureFeatureEnabled blocks the request unless the tenant's boolean feature
// resolves to true. A key that is absent from the entitlement map counts as
// disabled.
func EnsureFeatureEnabled(svc Service, featureKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			response.Error(c, http.StatusBadRequest, apperror.CodeTenantRequired, "tenant context required", nil)
			c.Abort()
			return
		}

		ents, err := svc.GetTenantEntitlements(c.Request.Context(), tenantID)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}

		if !ents.Enabled(featureKey) {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Debug("feature gate rejected request",
				zap.String("tenant_id", tenantID),
				zap.String("feature", featureKey),
			)
			response.Error(c, http.StatusForbidden, apperror.CodeFeatureDisabled,
				"feature "+featureKey+" is not enabled for this tenant",
				gin.H{"feature": featureKey},
			)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CheckLimit blocks the request when the tenant's usage has reached the
// numeric entitlement for featureKey. A tenant with no such entitlement, or a
// non-numeric one, passes unchecked.
func CheckLimit(svc Service, featureKey string, usage UsageFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			response.Error(c, http.StatusBadRequest, apperror.CodeTenantRequired, "tenant context required", nil)
			c.Abort()
			return
		}

		ents, err := svc.GetTenantEntitlements(c.Request.Context(), tenantID)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}

		limit, ok := ents.Limit(featureKey)
		if !ok {
			c.Next()
			return
		}

		current, err := usage(c.Request.Context(), tenantID)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}

		if float64(current) >= limit {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Debug("limit gate rejected request",
				zap.String("tenant_id", tenantID),
				zap.String("feature", featureKey),
				zap.Int64("usage", current),
				zap.Float64("limit", limit),
			)
			response.Error(c, http.StatusForbidden, apperror.CodeLimitReached,
				"limit "+featureKey+" reached for this tenant",
				gin.H{"feature": featureKey, "usage": current, "limit": limit},
			)
			c.Abort()
			return
		}

		c.Next()
	}
}

func abortWithServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
	c.Abort()
}
