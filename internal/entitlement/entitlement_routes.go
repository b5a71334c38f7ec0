package entitlement

import (
	"go-peoplehub/internal/authz"
	"go-peoplehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy *authz.Policy) {
	tenant := r.Group("/tenant")
	tenant.Use(middleware.AuthMiddleware())
	{
		tenant.GET("/entitlements", authz.Authorize(policy, "entitlement", "read"), handler.GetMy)
	}

	admin := r.Group("/admin/tenants")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.PUT("/:id/subscription", authz.Authorize(policy, "tenant", "manage"), handler.UpsertSubscription)
		admin.PUT("/:id/modules", authz.Authorize(policy, "tenant", "manage"), handler.UpdateDisabledModules)
	}
}
