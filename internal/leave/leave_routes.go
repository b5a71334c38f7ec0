package leave

import (
	"go-peoplehub/internal/authz"
	"go-peoplehub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	policy *authz.Policy,
	featureGuard gin.HandlerFunc,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	if featureGuard != nil {
		// The whole module sits behind the leave_management entitlement.
		leaves.Use(featureGuard)
	}
	{
		leaves.POST("/apply", authz.Authorize(policy, "leave", "create"), middleware.Idempotency(rdb), handler.Apply)
		leaves.GET("/my", authz.Authorize(policy, "leave", "read"), handler.GetMy)
		leaves.GET("/balance/my", authz.Authorize(policy, "leave", "read"), handler.GetMyBalance)
		leaves.GET("/pending", authz.Authorize(policy, "leave", "approve"), handler.GetPending)
		leaves.PUT("/:id/status", authz.Authorize(policy, "leave", "approve"), handler.UpdateStatus)
		leaves.POST("/:id/cancel", authz.Authorize(policy, "leave", "cancel"), handler.Cancel)
		leaves.GET("/calendar", authz.Authorize(policy, "leave", "calendar"), handler.GetCalendar)
	}
}
