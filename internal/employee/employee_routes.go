package employee

import (
	"go-peoplehub/internal/authz"
	"go-peoplehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the directory endpoints. limitGuard is the entitlement
// CheckLimit middleware for max_employees, built by the registry so this
// package stays decoupled from the entitlement service.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	policy *authz.Policy,
	limitGuard gin.HandlerFunc,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", authz.Authorize(policy, "employee", "read"), handler.GetAll)
		employees.GET("/:id", authz.Authorize(policy, "employee", "read"), handler.GetById)

		create := []gin.HandlerFunc{authz.Authorize(policy, "employee", "create")}
		if limitGuard != nil {
			create = append(create, limitGuard)
		}
		create = append(create, handler.Create)
		employees.POST("", create...)
	}
}
