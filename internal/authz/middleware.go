package authz

import (
	"net/http"

	"go-peoplehub/internal/shared/apperror"
	"go-peoplehub/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Authorize enforces resource:action for the role placed in the gin context
// by the auth middleware.
func Authorize(policy *Policy, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := policy.Enforce(role, resource, action)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, err.Error(), nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				"You do not have permission to access this resource",
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFromContext rebuilds the Principal from gin context values.
func PrincipalFromContext(c *gin.Context) Principal {
	return Principal{
		EmployeeID: c.GetString("employee_id"),
		TenantID:   c.GetString("tenant_id"),
		Role:       c.GetString("role"),
	}
}
