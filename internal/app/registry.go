package app

import (
	"context"
	"database/sql"

	"go-peoplehub/internal/authz"
	"go-peoplehub/internal/employee"
	"go-peoplehub/internal/entitlement"
	"go-peoplehub/internal/leave"
	"go-peoplehub/internal/messaging/kafka"
	"go-peoplehub/internal/workcalendar"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// leaveDirectory adapts the employee repository to the read-only directory
// slice the leave service needs for approver inbox display joins.
type leaveDirectory struct {
	repo employee.Repository
}

func (d leaveDirectory) ProfilesByIDs(ctx context.Context, tenantID string, ids []string) (map[string]leave.RequesterProfile, error) {
	employees, err := d.repo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]leave.RequesterProfile, len(employees))
	for _, e := range employees {
		profiles[e.ID.String()] = leave.RequesterProfile{
			FullName:    e.FullName,
			AvatarURL:   e.AvatarURL,
			Designation: e.Designation,
		}
	}
	return profiles, nil
}

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	entitlementRepo := entitlement.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Authorization Core ---
	policy, err := authz.NewPolicy()
	if err != nil {
		return err
	}
	scopes := authz.NewScopeResolver(employeeRepo)

	// --- Services ---
	entitlementService := entitlement.NewService(entitlementRepo, rdb)
	employeeService := employee.NewService(db, employeeRepo, outboxRepo)
	calendar := workcalendar.NewHolidayAware(gormDB)
	leaveService := leave.NewService(db, leaveRepo, leaveDirectory{repo: employeeRepo}, scopes, calendar, outboxRepo)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	entitlementHandler := entitlement.NewHandler(entitlementService)

	// --- Entitlement Gates ---
	leaveGuard := entitlement.EnsureFeatureEnabled(entitlementService, entitlement.FeatureLeaveManagement)
	headcountGuard := entitlement.CheckLimit(entitlementService, entitlement.FeatureMaxEmployees, employeeService.CountActive)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, policy, headcountGuard)
		leave.RegisterRoutes(api, leaveHandler, policy, leaveGuard, rdb)
		entitlement.RegisterRoutes(api, entitlementHandler, policy)
	}

	return nil
}
