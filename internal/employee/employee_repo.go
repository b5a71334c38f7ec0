package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Employee, error)
	FindAllByTenant(ctx context.Context, tenantID string) ([]Employee, error)
	FindByIDs(ctx context.Context, tenantID string, ids []string) ([]Employee, error)
	DirectReportIDs(ctx context.Context, tenantID, managerID string) ([]string, error)
	TeamMemberIDs(ctx context.Context, tenantID, employeeID string) ([]string, error)
	CountActiveByTenant(ctx context.Context, tenantID string) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByIDAndTenant(ctx context.Context, tenantID, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAllByTenant(ctx context.Context, tenantID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("id IN ?", ids).
		Find(&employees).Error
	return employees, err
}

func (r *repository) DirectReportIDs(ctx context.Context, tenantID, managerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("tenant_id = ?", tenantID).
		Where("reporting_manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) TeamMemberIDs(ctx context.Context, tenantID, employeeID string) ([]string, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&e, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	if e.TeamID == nil || *e.TeamID == "" {
		return nil, nil
	}

	var ids []string
	err = r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("tenant_id = ?", tenantID).
		Where("team_id = ?", *e.TeamID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) CountActiveByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", StatusActive).
		Count(&count).Error
	return count, err
}
