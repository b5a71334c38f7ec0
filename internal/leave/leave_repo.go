package leave

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRequest(ctx context.Context, l *Request) error
	FindRequestByIDAndTenant(ctx context.Context, tenantID, id string) (*Request, error)
	FindRequestsByEmployee(ctx context.Context, tenantID, employeeID string) ([]Request, error)
	FindPendingByTenant(ctx context.Context, tenantID string) ([]Request, error)
	FindPendingByEmployees(ctx context.Context, tenantID string, employeeIDs []string) ([]Request, error)
	FindApprovedByTenant(ctx context.Context, tenantID string, from, to *time.Time) ([]Request, error)
	FindApprovedByEmployees(ctx context.Context, tenantID string, employeeIDs []string, from, to *time.Time) ([]Request, error)
	UpdateRequest(ctx context.Context, l *Request) error

	FindBalance(ctx context.Context, employeeID string, year int) (*Balance, error)
	ApplyQuotaDeduction(ctx context.Context, employeeID string, year int, leaveType string, days int) (bool, error)
	AddLossOfPay(ctx context.Context, employeeID string, year int, days int) (bool, error)
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

func (r *repository) CreateRequest(ctx context.Context, l *Request) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindRequestByIDAndTenant(ctx context.Context, tenantID, id string) (*Request, error) {
	var l Request
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindRequestsByEmployee(ctx context.Context, tenantID, employeeID string) ([]Request, error) {
	var leaves []Request
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindPendingByTenant(ctx context.Context, tenantID string) ([]Request, error) {
	var leaves []Request
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindPendingByEmployees(ctx context.Context, tenantID string, employeeIDs []string) ([]Request, error) {
	// An empty scope matches nothing; do not fall through to tenant-wide.
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var leaves []Request
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", StatusPending).
		Where("employee_id IN ?", employeeIDs).
		Order("created_at ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindApprovedByTenant(ctx context.Context, tenantID string, from, to *time.Time) ([]Request, error) {
	db := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", StatusApproved)
	db = applyDateRange(db, from, to)

	var leaves []Request
	err := db.Order("start_date ASC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindApprovedByEmployees(ctx context.Context, tenantID string, employeeIDs []string, from, to *time.Time) ([]Request, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", StatusApproved).
		Where("employee_id IN ?", employeeIDs)
	db = applyDateRange(db, from, to)

	var leaves []Request
	err := db.Order("start_date ASC").Find(&leaves).Error
	return leaves, err
}

func applyDateRange(db *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where("end_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("start_date <= ?", *to)
	}
	return db
}

func (r *repository) UpdateRequest(ctx context.Context, l *Request) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) FindBalance(ctx context.Context, employeeID string, year int) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ApplyQuotaDeduction deducts days from the quota column for leaveType in one
// atomic statement. Every right-hand expression reads the pre-update row, so
// the quota clamps at zero and the shortfall lands in loss_of_pay without a
// read-modify-write window. Returns false when no balance row exists.
func (r *repository) ApplyQuotaDeduction(ctx context.Context, employeeID string, year int, leaveType string, days int) (bool, error) {
	column, ok := quotaColumns[leaveType]
	if !ok {
		return false, fmt.Errorf("leave type %q has no quota column", leaveType)
	}

	query := fmt.Sprintf(`
		UPDATE leave_balances
		SET %[1]s = GREATEST(%[1]s - ?, 0),
		    loss_of_pay = loss_of_pay + GREATEST(? - %[1]s, 0),
		    updated_at = now()
		WHERE employee_id = ? AND year = ?
	`, column)

	res := r.db.WithContext(ctx).Exec(query, days, days, employeeID, year)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddLossOfPay accumulates unpaid days without touching any quota field.
func (r *repository) AddLossOfPay(ctx context.Context, employeeID string, year int, days int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE leave_balances
		SET loss_of_pay = loss_of_pay + ?,
		    updated_at = now()
		WHERE employee_id = ? AND year = ?
	`, days, employeeID, year)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
