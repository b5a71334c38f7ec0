package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	TypeAnnual    = "ANNUAL"
	TypeSick      = "SICK"
	TypeCasual    = "CASUAL"
	TypeMaternity = "MATERNITY"
	TypePaternity = "PATERNITY"
	TypeLossOfPay = "LOSS_OF_PAY"
)

// quotaColumns maps a leave type to the balance column it deducts from.
// LOSS_OF_PAY is absent on purpose: it accumulates instead of deducting.
var quotaColumns = map[string]string{
	TypeAnnual:    "annual",
	TypeSick:      "sick",
	TypeCasual:    "casual",
	TypeMaternity: "maternity",
	TypePaternity: "paternity",
}

// lossOfPayFallback marks the types whose exhaustion turns the whole request
// into loss-of-pay. Maternity/paternity never auto-convert.
var lossOfPayFallback = map[string]bool{
	TypeAnnual: true,
	TypeSick:   true,
	TypeCasual: true,
}

type Request struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_tenant_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`

	LeaveType  string    `gorm:"type:varchar(30);not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	DaysCount  int       `gorm:"type:int;not null"`
	Reason     string    `gorm:"type:text"`
	IsLossOfPay bool     `gorm:"not null;default:false"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_tenant_status"`
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`

	// Emergency metadata is an opaque pass-through for the client.
	IsEmergency bool       `gorm:"not null;default:false"`
	ReportedVia string     `gorm:"type:varchar(30)"`
	ReportedAt  *time.Time
	Attachments []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

// Balance is the per-employee, per-year quota record. Quota fields are only
// ever mutated by the approval deduction; LossOfPay counts days taken unpaid.
type Balance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_year"`
	Year       int       `gorm:"not null;uniqueIndex:uq_leave_balances_employee_year"`

	Annual    int `gorm:"not null;default:0"`
	Sick      int `gorm:"not null;default:0"`
	Casual    int `gorm:"not null;default:0"`
	Maternity int `gorm:"not null;default:0"`
	Paternity int `gorm:"not null;default:0"`

	LossOfPay   int `gorm:"not null;default:0"`
	CarriedOver int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// quotaFor returns the remaining quota for a leave type.
func (b *Balance) quotaFor(leaveType string) int {
	switch leaveType {
	case TypeAnnual:
		return b.Annual
	case TypeSick:
		return b.Sick
	case TypeCasual:
		return b.Casual
	case TypeMaternity:
		return b.Maternity
	case TypePaternity:
		return b.Paternity
	default:
		return 0
	}
}
