package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Employee struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_employees_tenant"`
	FullName           string     `gorm:"type:varchar(120);not null"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex:uq_employee_email"`
	Designation        string     `gorm:"type:varchar(80)"`
	AvatarURL          string     `gorm:"type:text"`
	Role               string     `gorm:"type:varchar(20);not null;default:'Employee'"`
	TeamID             *string    `gorm:"type:varchar(60);index:idx_employees_team"`
	ReportingManagerID *uuid.UUID `gorm:"type:uuid;index:idx_employees_manager"`
	Status             string     `gorm:"type:varchar(20);not null;default:'ACTIVE'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}
