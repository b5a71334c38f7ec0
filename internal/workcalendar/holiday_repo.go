package workcalendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_tenant_date"`
	Date     time.Time `gorm:"type:date;not null;index:idx_holidays_tenant_date"`
	Name     string    `gorm:"type:varchar(120);not null"`
}

// HolidayAware excludes weekends plus any date present in the tenant's
// holiday table.
type HolidayAware struct {
	db *gorm.DB
}

func NewHolidayAware(db *gorm.DB) *HolidayAware {
	return &HolidayAware{db: db}
}

func (h *HolidayAware) IsWorkingDay(ctx context.Context, tenantID string, date time.Time) (bool, error) {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}

	var count int64
	err := h.db.WithContext(ctx).
		Model(&Holiday{}).
		Where("tenant_id = ?", tenantID).
		Where("date = ?", date.Format("2006-01-02")).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
