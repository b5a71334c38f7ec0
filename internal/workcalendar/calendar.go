package workcalendar

import (
	"context"
	"time"
)

// Resolver answers whether a calendar date counts as a working day for a
// tenant. Leave pricing consults it for every date in the requested range.
type Resolver interface {
	IsWorkingDay(ctx context.Context, tenantID string, date time.Time) (bool, error)
}

// WeekendOnly excludes Saturdays and Sundays and nothing else. This matches
// the behavior tenants get before loading a holiday table.
type WeekendOnly struct{}

func NewWeekendOnly() WeekendOnly {
	return WeekendOnly{}
}

func (WeekendOnly) IsWorkingDay(_ context.Context, _ string, date time.Time) (bool, error) {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday, nil
}
