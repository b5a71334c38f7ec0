package workcalendar_test

import (
	"context"
	"testing"
	"time"

	"go-peoplehub/internal/workcalendar"

	"github.com/stretchr/testify/assert"
)

func TestWeekendOnly_IsWorkingDay(t *testing.T) {
	cal := workcalendar.NewWeekendOnly()
	ctx := context.Background()

	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},   // Monday
		{time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), true},   // Friday
		{time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), false},  // Saturday
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), false},  // Sunday
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), true},   // Monday
		{time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), true}, // holidays are not this resolver's concern
	}

	for _, tc := range cases {
		got, err := cal.IsWorkingDay(ctx, "tenant-1", tc.date)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.date.Format("2006-01-02"))
	}
}
