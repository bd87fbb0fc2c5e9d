package bonus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		name   string
		period model.PeriodType
		date   time.Time
		start  time.Time
		end    time.Time
	}{
		{name: "daily", period: model.PeriodDaily, date: date(2025, 3, 5), start: date(2025, 3, 5), end: date(2025, 3, 5)},
		{name: "weekly midweek", period: model.PeriodWeekly, date: date(2025, 3, 5), start: date(2025, 3, 3), end: date(2025, 3, 9)},
		{name: "weekly sunday", period: model.PeriodWeekly, date: date(2025, 3, 9), start: date(2025, 3, 3), end: date(2025, 3, 9)},
		{name: "weekly across months", period: model.PeriodWeekly, date: date(2025, 3, 1), start: date(2025, 2, 24), end: date(2025, 3, 2)},
		{name: "first half", period: model.PeriodBiweekly, date: date(2025, 3, 15), start: date(2025, 3, 1), end: date(2025, 3, 15)},
		{name: "second half leap", period: model.PeriodBiweekly, date: date(2024, 2, 16), start: date(2024, 2, 16), end: date(2024, 2, 29)},
		{name: "monthly", period: model.PeriodMonthly, date: date(2025, 4, 30), start: date(2025, 4, 1), end: date(2025, 4, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := WindowFor(tt.period, tt.date)
			require.True(t, ok)
			assert.True(t, w.Start.Equal(tt.start), "start = %s", w.Start)
			assert.True(t, w.End.Equal(tt.end), "end = %s", w.End)
			assert.True(t, w.Contains(tt.date))
		})
	}

	_, ok := WindowFor("YEARLY", date(2025, 3, 5))
	assert.False(t, ok)
}

func TestWindowsFor(t *testing.T) {
	windows := WindowsFor(time.Date(2025, 3, 20, 18, 30, 0, 0, time.UTC))
	require.Len(t, windows, 4)
	for _, w := range windows {
		assert.True(t, w.Contains(date(2025, 3, 20)), "%s", w.Period)
	}
}

func TestSpan(t *testing.T) {
	from, to := Span(date(2025, 3, 5), date(2025, 3, 20))
	assert.True(t, from.Equal(date(2025, 3, 1)), "from = %s", from)
	assert.True(t, to.Equal(date(2025, 3, 31)), "to = %s", to)

	from, to = Span(date(2025, 3, 1), date(2025, 3, 31))
	assert.True(t, from.Equal(date(2025, 2, 24)), "from = %s", from)
	assert.True(t, to.Equal(date(2025, 4, 6)), "to = %s", to)
}
