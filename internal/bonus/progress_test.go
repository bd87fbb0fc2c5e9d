package bonus

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

func TestProgress(t *testing.T) {
	sessions := []model.WorkSession{
		completed(1, date(2025, 3, 17), "300000", "75"),
		completed(2, date(2025, 3, 18), "300000", "75"),
		completed(3, date(2025, 3, 3), "900000", "225"),
	}
	open := completed(4, date(2025, 3, 19), "999999", "250")
	open.Status = model.StatusStarted
	sessions = append(sessions, open)

	rules := []model.BonusRule{
		{ID: 1, Name: "bronze", PeriodType: model.PeriodBiweekly, TargetCurrency: model.CurrencyLocal, TargetAmount: dec("50000"), BonusType: model.BonusFixedAmount, BonusValue: dec("100000"), Order: 2, IsActive: true},
		{ID: 2, Name: "silver", PeriodType: model.PeriodBiweekly, TargetCurrency: model.CurrencyForeign, TargetAmount: dec("15"), BonusType: model.BonusPercentage, BonusValue: dec("5"), Order: 1, IsActive: true},
		{ID: 3, Name: "weekly", PeriodType: model.PeriodWeekly, TargetCurrency: model.CurrencyLocal, TargetAmount: dec("1"), IsActive: true},
		{ID: 4, Name: "gold", PeriodType: model.PeriodBiweekly, TargetCurrency: model.CurrencyLocal, TargetAmount: dec("60000"), BonusType: model.BonusFixedAmount, BonusValue: dec("300000"), Order: 3, IsActive: true},
	}

	p := Progress(date(2025, 3, 19), sessions, rules, weekdaysResolver())

	assert.True(t, p.Window.Start.Equal(date(2025, 3, 16)))
	assert.True(t, p.Window.End.Equal(date(2025, 3, 31)))
	// 17-21, 24-28, 31 марта.
	assert.Equal(t, 11, p.WorkedDays)
	assert.Equal(t, 2, p.Sessions)
	assert.True(t, p.LocalTotal.Equal(dec("600000")))
	assert.True(t, p.ForeignTotal.Equal(dec("150")))

	require.Len(t, p.Milestones, 3)
	assert.Equal(t, "silver", p.Milestones[0].Name)
	assert.Equal(t, "bronze", p.Milestones[1].Name)
	assert.Equal(t, "gold", p.Milestones[2].Name)

	// 150 / 11 < 15; 600000 / 11 >= 50000; 600000 / 11 < 60000.
	assert.False(t, p.Milestones[0].Reached)
	assert.True(t, p.Milestones[1].Reached)
	assert.False(t, p.Milestones[2].Reached)
}

func TestProgress_NoWorkedDays(t *testing.T) {
	rules := []model.BonusRule{
		{ID: 1, PeriodType: model.PeriodBiweekly, TargetCurrency: model.CurrencyLocal, TargetAmount: decimal.Zero, IsActive: true},
	}
	p := Progress(date(2025, 3, 19), []model.WorkSession{completed(1, date(2025, 3, 17), "1", "1")}, rules, nil)

	assert.Equal(t, 0, p.WorkedDays)
	assert.True(t, p.LocalAverage.IsZero())
	require.Len(t, p.Milestones, 1)
	assert.False(t, p.Milestones[0].Reached)
}
