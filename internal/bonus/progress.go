package bonus

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

// Milestone описывает цель полумесячного правила и признак её достижения.
type Milestone struct {
	RuleID     int64
	Name       string
	Currency   model.Currency
	Target     decimal.Decimal
	BonusType  model.BonusType
	BonusValue decimal.Decimal
	Reached    bool
}

// HalfMonthProgress описывает продвижение модели в текущей половине месяца.
type HalfMonthProgress struct {
	Window         Window
	WorkedDays     int
	Sessions       int
	LocalTotal     decimal.Decimal
	ForeignTotal   decimal.Decimal
	LocalAverage   decimal.Decimal
	ForeignAverage decimal.Decimal
	Milestones     []Milestone
}

// Progress считает показатели половины месяца, содержащей date, и отмечает
// достигнутые цели полумесячных правил.
func Progress(date time.Time, sessions []model.WorkSession, rules []model.BonusRule, counter WorkedDayCounter) HalfMonthProgress {
	w, _ := WindowFor(model.PeriodBiweekly, date)
	p := HalfMonthProgress{Window: w}

	for _, s := range sessions {
		if s.Status != model.StatusCompleted || !w.Contains(s.Date) {
			continue
		}
		p.Sessions++
		p.LocalTotal = p.LocalTotal.Add(s.GainLocal)
		p.ForeignTotal = p.ForeignTotal.Add(s.GainForeign.Decimal)
	}

	if counter != nil {
		p.WorkedDays = counter.CountWorkedDays(w.Start, w.End)
	}
	if p.WorkedDays > 0 {
		days := decimal.NewFromInt(int64(p.WorkedDays))
		p.LocalAverage = p.LocalTotal.Div(days)
		p.ForeignAverage = p.ForeignTotal.Div(days)
	}

	for _, r := range SortRules(rules) {
		if r.PeriodType != model.PeriodBiweekly {
			continue
		}
		avg := p.LocalAverage
		if r.TargetCurrency == model.CurrencyForeign {
			avg = p.ForeignAverage
		}
		p.Milestones = append(p.Milestones, Milestone{
			RuleID:     r.ID,
			Name:       r.Name,
			Currency:   r.TargetCurrency,
			Target:     r.TargetAmount,
			BonusType:  r.BonusType,
			BonusValue: r.BonusValue,
			Reached:    p.WorkedDays > 0 && !avg.LessThan(r.TargetAmount),
		})
	}
	return p
}
