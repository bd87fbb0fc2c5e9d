// Package bonus вычисляет бонусы агентства за устойчивый средний доход модели
// за календарные окна: день, неделю, половину месяца и месяц.
//
// Средний доход окна считается на число рабочих дней по расписанию, а не на
// число смен. Бонус окна приписывается только смене, дата которой совпадает с
// последним рабочим днём окна по расписанию модели.
package bonus

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
)

var hundred = decimal.NewFromInt(100)

// WorkedDayCounter возвращает число рабочих дней модели в диапазоне дат включительно.
type WorkedDayCounter interface {
	CountWorkedDays(from, to time.Time) int
}

// Entry описывает начисленный бонус по правилу за окно.
type Entry struct {
	RuleID   int64
	RuleName string
	Window   Window
	Amount   decimal.Decimal
	// TargetDate последний рабочий день окна; SessionID указывает смену этого дня.
	TargetDate time.Time
	SessionID  int64
	// Total считается в валюте цели правила, LocalTotal всегда в местной валюте.
	Total      decimal.Decimal
	LocalTotal decimal.Decimal
	Average    decimal.Decimal
	WorkedDays int
}

// Result содержит все начисленные бонусы.
type Result struct {
	Entries []Entry
}

// SessionBonus возвращает сумму бонусов, приписанных смене.
func (r Result) SessionBonus(sessionID int64) decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		if e.SessionID == sessionID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// BySession возвращает суммы бонусов по сменам.
func (r Result) BySession() map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(r.Entries))
	for _, e := range r.Entries {
		out[e.SessionID] = out[e.SessionID].Add(e.Amount)
	}
	return out
}

// Total возвращает сумму всех бонусов.
func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Filter возвращает результат только с окнами, пересекающими диапазон [from, to].
func (r Result) Filter(from, to time.Time) Result {
	var entries []Entry
	for _, e := range r.Entries {
		if e.Window.Overlaps(from, to) {
			entries = append(entries, e)
		}
	}
	return Result{Entries: entries}
}

// SortRules возвращает активные правила в порядке применения: по Order, затем по ID.
func SortRules(rules []model.BonusRule) []model.BonusRule {
	sorted := make([]model.BonusRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

type windowTotals struct {
	local   decimal.Decimal
	foreign decimal.Decimal
}

func (t windowTotals) in(currency model.Currency) decimal.Decimal {
	if currency == model.CurrencyForeign {
		return t.foreign
	}
	return t.local
}

// Evaluate применяет правила к завершённым сменам модели.
// Незавершённые смены и неактивные правила не учитываются.
func Evaluate(sessions []model.WorkSession, rules []model.BonusRule, counter WorkedDayCounter) Result {
	ordered := SortRules(rules)
	if len(ordered) == 0 || counter == nil {
		return Result{}
	}

	byPeriod := make(map[model.PeriodType][]model.BonusRule)
	for _, r := range ordered {
		byPeriod[r.PeriodType] = append(byPeriod[r.PeriodType], r)
	}

	completed := make([]model.WorkSession, 0, len(sessions))
	lastDay := make(map[time.Time]int64)
	for _, s := range sessions {
		if s.Status != model.StatusCompleted {
			continue
		}
		completed = append(completed, s)
		lastDay[schedule.Day(s.Date)] = s.ID
	}

	seen := make(map[windowKey]struct{})
	var windows []Window
	for _, s := range completed {
		for period := range byPeriod {
			w, ok := WindowFor(period, s.Date)
			if !ok {
				continue
			}
			if _, dup := seen[w.key()]; dup {
				continue
			}
			seen[w.key()] = struct{}{}
			windows = append(windows, w)
		}
	}
	sort.Slice(windows, func(i, j int) bool {
		if !windows[i].Start.Equal(windows[j].Start) {
			return windows[i].Start.Before(windows[j].Start)
		}
		return windows[i].Period < windows[j].Period
	})

	var result Result
	for _, w := range windows {
		worked := counter.CountWorkedDays(w.Start, w.End)
		if worked == 0 {
			continue
		}

		var totals windowTotals
		for _, s := range completed {
			if w.Contains(s.Date) {
				totals.local = totals.local.Add(s.GainLocal)
				totals.foreign = totals.foreign.Add(s.GainForeign.Decimal)
			}
		}
		days := decimal.NewFromInt(int64(worked))
		target := lastWorkedDay(w, counter)

		for _, rule := range byPeriod[w.Period] {
			sum := totals.in(rule.TargetCurrency)
			avg := sum.Div(days)
			if avg.LessThan(rule.TargetAmount) {
				continue
			}

			amount := rule.BonusValue
			if rule.BonusType == model.BonusPercentage {
				amount = totals.local.Mul(rule.BonusValue).Div(hundred)
			}

			if sessionID, ok := lastDay[target]; ok {
				result.Entries = append(result.Entries, Entry{
					RuleID:     rule.ID,
					RuleName:   rule.Name,
					Window:     w,
					Amount:     amount,
					TargetDate: target,
					SessionID:  sessionID,
					Total:      sum,
					LocalTotal: totals.local,
					Average:    avg,
					WorkedDays: worked,
				})
			}

			if rule.StopOnMatch {
				break
			}
		}
	}
	return result
}

// lastWorkedDay возвращает последний день окна, в который модель работает по расписанию.
func lastWorkedDay(w Window, counter WorkedDayCounter) time.Time {
	for d := w.End; !d.Before(w.Start); d = d.AddDate(0, 0, -1) {
		if counter.CountWorkedDays(d, d) > 0 {
			return d
		}
	}
	return w.End
}
