package schedule

import (
	"time"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

// Resolver считает рабочие дни модели по объединению дней недели её активных назначений.
type Resolver struct {
	weekdays [7]bool
	empty    bool
}

// NewResolver строит Resolver по назначениям модели. Неактивные назначения игнорируются.
func NewResolver(assignments []model.ScheduleAssignment) *Resolver {
	r := &Resolver{empty: true}
	for _, a := range assignments {
		if !a.IsActive {
			continue
		}
		for _, d := range a.Schedule.WeekDays {
			r.weekdays[d] = true
			r.empty = false
		}
	}
	return r
}

// Empty сообщает, что ни одно назначение не задаёт дней недели.
func (r *Resolver) Empty() bool {
	return r.empty
}

// CountWorkedDays возвращает число дней в интервале [from, to], попадающих в рабочие дни недели.
// Праздники не учитываются.
func (r *Resolver) CountWorkedDays(from, to time.Time) int {
	if r.empty {
		return 0
	}
	count := 0
	for d := Day(from); !d.After(Day(to)); d = d.AddDate(0, 0, 1) {
		if r.weekdays[d.Weekday()] {
			count++
		}
	}
	return count
}
