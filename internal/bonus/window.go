package bonus

import (
	"time"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
)

// Window описывает календарное окно правила: даты Start и End включительно.
type Window struct {
	Period model.PeriodType
	Start  time.Time
	End    time.Time
}

// Contains сообщает, попадает ли дата в окно.
func (w Window) Contains(date time.Time) bool {
	d := schedule.Day(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Overlaps сообщает, пересекается ли окно с диапазоном дат [from, to].
func (w Window) Overlaps(from, to time.Time) bool {
	return !w.End.Before(schedule.Day(from)) && !w.Start.After(schedule.Day(to))
}

type windowKey struct {
	period model.PeriodType
	start  time.Time
}

func (w Window) key() windowKey {
	return windowKey{period: w.Period, start: w.Start}
}

// WindowFor возвращает окно указанного типа, содержащее дату.
// Для неизвестного типа второе значение равно false.
func WindowFor(period model.PeriodType, date time.Time) (Window, bool) {
	d := schedule.Day(date)
	switch period {
	case model.PeriodDaily:
		return Window{Period: period, Start: d, End: d}, true
	case model.PeriodWeekly:
		start := d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
		return Window{Period: period, Start: start, End: start.AddDate(0, 0, 6)}, true
	case model.PeriodBiweekly:
		if d.Day() <= 15 {
			start := d.AddDate(0, 0, 1-d.Day())
			return Window{Period: period, Start: start, End: start.AddDate(0, 0, 14)}, true
		}
		start := d.AddDate(0, 0, 16-d.Day())
		return Window{Period: period, Start: start, End: monthEnd(d)}, true
	case model.PeriodMonthly:
		return Window{Period: period, Start: d.AddDate(0, 0, 1-d.Day()), End: monthEnd(d)}, true
	}
	return Window{}, false
}

// WindowsFor возвращает окна всех типов, содержащие дату.
func WindowsFor(date time.Time) []Window {
	periods := []model.PeriodType{model.PeriodDaily, model.PeriodWeekly, model.PeriodBiweekly, model.PeriodMonthly}
	windows := make([]Window, 0, len(periods))
	for _, p := range periods {
		w, _ := WindowFor(p, date)
		windows = append(windows, w)
	}
	return windows
}

// Span возвращает самый ранний старт и самый поздний конец окон, которые
// пересекаются с диапазоном [from, to].
func Span(from, to time.Time) (time.Time, time.Time) {
	start, end := schedule.Day(from), schedule.Day(to)
	for _, w := range WindowsFor(from) {
		if w.Start.Before(start) {
			start = w.Start
		}
	}
	for _, w := range WindowsFor(to) {
		if w.End.After(end) {
			end = w.End
		}
	}
	return start, end
}

func monthEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
