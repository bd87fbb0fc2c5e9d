// Package schedule отвечает за недельные расписания: подсчёт рабочих дней периода
// и определение того, порождает ли назначение смену в конкретную дату.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

var weekdayNames = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// Day приводит момент времени к календарной дате (полночь UTC).
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseWeekDays разбирает список дней недели через запятую, например "MONDAY,FRIDAY".
func ParseWeekDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := [7]bool{}
	for _, part := range strings.Split(s, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		d, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown week day %q", part)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	return days, nil
}

// FormatWeekDays формирует строку дней недели в формате хранения.
func FormatWeekDays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, strings.ToUpper(d.String()))
	}
	return strings.Join(names, ",")
}

// AppliesOn сообщает, порождает ли назначение смену в указанную дату.
// Расписание без дней недели действует каждый день.
func AppliesOn(a model.ScheduleAssignment, date time.Time) bool {
	if !a.IsActive {
		return false
	}
	if len(a.Schedule.WeekDays) == 0 {
		return true
	}
	wd := date.Weekday()
	for _, d := range a.Schedule.WeekDays {
		if d == wd {
			return true
		}
	}
	return false
}

// ExpectedStart возвращает ожидаемое время прихода на смену в часовом поясе loc.
func ExpectedStart(date time.Time, s model.Schedule, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(s.StartTime)
}
