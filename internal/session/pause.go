package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

var secondsPerHour = decimal.NewFromInt(3600)

// PauseDuration возвращает длительность паузы; идущая пауза считается до now.
func PauseDuration(p model.Pause, now time.Time) time.Duration {
	end := now
	if p.EndedAt != nil {
		end = *p.EndedAt
	}
	return end.Sub(p.StartedAt)
}

func intervalDuration(iv model.Interval, now time.Time) time.Duration {
	if iv.Start == nil {
		return 0
	}
	end := now
	if iv.End != nil {
		end = *iv.End
	}
	return end.Sub(*iv.Start)
}

// TotalPauseTime суммирует все паузы смены, включая старые однократные поля перерыва.
func TotalPauseTime(s *model.WorkSession, now time.Time) time.Duration {
	var total time.Duration
	for _, p := range s.Pauses {
		total += PauseDuration(p, now)
	}
	total += intervalDuration(s.Legacy.Break, now)
	total += intervalDuration(s.Legacy.Meal, now)
	total += intervalDuration(s.Legacy.Coaching, now)
	return total
}

// PresenceTime возвращает время от прихода до окончания смены (или до now) без вычета пауз.
func PresenceTime(s *model.WorkSession, now time.Time) (time.Duration, bool) {
	if s.ArrivedAt == nil {
		return 0, false
	}
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return end.Sub(*s.ArrivedAt), true
}

// WorkedTime возвращает отработанное время: присутствие минус все паузы.
func WorkedTime(s *model.WorkSession, now time.Time) (time.Duration, bool) {
	presence, ok := PresenceTime(s, now)
	if !ok {
		return 0, false
	}
	return presence - TotalPauseTime(s, now), true
}

// Hours переводит длительность в часы с двумя знаками после запятой.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHour).Round(2)
}

// WorkedHours возвращает отработанные часы или пустое значение, если приход не отмечен.
func WorkedHours(s *model.WorkSession, now time.Time) decimal.NullDecimal {
	d, ok := WorkedTime(s, now)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Hours(d))
}

// PresenceHours возвращает часы присутствия или пустое значение, если приход не отмечен.
func PresenceHours(s *model.WorkSession, now time.Time) decimal.NullDecimal {
	d, ok := PresenceTime(s, now)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Hours(d))
}

// PauseHours возвращает суммарную длительность пауз в часах.
func PauseHours(s *model.WorkSession, now time.Time) decimal.Decimal {
	return Hours(TotalPauseTime(s, now))
}
