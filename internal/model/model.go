// Package model содержит доменные сущности сервиса учёта рабочих смен.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus описывает состояние рабочей смены.
type SessionStatus string

const (
	StatusPending        SessionStatus = "PENDING"
	StatusStarted        SessionStatus = "STARTED"
	StatusOnBreak        SessionStatus = "ON_BREAK"
	StatusOnMeal         SessionStatus = "ON_MEAL"
	StatusOnCoaching     SessionStatus = "ON_COACHING"
	StatusCompleted      SessionStatus = "COMPLETED"
	StatusAbsent         SessionStatus = "ABSENT"
	StatusAbsentApproved SessionStatus = "ABSENT_APPROVED"
)

// IsActive сообщает, находится ли модель на смене (в работе или на паузе).
func (s SessionStatus) IsActive() bool {
	switch s {
	case StatusStarted, StatusOnBreak, StatusOnMeal, StatusOnCoaching:
		return true
	}
	return false
}

// IsAbsent сообщает, отмечено ли отсутствие.
func (s SessionStatus) IsAbsent() bool {
	return s == StatusAbsent || s == StatusAbsentApproved
}

// PauseType описывает вид перерыва внутри смены.
type PauseType string

const (
	PauseBreak    PauseType = "BREAK"
	PauseMeal     PauseType = "MEAL"
	PauseCoaching PauseType = "COACHING"
)

// Status возвращает статус смены, соответствующий открытой паузе этого вида.
func (t PauseType) Status() SessionStatus {
	switch t {
	case PauseBreak:
		return StatusOnBreak
	case PauseMeal:
		return StatusOnMeal
	case PauseCoaching:
		return StatusOnCoaching
	}
	return ""
}

// Valid проверяет, что вид паузы известен.
func (t PauseType) Valid() bool {
	return t.Status() != ""
}

// Agency содержит параметры агентства, влияющие на расчёт смены.
type Agency struct {
	ID                    int64
	Name                  string
	FeePercentage         decimal.Decimal
	WorkerSharePercentage decimal.Decimal
	LatePenalty           decimal.Decimal
	AbsencePenalty        decimal.Decimal
}

// Worker описывает модель, закреплённую за агентством.
type Worker struct {
	ID        int64
	AgencyID  int64
	FirstName string
	LastName  string
	EntryDate time.Time
	ExitDate  *time.Time
}

// FullName возвращает имя и фамилию модели.
func (w Worker) FullName() string {
	if w.LastName == "" {
		return w.FirstName
	}
	return w.FirstName + " " + w.LastName
}

// EmployedOn сообщает, работает ли модель в агентстве в указанную дату.
func (w Worker) EmployedOn(date time.Time) bool {
	if !w.EntryDate.IsZero() && w.EntryDate.After(date) {
		return false
	}
	if w.ExitDate != nil && w.ExitDate.Before(date) {
		return false
	}
	return true
}

// Schedule описывает повторяющееся недельное расписание агентства.
type Schedule struct {
	ID       int64
	AgencyID int64
	Name     string
	// StartTime и EndTime задаются смещением от полуночи.
	StartTime time.Duration
	EndTime   time.Duration
	WeekDays  []time.Weekday
	IsActive  bool
}

// ScheduleAssignment связывает модель с расписанием.
type ScheduleAssignment struct {
	ID         int64
	WorkerID   int64
	ScheduleID int64
	IsActive   bool
	Schedule   Schedule
	Worker     Worker
}

// Pause описывает перерыв внутри смены. Пустое EndedAt означает, что пауза идёт.
type Pause struct {
	ID        int64
	SessionID int64
	Type      PauseType
	StartedAt time.Time
	EndedAt   *time.Time
}

// IsOpen сообщает, продолжается ли пауза.
func (p Pause) IsOpen() bool {
	return p.EndedAt == nil
}

// Interval описывает интервал старых однократных полей перерыва.
type Interval struct {
	Start *time.Time
	End   *time.Time
}

// LegacyPauses содержит однократные поля перерыва, сохранённые до появления таблицы пауз.
type LegacyPauses struct {
	Break    Interval
	Meal     Interval
	Coaching Interval
}

// WorkSession описывает рабочую смену модели за один календарный день.
type WorkSession struct {
	ID           int64
	WorkerID     int64
	AssignmentID *int64
	Date         time.Time
	Status       SessionStatus

	ArrivedAt   *time.Time
	LateMinutes int
	EndedAt     *time.Time
	WorkedHours decimal.NullDecimal

	LatePenalty    decimal.Decimal
	AbsencePenalty decimal.Decimal

	GainForeign           decimal.NullDecimal
	GainLocal             decimal.Decimal
	ExchangeRate          decimal.NullDecimal
	FeePercentage         decimal.NullDecimal
	WorkerSharePercentage decimal.NullDecimal
	FeeAmount             decimal.Decimal
	WorkerNet             decimal.Decimal

	Legacy LegacyPauses
	Pauses []Pause

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OpenPause возвращает идущую паузу смены, если она есть.
func (s *WorkSession) OpenPause() (*Pause, bool) {
	for i := range s.Pauses {
		if s.Pauses[i].IsOpen() {
			return &s.Pauses[i], true
		}
	}
	return nil, false
}

// Penalties возвращает сумму штрафов за опоздание и отсутствие.
func (s *WorkSession) Penalties() decimal.Decimal {
	return s.LatePenalty.Add(s.AbsencePenalty)
}

// DailyGain описывает дневной доход модели в местной валюте.
type DailyGain struct {
	WorkerID    int64
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// PeriodType описывает календарное окно правила бонуса.
type PeriodType string

const (
	PeriodDaily    PeriodType = "DAILY"
	PeriodWeekly   PeriodType = "WEEKLY"
	PeriodBiweekly PeriodType = "BIWEEKLY"
	PeriodMonthly  PeriodType = "MONTHLY"
)

// Currency описывает валюту цели правила бонуса.
type Currency string

const (
	CurrencyLocal   Currency = "LOCAL"
	CurrencyForeign Currency = "FOREIGN"
)

// BonusType описывает способ начисления бонуса.
type BonusType string

const (
	BonusPercentage  BonusType = "PERCENTAGE"
	BonusFixedAmount BonusType = "FIXED_AMOUNT"
)

// BonusRule описывает правило бонуса агентства.
type BonusRule struct {
	ID             int64
	AgencyID       int64
	Name           string
	PeriodType     PeriodType
	TargetCurrency Currency
	TargetAmount   decimal.Decimal
	BonusType      BonusType
	BonusValue     decimal.Decimal
	Order          int
	StopOnMatch    bool
	IsActive       bool
}
