// Package session реализует конечный автомат рабочей смены и учёт пауз.
//
// Функции пакета не обращаются к хранилищу: каждая операция принимает текущее
// состояние смены и момент времени и возвращает Change, который хранилище
// применяет одной транзакцией. Исходная смена не изменяется.
package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/compensation"
	"github.com/mmeshcher/studio-shifts/internal/model"
)

// Terms содержит условия, действующие для смены в момент операции.
type Terms struct {
	Agency model.Agency
	// ExpectedStart равно nil, если у модели нет расписания на эту дату.
	ExpectedStart *time.Time
}

// Change описывает результат операции над сменой.
type Change struct {
	Op      Op
	Session model.WorkSession
	// OpenedPause задаётся, если операция открыла новую паузу.
	OpenedPause *model.Pause
	// ClosedPause задаётся, если операция закрыла идущую паузу.
	ClosedPause *model.Pause
	// Gain задаётся при завершении смены и заменяет дневной доход за дату.
	Gain *model.DailyGain
	// DeleteGain требует удалить дневной доход за дату смены.
	DeleteGain bool
	// Unchanged означает, что смена уже в нужном состоянии и сохранять нечего.
	Unchanged bool
}

func clone(s model.WorkSession) model.WorkSession {
	if s.Pauses != nil {
		pauses := make([]model.Pause, len(s.Pauses))
		copy(pauses, s.Pauses)
		s.Pauses = pauses
	}
	return s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// LateMinutes возвращает опоздание в целых минутах с округлением вверх.
// Без расписания опоздание равно нулю.
func LateMinutes(arrival time.Time, expected *time.Time) int {
	if expected == nil || !arrival.After(*expected) {
		return 0
	}
	delay := arrival.Sub(*expected)
	minutes := int(delay / time.Minute)
	if delay%time.Minute != 0 {
		minutes++
	}
	return minutes
}

func markArrival(s *model.WorkSession, terms Terms, now time.Time) {
	s.ArrivedAt = timePtr(now)
	s.LateMinutes = LateMinutes(now, terms.ExpectedStart)
	if s.LateMinutes > 0 {
		s.LatePenalty = terms.Agency.LatePenalty
	} else {
		s.LatePenalty = decimal.Zero
	}
	s.Status = model.StatusStarted
}

// ConfirmPresence отмечает приход модели. Допустима из PENDING и STARTED;
// повторная отметка пересчитывает опоздание от нового момента прихода.
func ConfirmPresence(s model.WorkSession, terms Terms, now time.Time) (Change, error) {
	if s.Status != model.StatusPending && s.Status != model.StatusStarted {
		return Change{}, &TransitionError{Op: OpConfirmPresence, From: s.Status}
	}

	next := clone(s)
	markArrival(&next, terms, now)
	return Change{Op: OpConfirmPresence, Session: next}, nil
}

// MarkAbsent отмечает отсутствие. Неодобренное отсутствие получает штраф
// агентства, одобренное отсутствие штрафа не несёт.
func MarkAbsent(s model.WorkSession, terms Terms, approved bool) (Change, error) {
	switch s.Status {
	case model.StatusPending, model.StatusStarted, model.StatusAbsent, model.StatusAbsentApproved:
	default:
		return Change{}, &TransitionError{Op: OpMarkAbsent, From: s.Status}
	}

	next := clone(s)
	if approved {
		next.Status = model.StatusAbsentApproved
		next.AbsencePenalty = decimal.Zero
	} else {
		next.Status = model.StatusAbsent
		next.AbsencePenalty = terms.Agency.AbsencePenalty
	}
	return Change{Op: OpMarkAbsent, Session: next}, nil
}

// ReactivateFromAbsent снимает отметку отсутствия и отмечает приход так же, как ConfirmPresence.
func ReactivateFromAbsent(s model.WorkSession, terms Terms, now time.Time) (Change, error) {
	if !s.Status.IsAbsent() {
		return Change{}, &TransitionError{Op: OpReactivate, From: s.Status}
	}

	next := clone(s)
	next.AbsencePenalty = decimal.Zero
	markArrival(&next, terms, now)
	return Change{Op: OpReactivate, Session: next}, nil
}

// StartPause открывает паузу указанного вида.
func StartPause(s model.WorkSession, kind model.PauseType, now time.Time) (Change, error) {
	if _, ok := s.OpenPause(); ok {
		return Change{}, ErrPauseAlreadyActive
	}
	if s.Status != model.StatusStarted {
		return Change{}, &TransitionError{Op: OpStartPause, From: s.Status}
	}

	next := clone(s)
	pause := model.Pause{
		SessionID: s.ID,
		Type:      kind,
		StartedAt: now,
	}
	next.Pauses = append(next.Pauses, pause)
	next.Status = kind.Status()
	return Change{Op: OpStartPause, Session: next, OpenedPause: &next.Pauses[len(next.Pauses)-1]}, nil
}

// EndPause закрывает идущую паузу указанного вида. Если пауза не найдена,
// а статус смены всё ещё ON_<вид>, статус возвращается в STARTED.
func EndPause(s model.WorkSession, kind model.PauseType, now time.Time) (Change, error) {
	next := clone(s)

	if open, ok := next.OpenPause(); ok {
		if open.Type != kind {
			return Change{}, &TransitionError{Op: OpEndPause, From: s.Status}
		}
		open.EndedAt = timePtr(now)
		closed := *open
		next.Status = model.StatusStarted
		return Change{Op: OpEndPause, Session: next, ClosedPause: &closed}, nil
	}

	if s.Status == kind.Status() {
		next.Status = model.StatusStarted
		return Change{Op: OpEndPause, Session: next}, nil
	}

	return Change{}, &TransitionError{Op: OpEndPause, From: s.Status}
}

// CanComplete проверяет, что смену можно завершить, не выполняя расчёт.
func CanComplete(s model.WorkSession) error {
	if !s.Status.IsActive() {
		return &TransitionError{Op: OpComplete, From: s.Status}
	}
	if s.ArrivedAt == nil {
		return ErrNoArrival
	}
	return nil
}

// Complete завершает смену: закрывает идущую паузу, фиксирует отработанные часы,
// записывает результат расчёта и формирует дневной доход.
func Complete(s model.WorkSession, res compensation.Result, description string, now time.Time) (Change, error) {
	if err := CanComplete(s); err != nil {
		return Change{}, err
	}

	next := clone(s)
	change := Change{Op: OpComplete}

	if open, ok := next.OpenPause(); ok {
		open.EndedAt = timePtr(now)
		closed := *open
		change.ClosedPause = &closed
	}

	next.EndedAt = timePtr(now)
	next.WorkedHours = WorkedHours(&next, now)
	res.Apply(&next)
	next.Status = model.StatusCompleted

	change.Session = next
	change.Gain = &model.DailyGain{
		WorkerID:    s.WorkerID,
		Date:        s.Date,
		Amount:      res.GainLocal,
		Description: description,
	}
	return change, nil
}

// Reopen возвращает завершённую смену в работу: очищает время окончания,
// часы и денежные показатели и требует удалить дневной доход.
// Повторный вызов для уже переоткрытой смены ничего не меняет. Смена в работе
// без времени окончания неотличима от переоткрытой, поэтому для неё Reopen
// тоже возвращает Unchanged, даже если она ни разу не завершалась.
func Reopen(s model.WorkSession) (Change, error) {
	if s.Status == model.StatusStarted && s.EndedAt == nil {
		return Change{Op: OpReopen, Session: clone(s), Unchanged: true}, nil
	}
	if s.Status != model.StatusCompleted {
		return Change{}, &TransitionError{Op: OpReopen, From: s.Status}
	}

	next := clone(s)
	next.EndedAt = nil
	next.WorkedHours = decimal.NullDecimal{}
	compensation.Clear(&next)
	next.Status = model.StatusStarted
	return Change{Op: OpReopen, Session: next, DeleteGain: true}, nil
}
