package session

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/studio-shifts/internal/model"
)

var (
	// ErrInvalidTransition возвращается, если операция недопустима в текущем состоянии смены.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrPauseAlreadyActive возвращается при попытке открыть вторую паузу.
	ErrPauseAlreadyActive = errors.New("pause already active")
	// ErrNoArrival возвращается при завершении смены без отметки прихода.
	ErrNoArrival = fmt.Errorf("%w: arrival was never confirmed", ErrInvalidTransition)
)

// Op обозначает операцию над сменой.
type Op string

const (
	OpConfirmPresence Op = "confirm_presence"
	OpMarkAbsent      Op = "mark_absent"
	OpReactivate      Op = "reactivate"
	OpStartPause      Op = "start_pause"
	OpEndPause        Op = "end_pause"
	OpComplete        Op = "complete"
	OpReopen          Op = "reopen"
)

// TransitionError описывает отклонённый переход.
type TransitionError struct {
	Op   Op
	From model.SessionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s session in status %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
