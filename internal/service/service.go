// Package service реализует бизнес-логику учёта рабочих смен: переходы смены,
// расчёт выплат, доску дня, выписки и бонусы.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/studio-shifts/internal/compensation"
	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/repository"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
	"github.com/mmeshcher/studio-shifts/internal/session"
)

var (
	// ErrInvalidAmount возвращается при отрицательной сумме дохода.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidRange возвращается, если начало периода позже его конца.
	ErrInvalidRange = errors.New("invalid date range")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetAgency(ctx context.Context, agencyID int64) (*model.Agency, error)
	GetWorker(ctx context.Context, workerID int64) (*model.Worker, error)
	ListWorkersByAgency(ctx context.Context, agencyID int64) ([]model.Worker, error)
	ListActiveAssignmentsByAgency(ctx context.Context, agencyID int64) ([]model.ScheduleAssignment, error)
	ListActiveAssignmentsByWorker(ctx context.Context, workerID int64) ([]model.ScheduleAssignment, error)
	ListActiveBonusRules(ctx context.Context, agencyID int64) ([]model.BonusRule, error)
	GetSessionRecord(ctx context.Context, sessionID int64) (*repository.SessionRecord, error)
	EnsureSession(ctx context.Context, workerID int64, assignmentID *int64, date time.Time) (*model.WorkSession, error)
	ListSessionsByAgencyDate(ctx context.Context, agencyID int64, date time.Time) ([]model.WorkSession, error)
	ListWorkerSessions(ctx context.Context, workerID int64, from, to time.Time) ([]model.WorkSession, error)
	ApplyChange(ctx context.Context, ch session.Change) (*model.WorkSession, error)
}

// Service содержит бизнес-логику сервиса учёта смен.
type Service struct {
	repo          Repository
	compensation  *compensation.Engine
	logger        *zap.Logger
	location      *time.Location
	now           func() time.Time
	reportWorkers int
}

// Option настраивает Service.
type Option func(*Service)

// WithLocation задаёт часовой пояс, в котором заданы времена начала расписаний.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReportWorkers ограничивает число моделей, обрабатываемых параллельно в отчёте агентства.
func WithReportWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reportWorkers = n
		}
	}
}

// NewService создаёт новый сервис с указанным репозиторием и источником курсов валют.
func NewService(repo Repository, rates compensation.RateProvider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:          repo,
		compensation:  compensation.NewEngine(rates),
		logger:        logger,
		location:      time.UTC,
		now:           time.Now,
		reportWorkers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func (s *Service) terms(rec *repository.SessionRecord) session.Terms {
	t := session.Terms{Agency: rec.Agency}
	if rec.Schedule != nil {
		start := schedule.ExpectedStart(rec.Session.Date, *rec.Schedule, s.location)
		t.ExpectedStart = &start
	}
	return t
}

func (s *Service) apply(ctx context.Context, ch session.Change) (*model.WorkSession, error) {
	saved, err := s.repo.ApplyChange(ctx, ch)
	if err != nil {
		if !errors.Is(err, session.ErrPauseAlreadyActive) {
			s.logger.Error("apply session change error", zap.Error(err),
				zap.Int64("sessionID", ch.Session.ID), zap.String("op", string(ch.Op)))
		}
		return nil, err
	}

	s.logger.Info("session changed",
		zap.Int64("sessionID", saved.ID),
		zap.String("op", string(ch.Op)),
		zap.String("status", string(saved.Status)),
		zap.Bool("unchanged", ch.Unchanged),
	)
	return saved, nil
}

// SessionDetails содержит смену с текущими показателями длительности.
type SessionDetails struct {
	Session       model.WorkSession
	Worker        model.Worker
	WorkedHours   decimal.NullDecimal
	PresenceHours decimal.NullDecimal
	PauseHours    decimal.Decimal
}

func (s *Service) details(ws model.WorkSession, w model.Worker) *SessionDetails {
	now := s.now()
	worked := ws.WorkedHours
	if ws.Status != model.StatusCompleted || !worked.Valid {
		worked = session.WorkedHours(&ws, now)
	}
	return &SessionDetails{
		Session:       ws,
		Worker:        w,
		WorkedHours:   worked,
		PresenceHours: session.PresenceHours(&ws, now),
		PauseHours:    session.PauseHours(&ws, now),
	}
}

// GetSession возвращает смену с паузами и текущими длительностями.
func (s *Service) GetSession(ctx context.Context, sessionID int64) (*SessionDetails, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.details(rec.Session, rec.Worker), nil
}

// ConfirmPresence отмечает приход модели и рассчитывает опоздание.
func (s *Service) ConfirmPresence(ctx context.Context, sessionID int64) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.ConfirmPresence(rec.Session, s.terms(rec), s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// MarkAbsent отмечает отсутствие модели; approved означает согласованное отсутствие.
func (s *Service) MarkAbsent(ctx context.Context, sessionID int64, approved bool) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.MarkAbsent(rec.Session, s.terms(rec), approved)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// ReactivateFromAbsent снимает отметку отсутствия и отмечает приход.
func (s *Service) ReactivateFromAbsent(ctx context.Context, sessionID int64) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.ReactivateFromAbsent(rec.Session, s.terms(rec), s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// StartPause открывает паузу указанного вида.
func (s *Service) StartPause(ctx context.Context, sessionID int64, kind model.PauseType) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.StartPause(rec.Session, kind, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// EndPause закрывает паузу указанного вида.
func (s *Service) EndPause(ctx context.Context, sessionID int64, kind model.PauseType) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.EndPause(rec.Session, kind, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// Complete завершает смену: получает курс, рассчитывает выплату и сохраняет
// смену, закрытую паузу и дневной доход одной транзакцией. При недоступности
// курса смена не изменяется.
func (s *Service) Complete(ctx context.Context, sessionID int64, gain decimal.Decimal, description string) (*model.WorkSession, error) {
	if gain.IsNegative() {
		return nil, fmt.Errorf("%w: gain must not be negative", ErrInvalidAmount)
	}

	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.CanComplete(rec.Session); err != nil {
		return nil, err
	}

	res, err := s.compensation.Compute(ctx, compensation.InputFor(&rec.Session, rec.Agency, gain))
	if err != nil {
		s.logger.Warn("exchange rate unavailable", zap.Error(err),
			zap.Int64("sessionID", sessionID), zap.Time("date", rec.Session.Date))
		return nil, err
	}

	ch, err := session.Complete(rec.Session, res, description, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}

// Reopen возвращает завершённую смену в работу и удаляет дневной доход.
func (s *Service) Reopen(ctx context.Context, sessionID int64) (*model.WorkSession, error) {
	rec, err := s.repo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ch, err := session.Reopen(rec.Session)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ch)
}
