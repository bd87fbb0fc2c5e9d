// Package handler содержит HTTP-обработчики API сервиса учёта смен.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/studio-shifts/internal/bonus"
	"github.com/mmeshcher/studio-shifts/internal/compensation"
	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/repository"
	"github.com/mmeshcher/studio-shifts/internal/service"
	"github.com/mmeshcher/studio-shifts/internal/session"
	"github.com/mmeshcher/studio-shifts/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	DailyBoard(ctx context.Context, agencyID int64, date time.Time) (*service.Board, error)
	AgencyBonusReport(ctx context.Context, agencyID int64, from, to time.Time) (*service.AgencyReport, error)
	GetSession(ctx context.Context, sessionID int64) (*service.SessionDetails, error)
	ConfirmPresence(ctx context.Context, sessionID int64) (*model.WorkSession, error)
	MarkAbsent(ctx context.Context, sessionID int64, approved bool) (*model.WorkSession, error)
	ReactivateFromAbsent(ctx context.Context, sessionID int64) (*model.WorkSession, error)
	StartPause(ctx context.Context, sessionID int64, kind model.PauseType) (*model.WorkSession, error)
	EndPause(ctx context.Context, sessionID int64, kind model.PauseType) (*model.WorkSession, error)
	Complete(ctx context.Context, sessionID int64, gain decimal.Decimal, description string) (*model.WorkSession, error)
	Reopen(ctx context.Context, sessionID int64) (*model.WorkSession, error)
	WorkerStatement(ctx context.Context, workerID int64, from, to time.Time) (*service.Statement, error)
	Progress(ctx context.Context, workerID int64, date time.Time) (*bonus.HalfMonthProgress, error)
}

// Handler реализует HTTP-обработчики API сервиса учёта смен.
type Handler struct {
	service        Service
	logger         *zap.Logger
	location       *time.Location
	allowedOrigins []string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов. Даты по
// умолчанию берутся в часовом поясе loc.
func NewHandler(s Service, logger *zap.Logger, loc *time.Location, allowedOrigins []string) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		service:        s,
		logger:         logger,
		location:       loc,
		allowedOrigins: allowedOrigins,
	}
}

func (h *Handler) today() time.Time {
	now := time.Now().In(h.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// statusFor сопоставляет ошибку бизнес-логики HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalidAmount), errors.Is(err, service.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, validation.ErrInvalidDate),
		errors.Is(err, validation.ErrInvalidID),
		errors.Is(err, validation.ErrInvalidPauseType),
		errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrPauseAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, compensation.ErrRateUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error(msg, append(fields, zap.Error(err))...)
	} else {
		h.logger.Debug(msg, append(fields, zap.Error(err))...)
	}
	http.Error(w, http.StatusText(code), code)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func idParam(r *http.Request, name string) (int64, error) {
	return validation.ParseID(chiParam(r, name))
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	return validation.ParseDateRange(q.Get("from"), q.Get("to"))
}
