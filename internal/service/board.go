package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
)

// BoardCounters содержит сводку доски дня.
type BoardCounters struct {
	Total          int
	Pending        int
	Active         int
	Completed      int
	Late           int
	Absent         int
	AbsentApproved int
}

// Board описывает смены агентства за день.
type Board struct {
	Date     time.Time
	Agency   model.Agency
	Sessions []SessionDetails
	Counters BoardCounters
}

// DailyBoard создаёт недостающие смены на дату для моделей с подходящим
// расписанием и возвращает все смены агентства за эту дату.
func (s *Service) DailyBoard(ctx context.Context, agencyID int64, date time.Time) (*Board, error) {
	day := schedule.Day(date)

	agency, err := s.repo.GetAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListActiveAssignmentsByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	ensured := make(map[int64]struct{})
	for _, a := range assignments {
		if _, ok := ensured[a.WorkerID]; ok {
			continue
		}
		if !a.Worker.EmployedOn(day) || !schedule.AppliesOn(a, day) {
			continue
		}
		assignmentID := a.ID
		if _, err := s.repo.EnsureSession(ctx, a.WorkerID, &assignmentID, day); err != nil {
			s.logger.Error("ensure session error", zap.Error(err),
				zap.Int64("workerID", a.WorkerID), zap.Time("date", day))
			return nil, err
		}
		ensured[a.WorkerID] = struct{}{}
	}

	sessions, err := s.repo.ListSessionsByAgencyDate(ctx, agencyID, day)
	if err != nil {
		return nil, err
	}

	workers, err := s.repo.ListWorkersByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Worker, len(workers))
	for _, w := range workers {
		byID[w.ID] = w
	}

	board := &Board{Date: day, Agency: *agency, Sessions: make([]SessionDetails, 0, len(sessions))}
	for _, ws := range sessions {
		board.Sessions = append(board.Sessions, *s.details(ws, byID[ws.WorkerID]))
		board.Counters.add(ws)
	}
	return board, nil
}

func (c *BoardCounters) add(ws model.WorkSession) {
	c.Total++
	switch {
	case ws.Status == model.StatusPending:
		c.Pending++
	case ws.Status.IsActive():
		c.Active++
	case ws.Status == model.StatusCompleted:
		c.Completed++
	case ws.Status == model.StatusAbsent:
		c.Absent++
	case ws.Status == model.StatusAbsentApproved:
		c.AbsentApproved++
	}
	if ws.LateMinutes > 0 {
		c.Late++
	}
}
