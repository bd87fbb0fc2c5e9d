package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/studio-shifts/internal/bonus"
	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
)

// StatementLine описывает завершённую смену в выписке.
type StatementLine struct {
	Session model.WorkSession
	Bonus   decimal.Decimal
}

// StatementTotals содержит итоги выписки.
type StatementTotals struct {
	Sessions    int
	GainForeign decimal.Decimal
	GainLocal   decimal.Decimal
	Fees        decimal.Decimal
	Penalties   decimal.Decimal
	WorkerNet   decimal.Decimal
	Bonus       decimal.Decimal
	Payable     decimal.Decimal
	WorkedHours decimal.Decimal
}

// Statement описывает выписку модели за период.
type Statement struct {
	Worker  model.Worker
	From    time.Time
	To      time.Time
	Lines   []StatementLine
	Bonuses []bonus.Entry
	Totals  StatementTotals
}

type workerContext struct {
	worker   *model.Worker
	rules    []model.BonusRule
	resolver *schedule.Resolver
}

func (s *Service) loadWorkerContext(ctx context.Context, workerID int64) (*workerContext, error) {
	worker, err := s.repo.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.ListActiveBonusRules(ctx, worker.AgencyID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListActiveAssignmentsByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	return &workerContext{worker: worker, rules: rules, resolver: schedule.NewResolver(assignments)}, nil
}

// WorkerStatement возвращает завершённые смены модели за период с выплатами и
// бонусами. Бонусы считаются по полным календарным окнам, пересекающим период.
func (s *Service) WorkerStatement(ctx context.Context, workerID int64, from, to time.Time) (*Statement, error) {
	from, to = schedule.Day(from), schedule.Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	wc, err := s.loadWorkerContext(ctx, workerID)
	if err != nil {
		return nil, err
	}

	spanFrom, spanTo := bonus.Span(from, to)
	sessions, err := s.repo.ListWorkerSessions(ctx, workerID, spanFrom, spanTo)
	if err != nil {
		return nil, err
	}

	result := bonus.Evaluate(sessions, wc.rules, wc.resolver).Filter(from, to)

	st := &Statement{Worker: *wc.worker, From: from, To: to, Bonuses: result.Entries}
	for _, ws := range sessions {
		if ws.Status != model.StatusCompleted || ws.Date.Before(from) || ws.Date.After(to) {
			continue
		}
		line := StatementLine{Session: ws, Bonus: result.SessionBonus(ws.ID)}
		st.Lines = append(st.Lines, line)

		t := &st.Totals
		t.Sessions++
		t.GainForeign = t.GainForeign.Add(ws.GainForeign.Decimal)
		t.GainLocal = t.GainLocal.Add(ws.GainLocal)
		t.Fees = t.Fees.Add(ws.FeeAmount)
		t.Penalties = t.Penalties.Add(ws.Penalties())
		t.WorkerNet = t.WorkerNet.Add(ws.WorkerNet)
		t.WorkedHours = t.WorkedHours.Add(ws.WorkedHours.Decimal)
	}
	st.Totals.Bonus = result.Total()
	st.Totals.Payable = st.Totals.WorkerNet.Add(st.Totals.Bonus)

	return st, nil
}

// Progress возвращает показатели модели в половине месяца, содержащей date.
func (s *Service) Progress(ctx context.Context, workerID int64, date time.Time) (*bonus.HalfMonthProgress, error) {
	wc, err := s.loadWorkerContext(ctx, workerID)
	if err != nil {
		return nil, err
	}

	w, _ := bonus.WindowFor(model.PeriodBiweekly, date)
	sessions, err := s.repo.ListWorkerSessions(ctx, workerID, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	p := bonus.Progress(date, sessions, wc.rules, wc.resolver)
	return &p, nil
}

// WorkerBonus содержит итоги одной модели в отчёте агентства.
type WorkerBonus struct {
	Worker    model.Worker
	Sessions  int
	WorkerNet decimal.Decimal
	Bonus     decimal.Decimal
}

// AgencyReport описывает бонусы всех моделей агентства за период.
type AgencyReport struct {
	Agency  model.Agency
	From    time.Time
	To      time.Time
	Workers []WorkerBonus
	Bonus   decimal.Decimal
}

// AgencyBonusReport строит выписки всех моделей агентства параллельно и собирает их итоги.
func (s *Service) AgencyBonusReport(ctx context.Context, agencyID int64, from, to time.Time) (*AgencyReport, error) {
	from, to = schedule.Day(from), schedule.Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	agency, err := s.repo.GetAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	workers, err := s.repo.ListWorkersByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	results := make([]WorkerBonus, len(workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.reportWorkers)
	for i, w := range workers {
		g.Go(func() error {
			st, err := s.WorkerStatement(gctx, w.ID, from, to)
			if err != nil {
				return fmt.Errorf("worker %d statement: %w", w.ID, err)
			}
			results[i] = WorkerBonus{
				Worker:    w,
				Sessions:  st.Totals.Sessions,
				WorkerNet: st.Totals.WorkerNet,
				Bonus:     st.Totals.Bonus,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("agency bonus report error", zap.Error(err), zap.Int64("agencyID", agencyID))
		return nil, err
	}

	report := &AgencyReport{Agency: *agency, From: from, To: to, Workers: results, Bonus: decimal.Zero}
	for _, r := range results {
		report.Bonus = report.Bonus.Add(r.Bonus)
	}
	return report, nil
}
