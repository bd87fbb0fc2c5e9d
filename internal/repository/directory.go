package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/schedule"
)

const (
	agencyColumns   = `a.id, a.name, a.fee_percentage, a.worker_share_percentage, a.late_penalty, a.absence_penalty`
	workerColumns   = `w.id, w.agency_id, w.first_name, w.last_name, w.entry_date, w.exit_date`
	scheduleColumns = `s.id, s.agency_id, s.name, s.start_time, s.end_time, s.week_days, s.is_active`
)

func scanAgency(row scanner, a *model.Agency) error {
	return row.Scan(&a.ID, &a.Name, &a.FeePercentage, &a.WorkerSharePercentage, &a.LatePenalty, &a.AbsencePenalty)
}

type workerRow struct {
	entry *time.Time
	exit  *time.Time
}

func (w *workerRow) dest(m *model.Worker) []any {
	return []any{&m.ID, &m.AgencyID, &m.FirstName, &m.LastName, &w.entry, &w.exit}
}

func (w *workerRow) apply(m *model.Worker) {
	if w.entry != nil {
		m.EntryDate = *w.entry
	}
	m.ExitDate = w.exit
}

type scheduleRow struct {
	start    pgtype.Time
	end      pgtype.Time
	weekDays string
}

func (s *scheduleRow) dest(m *model.Schedule) []any {
	return []any{&m.ID, &m.AgencyID, &m.Name, &s.start, &s.end, &s.weekDays, &m.IsActive}
}

func (s *scheduleRow) apply(m *model.Schedule) error {
	m.StartTime = timeOfDay(s.start)
	m.EndTime = timeOfDay(s.end)
	days, err := schedule.ParseWeekDays(s.weekDays)
	if err != nil {
		return fmt.Errorf("schedule %d: %w", m.ID, err)
	}
	m.WeekDays = days
	return nil
}

func timeOfDay(t pgtype.Time) time.Duration {
	if !t.Valid {
		return 0
	}
	return time.Duration(t.Microseconds) * time.Microsecond
}

// GetAgency возвращает агентство по идентификатору.
func (r *PostgresRepository) GetAgency(ctx context.Context, agencyID int64) (*model.Agency, error) {
	var a model.Agency
	err := scanAgency(r.pool.QueryRow(ctx,
		`SELECT `+agencyColumns+` FROM agencies a WHERE a.id = $1`,
		agencyID,
	), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("agency %d: %w", agencyID, ErrNotFound)
		}
		return nil, fmt.Errorf("get agency: %w", err)
	}
	return &a, nil
}

// GetWorker возвращает модель по идентификатору.
func (r *PostgresRepository) GetWorker(ctx context.Context, workerID int64) (*model.Worker, error) {
	var (
		w   model.Worker
		row workerRow
	)
	err := r.pool.QueryRow(ctx,
		`SELECT `+workerColumns+` FROM workers w WHERE w.id = $1`,
		workerID,
	).Scan(row.dest(&w)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("worker %d: %w", workerID, ErrNotFound)
		}
		return nil, fmt.Errorf("get worker: %w", err)
	}
	row.apply(&w)
	return &w, nil
}

// ListWorkersByAgency возвращает моделей агентства.
func (r *PostgresRepository) ListWorkersByAgency(ctx context.Context, agencyID int64) ([]model.Worker, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workerColumns+`
		 FROM workers w
		 WHERE w.agency_id = $1
		 ORDER BY w.id`,
		agencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("select workers: %w", err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		var (
			w   model.Worker
			row workerRow
		)
		if err := rows.Scan(row.dest(&w)...); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		row.apply(&w)
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return workers, nil
}

func (r *PostgresRepository) listAssignments(ctx context.Context, where string, arg int64) ([]model.ScheduleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sa.id, sa.worker_id, sa.schedule_id, sa.is_active, `+scheduleColumns+`, `+workerColumns+`
		 FROM schedule_assignments sa
		 JOIN schedules s ON s.id = sa.schedule_id
		 JOIN workers w ON w.id = sa.worker_id
		 WHERE `+where+` AND sa.is_active AND s.is_active
		 ORDER BY w.id, sa.id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("select assignments: %w", err)
	}
	defer rows.Close()

	var res []model.ScheduleAssignment
	for rows.Next() {
		var (
			a    model.ScheduleAssignment
			sRow scheduleRow
			wRow workerRow
		)
		dest := []any{&a.ID, &a.WorkerID, &a.ScheduleID, &a.IsActive}
		dest = append(dest, sRow.dest(&a.Schedule)...)
		dest = append(dest, wRow.dest(&a.Worker)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if err := sRow.apply(&a.Schedule); err != nil {
			return nil, err
		}
		wRow.apply(&a.Worker)
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListActiveAssignmentsByAgency возвращает активные назначения расписаний всех моделей агентства.
func (r *PostgresRepository) ListActiveAssignmentsByAgency(ctx context.Context, agencyID int64) ([]model.ScheduleAssignment, error) {
	return r.listAssignments(ctx, `w.agency_id = $1`, agencyID)
}

// ListActiveAssignmentsByWorker возвращает активные назначения расписаний модели.
func (r *PostgresRepository) ListActiveAssignmentsByWorker(ctx context.Context, workerID int64) ([]model.ScheduleAssignment, error) {
	return r.listAssignments(ctx, `sa.worker_id = $1`, workerID)
}

func loadSchedule(ctx context.Context, q querier, assignmentID int64) (*model.Schedule, error) {
	var (
		s   model.Schedule
		row scheduleRow
	)
	err := q.QueryRow(ctx,
		`SELECT `+scheduleColumns+`
		 FROM schedule_assignments sa
		 JOIN schedules s ON s.id = sa.schedule_id
		 WHERE sa.id = $1`,
		assignmentID,
	).Scan(row.dest(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if err := row.apply(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveBonusRules возвращает активные правила бонусов агентства в порядке применения.
func (r *PostgresRepository) ListActiveBonusRules(ctx context.Context, agencyID int64) ([]model.BonusRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agency_id, name, period_type, target_currency, target_amount,
		        bonus_type, bonus_value, sort_order, stop_on_match, is_active
		 FROM bonus_rules
		 WHERE agency_id = $1 AND is_active
		 ORDER BY sort_order, id`,
		agencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("select bonus rules: %w", err)
	}
	defer rows.Close()

	var rules []model.BonusRule
	for rows.Next() {
		var (
			rule                        model.BonusRule
			period, currency, bonusType string
		)
		if err := rows.Scan(&rule.ID, &rule.AgencyID, &rule.Name, &period, &currency, &rule.TargetAmount,
			&bonusType, &rule.BonusValue, &rule.Order, &rule.StopOnMatch, &rule.IsActive); err != nil {
			return nil, fmt.Errorf("scan bonus rule: %w", err)
		}
		rule.PeriodType = model.PeriodType(period)
		rule.TargetCurrency = model.Currency(currency)
		rule.BonusType = model.BonusType(bonusType)
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return rules, nil
}
