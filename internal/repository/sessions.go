package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/session"
)

const sessionColumns = `ws.id, ws.worker_id, ws.assignment_id, ws.date, ws.status,
	ws.arrived_at, ws.late_minutes, ws.ended_at, ws.worked_hours,
	ws.late_penalty, ws.absence_penalty,
	ws.gain_foreign, ws.gain_local, ws.exchange_rate, ws.fee_percentage, ws.worker_share_percentage,
	ws.fee_amount, ws.worker_net,
	ws.break_start, ws.break_end, ws.meal_start, ws.meal_end, ws.coaching_start, ws.coaching_end,
	ws.created_at, ws.updated_at`

// SessionRecord содержит смену вместе с моделью, агентством и расписанием назначения.
type SessionRecord struct {
	Session model.WorkSession
	Worker  model.Worker
	Agency  model.Agency
	// Schedule равно nil, если смена создана без назначения.
	Schedule *model.Schedule
}

func sessionDest(s *model.WorkSession, status *string) []any {
	return []any{
		&s.ID, &s.WorkerID, &s.AssignmentID, &s.Date, status,
		&s.ArrivedAt, &s.LateMinutes, &s.EndedAt, &s.WorkedHours,
		&s.LatePenalty, &s.AbsencePenalty,
		&s.GainForeign, &s.GainLocal, &s.ExchangeRate, &s.FeePercentage, &s.WorkerSharePercentage,
		&s.FeeAmount, &s.WorkerNet,
		&s.Legacy.Break.Start, &s.Legacy.Break.End,
		&s.Legacy.Meal.Start, &s.Legacy.Meal.End,
		&s.Legacy.Coaching.Start, &s.Legacy.Coaching.End,
		&s.CreatedAt, &s.UpdatedAt,
	}
}

func scanSession(row scanner) (model.WorkSession, error) {
	var (
		s      model.WorkSession
		status string
	)
	if err := row.Scan(sessionDest(&s, &status)...); err != nil {
		return model.WorkSession{}, err
	}
	s.Status = model.SessionStatus(status)
	return s, nil
}

func loadPauses(ctx context.Context, q querier, sessionIDs []int64) (map[int64][]model.Pause, error) {
	res := make(map[int64][]model.Pause, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return res, nil
	}

	rows, err := q.Query(ctx,
		`SELECT id, session_id, type, started_at, ended_at
		 FROM pauses
		 WHERE session_id = ANY($1)
		 ORDER BY started_at, id`,
		sessionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select pauses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p    model.Pause
			kind string
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &kind, &p.StartedAt, &p.EndedAt); err != nil {
			return nil, fmt.Errorf("scan pause: %w", err)
		}
		p.Type = model.PauseType(kind)
		res[p.SessionID] = append(res[p.SessionID], p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func (r *PostgresRepository) listSessions(ctx context.Context, query string, args ...any) ([]model.WorkSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	var (
		sessions []model.WorkSession
		ids      []int64
	)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
		ids = append(ids, s.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	pauses, err := loadPauses(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Pauses = pauses[sessions[i].ID]
	}

	return sessions, nil
}

// GetSessionRecord возвращает смену с паузами, моделью, агентством и расписанием.
func (r *PostgresRepository) GetSessionRecord(ctx context.Context, sessionID int64) (*SessionRecord, error) {
	var (
		rec    SessionRecord
		status string
		wRow   workerRow
	)

	dest := sessionDest(&rec.Session, &status)
	dest = append(dest, wRow.dest(&rec.Worker)...)
	dest = append(dest, &rec.Agency.ID, &rec.Agency.Name, &rec.Agency.FeePercentage,
		&rec.Agency.WorkerSharePercentage, &rec.Agency.LatePenalty, &rec.Agency.AbsencePenalty)

	err := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`, `+workerColumns+`, `+agencyColumns+`
		 FROM work_sessions ws
		 JOIN workers w ON w.id = ws.worker_id
		 JOIN agencies a ON a.id = w.agency_id
		 WHERE ws.id = $1`,
		sessionID,
	).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	rec.Session.Status = model.SessionStatus(status)
	wRow.apply(&rec.Worker)

	pauses, err := loadPauses(ctx, r.pool, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	rec.Session.Pauses = pauses[sessionID]

	if rec.Session.AssignmentID != nil {
		rec.Schedule, err = loadSchedule(ctx, r.pool, *rec.Session.AssignmentID)
		if err != nil {
			return nil, err
		}
	}

	return &rec, nil
}

// EnsureSession возвращает смену модели за дату, создавая её при отсутствии.
// Повторные и параллельные вызовы возвращают одну и ту же смену.
func (r *PostgresRepository) EnsureSession(ctx context.Context, workerID int64, assignmentID *int64, date time.Time) (*model.WorkSession, error) {
	var s model.WorkSession

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		_, err = tx.Exec(ctx,
			`INSERT INTO work_sessions (worker_id, assignment_id, date, status)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (worker_id, date) DO NOTHING`,
			workerID, assignmentID, date, string(model.StatusPending),
		)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		s, err = scanSession(tx.QueryRow(ctx,
			`SELECT `+sessionColumns+` FROM work_sessions ws WHERE ws.worker_id = $1 AND ws.date = $2`,
			workerID, date,
		))
		if err != nil {
			return fmt.Errorf("select session: %w", err)
		}

		pauses, err := loadPauses(ctx, tx, []int64{s.ID})
		if err != nil {
			return err
		}
		s.Pauses = pauses[s.ID]

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ListSessionsByAgencyDate возвращает смены всех моделей агентства за дату.
func (r *PostgresRepository) ListSessionsByAgencyDate(ctx context.Context, agencyID int64, date time.Time) ([]model.WorkSession, error) {
	return r.listSessions(ctx,
		`SELECT `+sessionColumns+`
		 FROM work_sessions ws
		 JOIN workers w ON w.id = ws.worker_id
		 WHERE w.agency_id = $1 AND ws.date = $2
		 ORDER BY w.first_name, w.last_name, ws.id`,
		agencyID, date,
	)
}

// ListWorkerSessions возвращает смены модели за период включительно.
func (r *PostgresRepository) ListWorkerSessions(ctx context.Context, workerID int64, from, to time.Time) ([]model.WorkSession, error) {
	return r.listSessions(ctx,
		`SELECT `+sessionColumns+`
		 FROM work_sessions ws
		 WHERE ws.worker_id = $1 AND ws.date BETWEEN $2 AND $3
		 ORDER BY ws.date`,
		workerID, from, to,
	)
}

// ApplyChange сохраняет результат операции над сменой одной транзакцией:
// поля смены, открытую или закрытую паузу и дневной доход.
func (r *PostgresRepository) ApplyChange(ctx context.Context, ch session.Change) (*model.WorkSession, error) {
	s := ch.Session
	if ch.Unchanged {
		return &s, nil
	}

	if s.Pauses != nil {
		pauses := make([]model.Pause, len(s.Pauses))
		copy(pauses, s.Pauses)
		s.Pauses = pauses
	}

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`UPDATE work_sessions SET
			     status = $2, arrived_at = $3, late_minutes = $4, ended_at = $5, worked_hours = $6,
			     late_penalty = $7, absence_penalty = $8,
			     gain_foreign = $9, gain_local = $10, exchange_rate = $11,
			     fee_percentage = $12, worker_share_percentage = $13,
			     fee_amount = $14, worker_net = $15,
			     updated_at = now()
			 WHERE id = $1
			 RETURNING updated_at`,
			s.ID, string(s.Status), s.ArrivedAt, s.LateMinutes, s.EndedAt, s.WorkedHours,
			s.LatePenalty, s.AbsencePenalty,
			s.GainForeign, s.GainLocal, s.ExchangeRate,
			s.FeePercentage, s.WorkerSharePercentage,
			s.FeeAmount, s.WorkerNet,
		).Scan(&s.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("session %d: %w", s.ID, ErrNotFound)
			}
			return fmt.Errorf("update session: %w", err)
		}

		if p := ch.ClosedPause; p != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE pauses SET ended_at = $2 WHERE id = $1 AND ended_at IS NULL`,
				p.ID, p.EndedAt,
			); err != nil {
				return fmt.Errorf("close pause: %w", err)
			}
		}

		if p := ch.OpenedPause; p != nil {
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO pauses (session_id, type, started_at) VALUES ($1, $2, $3) RETURNING id`,
				s.ID, string(p.Type), p.StartedAt,
			).Scan(&id)
			if err != nil {
				if isUniqueViolation(err) {
					return ErrPauseAlreadyActive
				}
				return fmt.Errorf("insert pause: %w", err)
			}
			for i := range s.Pauses {
				if s.Pauses[i].ID == 0 && s.Pauses[i].IsOpen() {
					s.Pauses[i].ID = id
				}
			}
		}

		if g := ch.Gain; g != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO daily_gains (worker_id, date, amount, description)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (worker_id, date) DO UPDATE SET amount = EXCLUDED.amount, description = EXCLUDED.description`,
				g.WorkerID, g.Date, g.Amount, g.Description,
			); err != nil {
				return fmt.Errorf("upsert daily gain: %w", err)
			}
		}

		if ch.DeleteGain {
			if _, err := tx.Exec(ctx,
				`DELETE FROM daily_gains WHERE worker_id = $1 AND date = $2`,
				s.WorkerID, s.Date,
			); err != nil {
				return fmt.Errorf("delete daily gain: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}
