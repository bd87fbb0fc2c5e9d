package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/studio-shifts/internal/bonus"
	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/service"
	"github.com/mmeshcher/studio-shifts/internal/validation"
)

type absenceRequest struct {
	Approved bool `json:"approved"`
}

type completeRequest struct {
	Gain        string `json:"gain"`
	Description string `json:"description"`
}

type pauseResponse struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
}

type sessionResponse struct {
	ID                    int64               `json:"id"`
	WorkerID              int64               `json:"worker_id"`
	WorkerName            string              `json:"worker_name,omitempty"`
	Date                  string              `json:"date"`
	Status                string              `json:"status"`
	ArrivedAt             *string             `json:"arrived_at,omitempty"`
	LateMinutes           int                 `json:"late_minutes"`
	EndedAt               *string             `json:"ended_at,omitempty"`
	WorkedHours           decimal.NullDecimal `json:"worked_hours"`
	PresenceHours         decimal.NullDecimal `json:"presence_hours"`
	PauseHours            *decimal.Decimal    `json:"pause_hours,omitempty"`
	LatePenalty           decimal.Decimal     `json:"late_penalty"`
	AbsencePenalty        decimal.Decimal     `json:"absence_penalty"`
	GainForeign           decimal.NullDecimal `json:"gain_foreign"`
	GainLocal             decimal.Decimal     `json:"gain_local"`
	ExchangeRate          decimal.NullDecimal `json:"exchange_rate"`
	FeePercentage         decimal.NullDecimal `json:"fee_percentage"`
	WorkerSharePercentage decimal.NullDecimal `json:"worker_share_percentage"`
	FeeAmount             decimal.Decimal     `json:"fee_amount"`
	WorkerNet             decimal.Decimal     `json:"worker_net"`
	Pauses                []pauseResponse     `json:"pauses"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func newSessionResponse(ws *model.WorkSession) sessionResponse {
	resp := sessionResponse{
		ID:                    ws.ID,
		WorkerID:              ws.WorkerID,
		Date:                  ws.Date.Format(validation.DateLayout),
		Status:                string(ws.Status),
		ArrivedAt:             formatTime(ws.ArrivedAt),
		LateMinutes:           ws.LateMinutes,
		EndedAt:               formatTime(ws.EndedAt),
		WorkedHours:           ws.WorkedHours,
		LatePenalty:           ws.LatePenalty,
		AbsencePenalty:        ws.AbsencePenalty,
		GainForeign:           ws.GainForeign,
		GainLocal:             ws.GainLocal,
		ExchangeRate:          ws.ExchangeRate,
		FeePercentage:         ws.FeePercentage,
		WorkerSharePercentage: ws.WorkerSharePercentage,
		FeeAmount:             ws.FeeAmount,
		WorkerNet:             ws.WorkerNet,
		Pauses:                make([]pauseResponse, 0, len(ws.Pauses)),
	}
	for _, p := range ws.Pauses {
		resp.Pauses = append(resp.Pauses, pauseResponse{
			ID:        p.ID,
			Type:      string(p.Type),
			StartedAt: p.StartedAt.Format(time.RFC3339),
			EndedAt:   formatTime(p.EndedAt),
		})
	}
	return resp
}

func newDetailsResponse(d *service.SessionDetails) sessionResponse {
	resp := newSessionResponse(&d.Session)
	resp.WorkerName = d.Worker.FullName()
	resp.WorkedHours = d.WorkedHours
	resp.PresenceHours = d.PresenceHours
	pause := d.PauseHours
	resp.PauseHours = &pause
	return resp
}

type countersResponse struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Active         int `json:"active"`
	Completed      int `json:"completed"`
	Late           int `json:"late"`
	Absent         int `json:"absent"`
	AbsentApproved int `json:"absent_approved"`
}

type boardResponse struct {
	Date       string            `json:"date"`
	AgencyID   int64             `json:"agency_id"`
	AgencyName string            `json:"agency_name"`
	Sessions   []sessionResponse `json:"sessions"`
	Counters   countersResponse  `json:"counters"`
}

func newBoardResponse(b *service.Board) boardResponse {
	c := b.Counters
	resp := boardResponse{
		Date:       b.Date.Format(validation.DateLayout),
		AgencyID:   b.Agency.ID,
		AgencyName: b.Agency.Name,
		Sessions:   make([]sessionResponse, 0, len(b.Sessions)),
		Counters: countersResponse{
			Total:          c.Total,
			Pending:        c.Pending,
			Active:         c.Active,
			Completed:      c.Completed,
			Late:           c.Late,
			Absent:         c.Absent,
			AbsentApproved: c.AbsentApproved,
		},
	}
	for i := range b.Sessions {
		resp.Sessions = append(resp.Sessions, newDetailsResponse(&b.Sessions[i]))
	}
	return resp
}

type bonusEntryResponse struct {
	RuleID      int64           `json:"rule_id"`
	RuleName    string          `json:"rule_name"`
	Period      string          `json:"period"`
	WindowStart string          `json:"window_start"`
	WindowEnd   string          `json:"window_end"`
	TargetDate  string          `json:"target_date"`
	SessionID   int64           `json:"session_id"`
	Amount      decimal.Decimal `json:"amount"`
	Average     decimal.Decimal `json:"average"`
	WorkedDays  int             `json:"worked_days"`
}

func newBonusEntryResponse(e bonus.Entry) bonusEntryResponse {
	return bonusEntryResponse{
		RuleID:      e.RuleID,
		RuleName:    e.RuleName,
		Period:      string(e.Window.Period),
		WindowStart: e.Window.Start.Format(validation.DateLayout),
		WindowEnd:   e.Window.End.Format(validation.DateLayout),
		TargetDate:  e.TargetDate.Format(validation.DateLayout),
		SessionID:   e.SessionID,
		Amount:      e.Amount,
		Average:     e.Average,
		WorkedDays:  e.WorkedDays,
	}
}

type statementLineResponse struct {
	Session sessionResponse `json:"session"`
	Bonus   decimal.Decimal `json:"bonus"`
}

type statementTotalsResponse struct {
	Sessions    int             `json:"sessions"`
	GainForeign decimal.Decimal `json:"gain_foreign"`
	GainLocal   decimal.Decimal `json:"gain_local"`
	Fees        decimal.Decimal `json:"fees"`
	Penalties   decimal.Decimal `json:"penalties"`
	WorkerNet   decimal.Decimal `json:"worker_net"`
	Bonus       decimal.Decimal `json:"bonus"`
	Payable     decimal.Decimal `json:"payable"`
	WorkedHours decimal.Decimal `json:"worked_hours"`
}

type statementResponse struct {
	WorkerID   int64                   `json:"worker_id"`
	WorkerName string                  `json:"worker_name"`
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Lines      []statementLineResponse `json:"lines"`
	Bonuses    []bonusEntryResponse    `json:"bonuses"`
	Totals     statementTotalsResponse `json:"totals"`
}

func newStatementResponse(st *service.Statement) statementResponse {
	t := st.Totals
	resp := statementResponse{
		WorkerID:   st.Worker.ID,
		WorkerName: st.Worker.FullName(),
		From:       st.From.Format(validation.DateLayout),
		To:         st.To.Format(validation.DateLayout),
		Lines:      make([]statementLineResponse, 0, len(st.Lines)),
		Bonuses:    make([]bonusEntryResponse, 0, len(st.Bonuses)),
		Totals: statementTotalsResponse{
			Sessions:    t.Sessions,
			GainForeign: t.GainForeign,
			GainLocal:   t.GainLocal,
			Fees:        t.Fees,
			Penalties:   t.Penalties,
			WorkerNet:   t.WorkerNet,
			Bonus:       t.Bonus,
			Payable:     t.Payable,
			WorkedHours: t.WorkedHours,
		},
	}
	for i := range st.Lines {
		resp.Lines = append(resp.Lines, statementLineResponse{
			Session: newSessionResponse(&st.Lines[i].Session),
			Bonus:   st.Lines[i].Bonus,
		})
	}
	for _, e := range st.Bonuses {
		resp.Bonuses = append(resp.Bonuses, newBonusEntryResponse(e))
	}
	return resp
}

type milestoneResponse struct {
	RuleID     int64           `json:"rule_id"`
	Name       string          `json:"name"`
	Currency   string          `json:"currency"`
	Target     decimal.Decimal `json:"target"`
	BonusType  string          `json:"bonus_type"`
	BonusValue decimal.Decimal `json:"bonus_value"`
	Reached    bool            `json:"reached"`
}

type progressResponse struct {
	WindowStart    string              `json:"window_start"`
	WindowEnd      string              `json:"window_end"`
	WorkedDays     int                 `json:"worked_days"`
	Sessions       int                 `json:"sessions"`
	LocalTotal     decimal.Decimal     `json:"local_total"`
	ForeignTotal   decimal.Decimal     `json:"foreign_total"`
	LocalAverage   decimal.Decimal     `json:"local_average"`
	ForeignAverage decimal.Decimal     `json:"foreign_average"`
	Milestones     []milestoneResponse `json:"milestones"`
}

func newProgressResponse(p *bonus.HalfMonthProgress) progressResponse {
	resp := progressResponse{
		WindowStart:    p.Window.Start.Format(validation.DateLayout),
		WindowEnd:      p.Window.End.Format(validation.DateLayout),
		WorkedDays:     p.WorkedDays,
		Sessions:       p.Sessions,
		LocalTotal:     p.LocalTotal,
		ForeignTotal:   p.ForeignTotal,
		LocalAverage:   p.LocalAverage,
		ForeignAverage: p.ForeignAverage,
		Milestones:     make([]milestoneResponse, 0, len(p.Milestones)),
	}
	for _, m := range p.Milestones {
		resp.Milestones = append(resp.Milestones, milestoneResponse{
			RuleID:     m.RuleID,
			Name:       m.Name,
			Currency:   string(m.Currency),
			Target:     m.Target,
			BonusType:  string(m.BonusType),
			BonusValue: m.BonusValue,
			Reached:    m.Reached,
		})
	}
	return resp
}

type workerBonusResponse struct {
	WorkerID   int64           `json:"worker_id"`
	WorkerName string          `json:"worker_name"`
	Sessions   int             `json:"sessions"`
	WorkerNet  decimal.Decimal `json:"worker_net"`
	Bonus      decimal.Decimal `json:"bonus"`
}

type agencyReportResponse struct {
	AgencyID   int64                 `json:"agency_id"`
	AgencyName string                `json:"agency_name"`
	From       string                `json:"from"`
	To         string                `json:"to"`
	Workers    []workerBonusResponse `json:"workers"`
	Bonus      decimal.Decimal       `json:"bonus"`
}

func newAgencyReportResponse(r *service.AgencyReport) agencyReportResponse {
	resp := agencyReportResponse{
		AgencyID:   r.Agency.ID,
		AgencyName: r.Agency.Name,
		From:       r.From.Format(validation.DateLayout),
		To:         r.To.Format(validation.DateLayout),
		Workers:    make([]workerBonusResponse, 0, len(r.Workers)),
		Bonus:      r.Bonus,
	}
	for _, w := range r.Workers {
		resp.Workers = append(resp.Workers, workerBonusResponse{
			WorkerID:   w.Worker.ID,
			WorkerName: w.Worker.FullName(),
			Sessions:   w.Sessions,
			WorkerNet:  w.WorkerNet,
			Bonus:      w.Bonus,
		})
	}
	return resp
}
