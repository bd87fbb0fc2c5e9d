package session

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/studio-shifts/internal/compensation"
	"github.com/mmeshcher/studio-shifts/internal/model"
)

var (
	day      = time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	expected = time.Date(2025, time.March, 7, 14, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTerms() Terms {
	exp := expected
	return Terms{
		Agency: model.Agency{
			ID:                    1,
			FeePercentage:         dec("10"),
			WorkerSharePercentage: dec("60"),
			LatePenalty:           dec("5000"),
			AbsencePenalty:        dec("20000"),
		},
		ExpectedStart: &exp,
	}
}

func pending() model.WorkSession {
	return model.WorkSession{ID: 10, WorkerID: 3, Date: day, Status: model.StatusPending}
}

func started(t *testing.T, at time.Time) model.WorkSession {
	t.Helper()
	ch, err := ConfirmPresence(pending(), testTerms(), at)
	require.NoError(t, err)
	return ch.Session
}

func TestLateMinutes(t *testing.T) {
	exp := expected
	tests := []struct {
		name     string
		arrival  time.Time
		expected *time.Time
		want     int
	}{
		{name: "on time", arrival: expected, expected: &exp, want: 0},
		{name: "early", arrival: expected.Add(-10 * time.Minute), expected: &exp, want: 0},
		{name: "one second late", arrival: expected.Add(time.Second), expected: &exp, want: 1},
		{name: "exact minutes", arrival: expected.Add(12 * time.Minute), expected: &exp, want: 12},
		{name: "partial minute", arrival: expected.Add(12*time.Minute + 30*time.Second), expected: &exp, want: 13},
		{name: "no schedule", arrival: expected.Add(time.Hour), expected: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LateMinutes(tt.arrival, tt.expected))
		})
	}
}

func TestConfirmPresence_LatenessAndPenalty(t *testing.T) {
	for _, offset := range []time.Duration{-time.Hour, 0, time.Second, 45 * time.Minute} {
		ch, err := ConfirmPresence(pending(), testTerms(), expected.Add(offset))
		require.NoError(t, err)

		s := ch.Session
		assert.Equal(t, model.StatusStarted, s.Status)
		require.NotNil(t, s.ArrivedAt)
		assert.True(t, s.ArrivedAt.Equal(expected.Add(offset)))

		late := s.LateMinutes > 0
		assert.Equal(t, offset > 0, late, "offset %v", offset)
		assert.Equal(t, late, s.LatePenalty.Equal(dec("5000")), "offset %v", offset)
		if !late {
			assert.True(t, s.LatePenalty.IsZero())
		}
	}
}

func TestConfirmPresence_NoSchedule(t *testing.T) {
	terms := testTerms()
	terms.ExpectedStart = nil

	ch, err := ConfirmPresence(pending(), terms, expected.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, ch.Session.LateMinutes)
	assert.True(t, ch.Session.LatePenalty.IsZero())
}

func TestConfirmPresence_DoesNotMutateInput(t *testing.T) {
	s := pending()
	_, err := ConfirmPresence(s, testTerms(), expected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, s.Status)
	assert.Nil(t, s.ArrivedAt)
}

func TestConfirmPresence_InvalidStates(t *testing.T) {
	for _, st := range []model.SessionStatus{
		model.StatusCompleted, model.StatusAbsent, model.StatusAbsentApproved, model.StatusOnBreak,
	} {
		s := pending()
		s.Status = st
		_, err := ConfirmPresence(s, testTerms(), expected)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", st)

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, st, te.From)
		assert.Equal(t, OpConfirmPresence, te.Op)
	}
}

func TestMarkAbsentAndReactivate(t *testing.T) {
	ch, err := MarkAbsent(pending(), testTerms(), false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbsent, ch.Session.Status)
	assert.True(t, ch.Session.AbsencePenalty.Equal(dec("20000")))

	ch, err = MarkAbsent(ch.Session, testTerms(), true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbsentApproved, ch.Session.Status)
	assert.True(t, ch.Session.AbsencePenalty.IsZero(), "approval must lift the absence penalty")

	ch, err = ReactivateFromAbsent(ch.Session, testTerms(), expected.Add(5*time.Minute))
	require.NoError(t, err)
	s := ch.Session
	assert.Equal(t, model.StatusStarted, s.Status)
	assert.True(t, s.AbsencePenalty.IsZero())
	assert.Equal(t, 5, s.LateMinutes)
	assert.True(t, s.LatePenalty.Equal(dec("5000")))

	_, err = ReactivateFromAbsent(s, testTerms(), expected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	completed := s
	completed.Status = model.StatusCompleted
	_, err = MarkAbsent(completed, testTerms(), false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPauses_AtMostOneOpen(t *testing.T) {
	s := started(t, expected)

	ch, err := StartPause(s, model.PauseBreak, expected.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, ch.OpenedPause)
	assert.Equal(t, model.PauseBreak, ch.OpenedPause.Type)
	assert.Equal(t, model.StatusOnBreak, ch.Session.Status)
	assert.Empty(t, s.Pauses, "input must stay untouched")

	_, err = StartPause(ch.Session, model.PauseMeal, expected.Add(time.Hour+time.Minute))
	assert.ErrorIs(t, err, ErrPauseAlreadyActive)

	_, err = EndPause(ch.Session, model.PauseMeal, expected.Add(time.Hour+time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ch, err = EndPause(ch.Session, model.PauseBreak, expected.Add(time.Hour+15*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, ch.ClosedPause)
	require.NotNil(t, ch.ClosedPause.EndedAt)
	assert.Equal(t, model.StatusStarted, ch.Session.Status)

	ch, err = StartPause(ch.Session, model.PauseMeal, expected.Add(2*time.Hour))
	require.NoError(t, err)

	open := 0
	for _, p := range ch.Session.Pauses {
		if p.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)
	assert.Len(t, ch.Session.Pauses, 2)
}

func TestStartPause_RequiresStarted(t *testing.T) {
	_, err := StartPause(pending(), model.PauseBreak, expected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndPause_SelfHeal(t *testing.T) {
	s := started(t, expected)
	s.Status = model.StatusOnCoaching

	ch, err := EndPause(s, model.PauseCoaching, expected.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.StatusStarted, ch.Session.Status)
	assert.Nil(t, ch.ClosedPause)

	_, err = EndPause(ch.Session, model.PauseCoaching, expected.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete(t *testing.T) {
	s := started(t, expected.Add(10*time.Minute))
	ch, err := StartPause(s, model.PauseMeal, expected.Add(3*time.Hour))
	require.NoError(t, err)
	ch, err = EndPause(ch.Session, model.PauseMeal, expected.Add(3*time.Hour+30*time.Minute))
	require.NoError(t, err)
	ch, err = StartPause(ch.Session, model.PauseBreak, expected.Add(8*time.Hour))
	require.NoError(t, err)

	end := expected.Add(8*time.Hour + 10*time.Minute)
	res := compensation.Calculate(compensation.InputFor(&ch.Session, testTerms().Agency, dec("100")), dec("4000"))

	ch, err = Complete(ch.Session, res, "night shift", end)
	require.NoError(t, err)

	done := ch.Session
	assert.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.EndedAt)
	assert.True(t, done.EndedAt.Equal(end))
	require.NotNil(t, ch.ClosedPause)
	assert.True(t, ch.ClosedPause.EndedAt.Equal(end))

	// 8h presence, 30m meal, 10m break.
	assert.Equal(t, "7.33", done.WorkedHours.Decimal.StringFixed(2))
	assert.True(t, done.GainLocal.Equal(dec("400000")))
	assert.True(t, done.WorkerNet.Equal(dec("211000")))

	require.NotNil(t, ch.Gain)
	assert.True(t, ch.Gain.Amount.Equal(dec("400000")))
	assert.Equal(t, "night shift", ch.Gain.Description)
	assert.Equal(t, s.WorkerID, ch.Gain.WorkerID)
}

func TestComplete_Rejected(t *testing.T) {
	res := compensation.Result{}

	_, err := Complete(pending(), res, "", expected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	noArrival := pending()
	noArrival.Status = model.StatusStarted
	_, err = Complete(noArrival, res, "", expected)
	assert.ErrorIs(t, err, ErrNoArrival)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkAbsent_Penalty(t *testing.T) {
	tests := []struct {
		name     string
		from     model.SessionStatus
		approved bool
		status   model.SessionStatus
		penalty  string
	}{
		{name: "pending unapproved", from: model.StatusPending, status: model.StatusAbsent, penalty: "20000"},
		{name: "pending approved", from: model.StatusPending, approved: true, status: model.StatusAbsentApproved, penalty: "0"},
		{name: "started approved", from: model.StatusStarted, approved: true, status: model.StatusAbsentApproved, penalty: "0"},
		{name: "approval revoked", from: model.StatusAbsentApproved, status: model.StatusAbsent, penalty: "20000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pending()
			s.Status = tt.from

			ch, err := MarkAbsent(s, testTerms(), tt.approved)
			require.NoError(t, err)
			assert.Equal(t, tt.status, ch.Session.Status)
			assert.True(t, ch.Session.AbsencePenalty.Equal(dec(tt.penalty)),
				"absence penalty = %s, want %s", ch.Session.AbsencePenalty, tt.penalty)
		})
	}
}

func TestReopen_StartedSessionIsUnchanged(t *testing.T) {
	s := started(t, expected)

	ch, err := Reopen(s)
	require.NoError(t, err)
	assert.True(t, ch.Unchanged)
	assert.False(t, ch.DeleteGain)
	assert.Equal(t, s.ArrivedAt, ch.Session.ArrivedAt)
}

func TestReopen_IsIdempotent(t *testing.T) {
	s := started(t, expected)
	res := compensation.Calculate(compensation.InputFor(&s, testTerms().Agency, dec("100")), dec("4000"))
	ch, err := Complete(s, res, "", expected.Add(6*time.Hour))
	require.NoError(t, err)

	first, err := Reopen(ch.Session)
	require.NoError(t, err)
	assert.True(t, first.DeleteGain)
	assert.False(t, first.Unchanged)
	assert.Equal(t, model.StatusStarted, first.Session.Status)
	assert.Nil(t, first.Session.EndedAt)
	assert.False(t, first.Session.WorkedHours.Valid)
	assert.False(t, first.Session.GainForeign.Valid)
	assert.True(t, first.Session.WorkerNet.IsZero())

	second, err := Reopen(first.Session)
	require.NoError(t, err)
	assert.True(t, second.Unchanged)
	assert.False(t, second.DeleteGain)
	assert.Equal(t, first.Session.Status, second.Session.Status)

	_, err = Reopen(pending())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteReopenComplete_SameFinancials(t *testing.T) {
	s := started(t, expected.Add(2*time.Minute))
	agency := testTerms().Agency
	end := expected.Add(7 * time.Hour)

	res := compensation.Calculate(compensation.InputFor(&s, agency, dec("250.75")), dec("4100.5"))
	first, err := Complete(s, res, "", end)
	require.NoError(t, err)

	reopened, err := Reopen(first.Session)
	require.NoError(t, err)

	res = compensation.Calculate(compensation.InputFor(&reopened.Session, agency, dec("250.75")), dec("4100.5"))
	second, err := Complete(reopened.Session, res, "", end)
	require.NoError(t, err)

	a, b := first.Session, second.Session
	assert.True(t, a.GainLocal.Equal(b.GainLocal))
	assert.True(t, a.FeeAmount.Equal(b.FeeAmount))
	assert.True(t, a.WorkerNet.Equal(b.WorkerNet))
	assert.True(t, a.LatePenalty.Equal(b.LatePenalty))
	assert.True(t, a.WorkedHours.Decimal.Equal(b.WorkedHours.Decimal))
	assert.True(t, first.Gain.Amount.Equal(second.Gain.Amount))
}

func TestWorkedHours_LegacyIntervals(t *testing.T) {
	arrived := expected
	ended := expected.Add(6 * time.Hour)
	breakStart := expected.Add(time.Hour)
	breakEnd := expected.Add(time.Hour + 45*time.Minute)
	pauseEnd := expected.Add(3*time.Hour + 15*time.Minute)

	s := &model.WorkSession{
		ArrivedAt: &arrived,
		EndedAt:   &ended,
		Legacy: model.LegacyPauses{
			Break: model.Interval{Start: &breakStart, End: &breakEnd},
		},
		Pauses: []model.Pause{
			{Type: model.PauseMeal, StartedAt: expected.Add(3 * time.Hour), EndedAt: &pauseEnd},
		},
	}

	now := expected.Add(10 * time.Hour)
	assert.Equal(t, "5.00", WorkedHours(s, now).Decimal.StringFixed(2))
	assert.Equal(t, "6.00", PresenceHours(s, now).Decimal.StringFixed(2))
	assert.Equal(t, "1.00", PauseHours(s, now).StringFixed(2))
}

func TestWorkedHours_NoArrival(t *testing.T) {
	s := &model.WorkSession{}
	assert.False(t, WorkedHours(s, expected).Valid)
	assert.False(t, PresenceHours(s, expected).Valid)
}
