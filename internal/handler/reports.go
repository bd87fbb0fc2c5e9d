package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/studio-shifts/internal/validation"
)

// DailyBoard возвращает смены агентства за дату, создавая недостающие.
// Без параметра date используется текущий день.
func (h *Handler) DailyBoard(w http.ResponseWriter, r *http.Request) {
	agencyID, err := idParam(r, "agencyID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	date, err := validation.ParseDateOr(r.URL.Query().Get("date"), h.today())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	board, err := h.service.DailyBoard(r.Context(), agencyID, date)
	if err != nil {
		h.writeError(w, "daily board error", err, zap.Int64("agencyID", agencyID))
		return
	}

	h.writeJSON(w, newBoardResponse(board))
}

// AgencyBonuses возвращает бонусы всех моделей агентства за период.
func (h *Handler) AgencyBonuses(w http.ResponseWriter, r *http.Request) {
	agencyID, err := idParam(r, "agencyID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	report, err := h.service.AgencyBonusReport(r.Context(), agencyID, from, to)
	if err != nil {
		h.writeError(w, "agency bonus report error", err, zap.Int64("agencyID", agencyID))
		return
	}

	h.writeJSON(w, newAgencyReportResponse(report))
}

// WorkerStatement возвращает выписку модели за период.
func (h *Handler) WorkerStatement(w http.ResponseWriter, r *http.Request) {
	workerID, err := idParam(r, "workerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	st, err := h.service.WorkerStatement(r.Context(), workerID, from, to)
	if err != nil {
		h.writeError(w, "worker statement error", err, zap.Int64("workerID", workerID))
		return
	}

	h.writeJSON(w, newStatementResponse(st))
}

// WorkerProgress возвращает показатели модели в текущей половине месяца.
func (h *Handler) WorkerProgress(w http.ResponseWriter, r *http.Request) {
	workerID, err := idParam(r, "workerID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	date, err := validation.ParseDateOr(r.URL.Query().Get("date"), h.today())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p, err := h.service.Progress(r.Context(), workerID, date)
	if err != nil {
		h.writeError(w, "worker progress error", err, zap.Int64("workerID", workerID))
		return
	}

	h.writeJSON(w, newProgressResponse(p))
}
