package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/studio-shifts/internal/model"
	"github.com/mmeshcher/studio-shifts/internal/validation"
)

// GetSession возвращает смену с паузами и текущими длительностями.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	details, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, "get session error", err, zap.Int64("sessionID", sessionID))
		return
	}

	h.writeJSON(w, newDetailsResponse(details))
}

type transitionFunc func(ctx context.Context, sessionID int64) (*model.WorkSession, error)

// transition выполняет переход смены без тела запроса.
func (h *Handler) transition(op string, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := idParam(r, "sessionID")
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		ws, err := fn(r.Context(), sessionID)
		if err != nil {
			h.writeError(w, op+" error", err, zap.Int64("sessionID", sessionID))
			return
		}

		h.writeJSON(w, newSessionResponse(ws))
	}
}

// ConfirmPresence отмечает приход модели.
func (h *Handler) ConfirmPresence(w http.ResponseWriter, r *http.Request) {
	h.transition("confirm presence", h.service.ConfirmPresence)(w, r)
}

// ReactivateFromAbsent снимает отметку отсутствия.
func (h *Handler) ReactivateFromAbsent(w http.ResponseWriter, r *http.Request) {
	h.transition("reactivate", h.service.ReactivateFromAbsent)(w, r)
}

// Reopen возвращает завершённую смену в работу.
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition("reopen", h.service.Reopen)(w, r)
}

// MarkAbsent отмечает отсутствие модели.
func (h *Handler) MarkAbsent(w http.ResponseWriter, r *http.Request) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req absenceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	}

	ws, err := h.service.MarkAbsent(r.Context(), sessionID, req.Approved)
	if err != nil {
		h.writeError(w, "mark absent error", err, zap.Int64("sessionID", sessionID))
		return
	}

	h.writeJSON(w, newSessionResponse(ws))
}

// StartPause открывает паузу вида из пути запроса.
func (h *Handler) StartPause(w http.ResponseWriter, r *http.Request) {
	h.pause(w, r, true)
}

// EndPause закрывает паузу вида из пути запроса.
func (h *Handler) EndPause(w http.ResponseWriter, r *http.Request) {
	h.pause(w, r, false)
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request, start bool) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	kind, err := validation.ParsePauseType(chiParam(r, "pauseType"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var ws *model.WorkSession
	if start {
		ws, err = h.service.StartPause(r.Context(), sessionID, kind)
	} else {
		ws, err = h.service.EndPause(r.Context(), sessionID, kind)
	}
	if err != nil {
		h.writeError(w, "pause error", err,
			zap.Int64("sessionID", sessionID), zap.String("type", string(kind)), zap.Bool("start", start))
		return
	}

	h.writeJSON(w, newSessionResponse(ws))
}

// Complete завершает смену с доходом в иностранной валюте.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID, err := idParam(r, "sessionID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	gain, err := validation.ParseAmount(req.Gain)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	ws, err := h.service.Complete(r.Context(), sessionID, gain, req.Description)
	if err != nil {
		h.writeError(w, "complete session error", err, zap.Int64("sessionID", sessionID))
		return
	}

	h.writeJSON(w, newSessionResponse(ws))
}
