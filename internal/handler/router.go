package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	custommiddleware "github.com/mmeshcher/studio-shifts/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса учёта смен.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Encoding"},
		MaxAge:         300,
	}))
	r.Use(custommiddleware.GzipMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/agencies/{agencyID}", func(r chi.Router) {
			r.Get("/board", h.DailyBoard)
			r.Get("/bonuses", h.AgencyBonuses)
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/presence", h.ConfirmPresence)
			r.Post("/absence", h.MarkAbsent)
			r.Post("/reactivate", h.ReactivateFromAbsent)
			r.Post("/pauses/{pauseType}/start", h.StartPause)
			r.Post("/pauses/{pauseType}/end", h.EndPause)
			r.Post("/complete", h.Complete)
			r.Post("/reopen", h.Reopen)
		})

		r.Route("/workers/{workerID}", func(r chi.Router) {
			r.Get("/statement", h.WorkerStatement)
			r.Get("/progress", h.WorkerProgress)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
