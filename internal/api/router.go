package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/voicenews/internal/api/handlers"
	"github.com/nikhilbhutani/voicenews/internal/api/middleware"
	"github.com/nikhilbhutani/voicenews/internal/metrics"
	"github.com/nikhilbhutani/voicenews/internal/pipeline"
	"github.com/nikhilbhutani/voicenews/internal/preference"
	"github.com/nikhilbhutani/voicenews/internal/storage"
)

// Deps are the services the HTTP surface is built on. Queue and the
// entries of Checks may be nil.
type Deps struct {
	Prefs       *preference.Store
	Pipeline    *pipeline.Service
	Storage     storage.Storage
	Queue       handlers.PurgeEnqueuer
	Metrics     *metrics.Metrics
	Checks      map[string]handlers.Checker
	CORSOrigins []string
}

type Router struct {
	mux  *chi.Mux
	deps Deps
}

func NewRouter(deps Deps) *Router {
	if len(deps.CORSOrigins) == 0 {
		deps.CORSOrigins = []string{"*"}
	}
	return &Router{mux: chi.NewRouter(), deps: deps}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.deps.CORSOrigins))

	health := handlers.NewHealthHandler(rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if rt.deps.Metrics != nil {
		r.Handle("/metrics", rt.deps.Metrics.Handler())
	}

	newsH := handlers.NewNewsHandler(rt.deps.Prefs, rt.deps.Pipeline)
	r.Get("/fields", newsH.Fields)
	r.Post("/select-field", newsH.SelectField)
	r.Get("/select-field/{user_id}", newsH.GetField)
	r.Get("/get-news/{user_id}", newsH.GetNews)
	r.Get("/summarize-news/{user_id}", newsH.Summarize)
	r.Get("/voice-summary/{user_id}", newsH.VoiceSummary)

	audioH := handlers.NewAudioHandler(rt.deps.Storage)
	r.Get("/audio/{filename}", audioH.Serve)

	adminH := handlers.NewAdminHandler(rt.deps.Queue)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/audio/purge", adminH.PurgeAudio)
	})

	return r
}
