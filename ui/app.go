// Package ui exposes the analysis engine as a JSON API. Every endpoint is
// POST-with-body so chart frontends can send the full parameter set; values
// that the engine reports as NaN serialize as JSON null.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nocturna/app"
	"nocturna/internal"
)

// App represents the API application
type App struct {
	router  *chi.Mux
	service *app.AnalysisService
	logger  *internal.Logger
}

// NewApp creates the API application around an analysis service.
func NewApp(service *app.AnalysisService, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}
	a.routes()
	return a
}

func (a *App) routes() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	a.router.Get("/health", a.handleHealth)
	a.router.Route("/api", func(r chi.Router) {
		r.Get("/series", a.handleListSeries)
		r.Post("/reload", a.handleReload)

		r.Post("/summary", a.handleSummary)
		r.Post("/rolling", a.handleRolling)
		r.Post("/breakpoints", a.handleBreakpoints)
		r.Post("/changepoints", a.handleChangePoints)
		r.Post("/decompose", a.handleDecompose)
		r.Post("/correlogram", a.handleCorrelogram)
		r.Post("/loess", a.handleLoess)
		r.Post("/mannwhitney", a.handleMannWhitney)
		r.Post("/survival", a.handleSurvival)
		r.Post("/report", a.handleReport)
	})
}

// Router returns the HTTP handler for mounting or serving.
func (a *App) Router() http.Handler {
	return a.router
}

// Serve blocks serving the API on the given port.
func (a *App) Serve(port string) error {
	a.logger.Info("listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}
