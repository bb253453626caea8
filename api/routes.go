package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupOperationalRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/healthz", handlers.healthHandler.healthCheck())
	r.Handle("/metrics", promhttp.Handler())
}

// setupFrontendRoutes sets up the JSON API and the server-rendered pages
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, guard originGuard) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(metricsMiddleware)

		// Public routes; a session is used when present
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.identify)

			r.Get("/hackers/{builderID}", handlers.builderHandler.getBuilder())
			r.Get("/projects", handlers.projectHandler.getAllProjects())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Get("/projects/{projectID}/view", handlers.viewHandler.viewProject())
			r.Get("/tags", handlers.projectHandler.getTags())
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(guard.check)
			r.Use(authMiddleware.authenticate)

			r.Get("/hackers/me", handlers.builderHandler.getCurrentBuilder())
			r.Patch("/hackers/{builderID}", handlers.builderHandler.updateBuilder())
			r.Post("/hackers/{builderID}/avatar", handlers.builderHandler.uploadAvatar())

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Patch("/projects/{projectID}/submit", handlers.projectHandler.updateProjectStatus())
			r.Post("/projects/{projectID}/vote", handlers.voteHandler.castVote())
			r.Delete("/projects/{projectID}/vote", handlers.voteHandler.retractVote())
			r.Post("/projects/{projectID}/vote/toggle", handlers.voteHandler.toggleVote())

			r.Post("/projects/{projectID}/view/vote", handlers.viewHandler.toggleVote())
			r.Post("/projects/{projectID}/view/status", handlers.viewHandler.changeStatus())
		})
	})
}
