package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rpupo63/builders-showcase-backend/config"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/rpupo63/builders-showcase-backend/views"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, identity services.IdentityProvider, blobs services.BlobStore, c map[string]string) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router, err := newRouter(database,
		withConfig(c),
		withStartupTime(startupTime),
		withIdentity(identity),
		withBlobStore(blobs),
	)
	if err != nil {
		return Server{}, err
	}

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	identity    services.IdentityProvider
	blobs       services.BlobStore
	now         func() time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withIdentity(identity services.IdentityProvider) func(*router) {
	return func(r *router) {
		r.identity = identity
	}
}

func withBlobStore(blobs services.BlobStore) func(*router) {
	return func(r *router) {
		r.blobs = blobs
	}
}

// withClock overrides the time used to place new projects in a week.
func withClock(now func() time.Time) func(*router) {
	return func(r *router) {
		r.now = now
	}
}

func newRouter(database database.Database, opts ...func(*router)) (*chi.Mux, error) {
	router := router{now: time.Now, startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}
	if router.identity == nil {
		return nil, fmt.Errorf("identity provider is required")
	}

	renderer, err := views.NewRenderer(config.GetString(router.config, "FRONTEND_URL", ""))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	acceptedOrigins := trustedOrigins(config.GetList(router.config, "ACCEPTED_ORIGINS"))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return slices.Contains(acceptedOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	maxUploadBytes := int64(config.GetInt(router.config, "MAX_UPLOAD_MB", 10)) << 20

	handlers := initializeHandlers(
		database,
		router.blobs,
		renderer,
		config.SiteMode(router.config),
		maxUploadBytes,
		router.startupTime,
		router.now,
	)

	authMiddleware := newAuthMiddleware(router.identity, database.BuilderRepo())

	setupOperationalRoutes(chiRouter, handlers)
	setupFrontendRoutes(chiRouter, handlers, authMiddleware, newOriginGuard(acceptedOrigins))

	return chiRouter, nil
}

// trustedOrigins drops the "*" wildcard: credentialed requests are only
// accepted from origins listed by name. An empty list allows no cross-origin
// callers.
func trustedOrigins(origins []string) []string {
	trusted := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			log.Warn().Msg("Ignoring \"*\" in ACCEPTED_ORIGINS; list origins explicitly")
			continue
		}
		trusted = append(trusted, strings.TrimSuffix(origin, "/"))
	}
	return trusted
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
