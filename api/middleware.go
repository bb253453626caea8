package api

import (
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sessionCookie is the cookie the identity provider's frontend SDK sets.
const sessionCookie = "__session"

type authMiddleware struct {
	responder   Responder
	logger      zerolog.Logger
	identity    services.IdentityProvider
	builderRepo *database.BuilderRepo
}

func newAuthMiddleware(identity services.IdentityProvider, builderRepo *database.BuilderRepo) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder:   NewResponder(logger),
		logger:      logger,
		identity:    identity,
		builderRepo: builderRepo,
	}
}

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// resolve maps the request's session to a builder. A valid session with no
// builder record is a 404, matching how the profile endpoints report it.
func (m authMiddleware) resolve(r *http.Request) (string, *models.Builder, error) {
	token := sessionToken(r)
	if token == "" {
		return "", nil, errs.NewMissingTokenError()
	}

	userID, err := m.identity.UserID(r.Context(), token)
	if err != nil {
		return "", nil, err
	}

	builder, err := m.builderRepo.FindByExternalID(r.Context(), userID)
	if err != nil {
		return userID, nil, wrapDatabaseError("find builder", "Builder", err)
	}
	return userID, builder, nil
}

// authenticate rejects requests without a signed in builder.
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, builder, err := m.resolve(r)
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithIdentity(r.Context(), userID, builder)))
	})
}

// identify attaches the builder when the session resolves and otherwise
// continues anonymously.
func (m authMiddleware) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, builder, err := m.resolve(r)
		switch {
		case err == nil:
		case errs.IsMissingTokenError(err):
			next.ServeHTTP(w, r)
			return
		case errs.IsNotFound(err):
			m.logger.Debug().Str("userID", userID).Msg("session has no builder yet")
			next.ServeHTTP(w, r)
			return
		default:
			m.logger.Debug().Err(err).Msg("continuing without identity")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithIdentity(r.Context(), userID, builder)))
	})
}

// originGuard rejects cross-site mutations that ride on the session cookie.
// Safe methods, bearer-authenticated requests and requests from the page's
// own host or a trusted origin pass through.
type originGuard struct {
	responder Responder
	trusted   []string
}

func newOriginGuard(trusted []string) originGuard {
	return originGuard{
		responder: NewResponder(log.With().Str("handlerName", "originGuard").Logger()),
		trusted:   trusted,
	}
}

func (g originGuard) check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = r.Header.Get("Referer")
		}
		if origin != "" && !g.allowed(r, origin) {
			g.responder.WriteError(w, errs.NewForbiddenError("Cross-site request rejected"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g originGuard) allowed(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == r.Host || slices.Contains(g.trusted, u.Scheme+"://"+u.Host)
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
