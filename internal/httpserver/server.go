// internal/httpserver/server.go
//
// HTTP server wiring for the Capitals quiz.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logs, gzip).
//   - Public endpoints: "/", "/health", "/debug/countries".
//   - Session endpoint: POST /session issues or resumes a session token.
//   - Game endpoints (session required): mounted by mountGame.
//   - Live snapshot stream: GET /ws (outside the timeout group).
//   - Graceful shutdown: Shutdown ends streams and drains requests.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - A session is identified by a signed JWT carried in a cookie or an
//     Authorization: Bearer header.

package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capitals/internal/countries"
	"github.com/robalobadob/capitals/internal/session"
)

// Options configures origin and session token handling.
type Options struct {
	ClientOrigin string
	JWTSecret    string
	CookieName   string
	Secure       bool          // Secure + SameSite=None cookies
	TokenTTL     time.Duration // defaults to 180 days
}

// Server bundles router, live sessions and the dataset.
type Server struct {
	r        *chi.Mux
	sessions *session.Manager
	ref      *countries.Dataset
	opts     Options

	http      *http.Server
	closing   chan struct{} // closed by Shutdown; ends open streams
	closeOnce sync.Once
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options, sessions *session.Manager, ref *countries.Dataset) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 180 * 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "capitals_session"
	}
	s := &Server{r: chi.NewRouter(), sessions: sessions, ref: ref, opts: opts, closing: make(chan struct{})}

	// --- middleware ---
	s.r.Use(chimw.RequestID)               // add X-Request-ID
	s.r.Use(chimw.RealIP)                  // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))   // request-scoped logger
	s.r.Use(hlog.AccessHandler(accessLog)) // one line per request
	s.r.Use(chimw.Recoverer)               // recover from panics
	s.r.Use(corsFor(opts.ClientOrigin))    // credentials-friendly CORS

	// Live stream: long-lived, so no timeout and no gzip.
	s.r.With(s.withSession).Get("/ws", s.handleStream)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(gzipped)
		r.Use(jsonContentType) // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"capitals","endpoints":["/health","POST /session","GET /state","POST /guess/name","POST /guess/capital","POST /next","POST /hint","POST /reset","GET /save","POST /load","GET /ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/countries", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"count":   s.ref.Len(),
				"version": s.ref.Version(),
				"letters": s.ref.Stats(),
			})
		})

		r.Post("/session", s.handleSession)
		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			s.mountGame(r)
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not_found")
		})
	})

	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start begins serving HTTP on addr. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.http.Serve(ln)
}

// Shutdown closes open websocket streams, then stops accepting requests and
// waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// gzipped compresses responses for clients that accept gzip.
func gzipped(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// writeError writes a JSON error body like {"error":"bad_json"}.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
