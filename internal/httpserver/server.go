// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle helper.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", POST /sessions.
//   - Board endpoints under /sessions/{id}, gated by the session token.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every board request runs get → mutate → save under one mutex, so two
//     clicks on the same board never interleave.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-helper/internal/store"
)

// Options carries the settings the server needs from config.
type Options struct {
	ClientOrigin   string
	RequestTimeout time.Duration
	JWTSecret      string
	CookieName     string
	TokenTTL       time.Duration
	Secure         bool // production cookies: Secure + SameSite=None
}

func (o Options) withDefaults() Options {
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.JWTSecret == "" {
		o.JWTSecret = "dev_secret_change_me"
	}
	if o.CookieName == "" {
		o.CookieName = "helper_session"
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 14 * 24 * time.Hour
	}
	return o
}

// Server bundles router, session store and options.
type Server struct {
	r     *chi.Mux
	store store.Store
	opts  Options
	mu    sync.Mutex // guards get → mutate → save
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), store: st, opts: opts.withDefaults()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                      // add X-Request-ID
	s.r.Use(chimw.RealIP)                         // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))          // request-scoped logger
	s.r.Use(accessLog)                            // one line per request
	s.r.Use(chimw.Recoverer)                      // recover from panics
	s.r.Use(chimw.Timeout(s.opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                      // default JSON responses
	s.r.Use(cors(s.opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-helper","endpoints":["/health","POST /sessions","/sessions/{id}/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountSessions()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests and custom http.Server setups).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	level := zerolog.DebugLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(level).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decodeBody reads an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
