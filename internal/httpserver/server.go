// internal/httpserver/server.go
//
// HTTP server wiring for the shiritori backend.
// Responsibilities:
//   - Router + middleware (request IDs, request logging, panic recovery,
//     timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/dictionaries".
//   - Game endpoints (optional auth): POST /game/new, POST /game/turn, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - WebSocket play: GET /ws.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Live games sit in the session store; the Recorder mirrors them to SQLite
//     on a best-effort basis (failures are logged, never returned to players).
//   - /ws is registered outside the handler timeout since connections are
//     long-lived.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/shiritori/internal/config"
	"github.com/robalobadob/shiritori/internal/store"
	"github.com/robalobadob/shiritori/internal/words"
)

// Server bundles router, dictionaries, live game store and DB handle.
type Server struct {
	r      *chi.Mux
	cfg    *config.Config
	loader *words.Loader
	store  store.Store
	db     *sql.DB
	users  *store.Users
	rec    *store.Recorder
	daily  *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, loader *words.Loader, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    cfg,
		loader: loader,
		store:  st,
		db:     db,
		users:  store.NewUsers(db),
		rec:    store.NewRecorder(db),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/ws", s.withOptionalAuth(http.HandlerFunc(s.handleWS)).ServeHTTP)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Server.HandlerTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": "shiritori-go",
				"endpoints": []string{
					"/health", "/dictionaries",
					"POST /game/new", "POST /game/turn", "GET /game/{id}",
					"/daily/*", "/auth/*", "GET /ws",
				},
			})
		})
		r.Get("/health", s.handleHealth)
		r.Get("/dictionaries", s.handleDictionaries)

		// Game endpoints: guests can play.
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth)
			r.Post("/game/new", s.handleNewGame)
			r.Post("/game/turn", s.handleTurn)
			r.Get("/game/{id}", s.handleGetGame)
			s.mountDaily(r)
		})

		s.mountAuthRoutes(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
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

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.Server.ClientOrigin
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

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("requestId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ----------------------------- diagnostics ---------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		log.Error().Err(err).Msg("health: db ping")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "db_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type dictionaryInfo struct {
	Name    words.Source `json:"name"`
	Entries int          `json:"entries"`
	Default bool         `json:"default"`
}

// handleDictionaries lists every known source with its entry count.
func (s *Server) handleDictionaries(w http.ResponseWriter, r *http.Request) {
	out := make([]dictionaryInfo, 0, len(words.Sources()))
	for _, src := range words.Sources() {
		idx, err := s.loader.Load(src)
		if err != nil {
			log.Error().Err(err).Str("dictionary", string(src)).Msg("load dictionary")
			writeError(w, http.StatusInternalServerError, "dictionary_unavailable")
			return
		}
		out = append(out, dictionaryInfo{Name: src, Entries: idx.Len(), Default: src == s.cfg.DefaultSource()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
