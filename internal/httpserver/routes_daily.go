// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's game (creates or reuses a session)
//   - POST /daily/turn        → play a word in today's game
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Every player gets the same seed word on a given UTC date. Each player can
// play once per day (enforced by DB + in-memory session); the chain length
// and elapsed time are stored when the game ends.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/shiritori/internal/daily"
	"github.com/robalobadob/shiritori/internal/game"
	"github.com/robalobadob/shiritori/internal/store"
	"github.com/robalobadob/shiritori/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*dailySession // keyed by userID|date
	games    map[string]*dailySession // keyed by game ID
	mu       sync.Mutex
}

// dailySession holds transient state for an in-progress daily game.
type dailySession struct {
	GameID    string
	UserID    string
	Date      string
	SeedIndex int
	Start     time.Time
	Finished  bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*dailySession),
		games:    make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/turn", dd.handleTurn)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// todaysSeed returns today's date key, the seed's position among the
// daily dictionary's seeds, and the seed itself.
func (d *dailyServer) todaysSeed() (date string, idx *words.Index, i int, seed words.Entry, err error) {
	now := time.Now().UTC()
	date = daily.DateKey(now)
	idx, err = d.srv.loader.Load(d.srv.cfg.DailySource())
	if err != nil {
		return date, nil, 0, words.Entry{}, err
	}
	seeds := idx.Seeds()
	if len(seeds) == 0 {
		return date, nil, 0, words.Entry{}, game.ErrNoSeed
	}
	i = daily.SeedIndex(now, d.srv.cfg.Daily.Salt, len(seeds))
	return date, idx, i, seeds[i], nil
}

// owns reports whether gameID is a daily game. Daily games are played
// through /daily/turn only, so every finish is recorded.
func (d *dailyServer) owns(gameID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.games[gameID]
	return ok
}

// playerKey is the user ID when logged in, otherwise the anonymous cookie.
func playerKey(o store.Owner) string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID     string      `json:"gameId"`
	Date       string      `json:"date"`
	Played     bool        `json:"played"`
	Current    words.Entry `json:"current"`
	NextLetter string      `json:"nextLetter,omitempty"`
}

// handleNew creates or reuses today's session.
//   - A stored result or a finished session for today → Played=true.
//   - Otherwise reuse the live session or open a game on today's seed.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.owner(w, r)
	uid := playerKey(owner)
	date, idx, i, seed, err := d.todaysSeed()
	if err != nil {
		log.Error().Err(err).Msg("daily seed")
		status, code := errorCode(err)
		writeError(w, status, code)
		return
	}

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()

	if sess, ok := d.sessions[key]; ok {
		if sess.Finished {
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
			return
		}
		if g, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			v := viewOf(g)
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.GameID, Date: date, Current: v.Current, NextLetter: v.NextLetter})
			return
		}
	}

	g, err := game.NewWithSeed(idx, d.srv.cfg.DailySource(), seed)
	if err == nil {
		err = d.srv.register(r.Context(), g, owner)
	}
	if err != nil {
		log.Error().Err(err).Msg("daily new game")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	sess := &dailySession{GameID: g.ID, UserID: uid, Date: date, SeedIndex: i, Start: time.Now()}
	d.sessions[key] = sess
	d.games[g.ID] = sess
	v := viewOf(g)
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID, Date: date, Current: v.Current, NextLetter: v.NextLetter})
}

// -----------------------------------------------------------------------------
// /daily/turn

type dailyTurnRes struct {
	turnRes
	Date string `json:"date"`
}

// handleTurn plays a word in today's session and stores the result once
// the game ends. A finished session answers "locked".
func (d *dailyServer) handleTurn(w http.ResponseWriter, r *http.Request) {
	uid := playerKey(d.srv.owner(w, r))

	var p turnReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	date := daily.DateKey(time.Now())
	key := uid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.GameID != p.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	res, err := d.srv.playTurn(r.Context(), p.GameID, p.Word)
	if errors.Is(err, game.ErrGameOver) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "locked", "judgement": res.Judgement})
		return
	}
	if err != nil {
		status, code := errorCode(err)
		writeError(w, status, code)
		return
	}

	if res.Judgement.GameOver {
		d.mu.Lock()
		first := !sess.Finished
		sess.Finished = true
		d.mu.Unlock()
		if first {
			elapsed := int(time.Since(sess.Start).Milliseconds())
			if err := d.store.InsertResult(r.Context(), daily.Result{
				UserID: uid, Date: date, SeedIndex: sess.SeedIndex, Chain: res.Chain, ElapsedMs: elapsed,
			}); err != nil {
				log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
			}
		}
	}
	writeJSON(w, http.StatusOK, dailyTurnRes{turnRes: res, Date: date})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
