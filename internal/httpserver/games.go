// internal/httpserver/games.go
//
// Game endpoints and the play helpers shared with the WebSocket handler.
//   - POST /game/new   {"dictionary"}      → game view
//   - POST /game/turn  {"gameId","word"}   → turn result
//   - GET  /game/{id}                      → full snapshot
//
// Daily games are rejected on /game/turn; they are played on /daily/turn.
// Finished games are evicted from memory after FINISHED_GAME_TTL.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/shiritori/internal/game"
	"github.com/robalobadob/shiritori/internal/store"
	"github.com/robalobadob/shiritori/internal/words"
)

var errEmptyWord = errors.New("empty word")

// gameView is the short description of a game returned when it opens.
type gameView struct {
	GameID     string       `json:"gameId"`
	Dictionary words.Source `json:"dictionary"`
	Current    words.Entry  `json:"current"`
	NextLetter string       `json:"nextLetter"`
}

func viewOf(g *game.Game) gameView {
	s := g.Snapshot()
	return gameView{GameID: s.ID, Dictionary: s.Source, Current: s.Current, NextLetter: s.NextLetter}
}

// turnRes is returned after each resolved turn.
type turnRes struct {
	Judgement  game.Judgement `json:"judgement"`
	Message    string         `json:"message,omitempty"`
	Current    words.Entry    `json:"current"`
	NextLetter string         `json:"nextLetter"`
	History    []game.Turn    `json:"history"`
	Chain      int            `json:"chain"`
	State      game.State     `json:"state"`
}

func turnResOf(g *game.Game, j game.Judgement) turnRes {
	s := g.Snapshot()
	return turnRes{
		Judgement:  j,
		Message:    j.Reason.Message(),
		Current:    s.Current,
		NextLetter: s.NextLetter,
		History:    s.History,
		Chain:      s.Chain,
		State:      s.State,
	}
}

// startGame opens a game on src (or the default source), stores it and
// records its owner.
func (s *Server) startGame(ctx context.Context, name string, owner store.Owner) (*game.Game, error) {
	src := s.cfg.DefaultSource()
	if strings.TrimSpace(name) != "" {
		var err error
		if src, err = words.ParseSource(name); err != nil {
			return nil, err
		}
	}
	idx, err := s.loader.Load(src)
	if err != nil {
		return nil, err
	}
	g, err := game.New(idx, src)
	if err != nil {
		return nil, err
	}
	return g, s.register(ctx, g, owner)
}

// register saves a fresh game in the session store and mirrors it to the DB.
func (s *Server) register(ctx context.Context, g *game.Game, owner store.Owner) error {
	if err := s.store.Save(ctx, g); err != nil {
		return err
	}
	if err := s.rec.Start(ctx, g, owner); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("record game start")
	}
	log.Debug().Str("gameId", g.ID).Str("dictionary", string(g.Source)).
		Str("seed", g.CurrentWord().Text).Msg("game started")
	return nil
}

// playTurn resolves word against the stored game. On ErrGameOver the
// returned result still carries the final judgement. The game is recorded
// while the store holds it, so the row never sees a half-applied turn.
func (s *Server) playTurn(ctx context.Context, gameID, word string) (turnRes, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return turnRes{}, errEmptyWord
	}

	var res turnRes
	err := s.store.Update(ctx, gameID, func(g *game.Game) error {
		j, err := g.ResolveTurn(word)
		res = turnResOf(g, j)
		if err != nil {
			return err
		}
		if err := s.rec.Sync(ctx, g); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("record turn")
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if res.Judgement.GameOver {
		s.evictLater(gameID)
	}

	log.Debug().Str("gameId", gameID).Str("word", word).
		Bool("gameOver", res.Judgement.GameOver).Str("reason", res.Judgement.Reason.String()).
		Msg("turn resolved")
	return res, nil
}

// evictLater drops a finished game from the session store once the
// configured TTL has passed. The games row in SQLite is kept.
func (s *Server) evictLater(gameID string) {
	ttl := s.cfg.Server.FinishedGameTTL
	if ttl <= 0 {
		return
	}
	time.AfterFunc(ttl, func() {
		if err := s.store.Delete(context.Background(), gameID); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("evict game")
			return
		}
		log.Debug().Str("gameId", gameID).Msg("game evicted")
	})
}

// errorCode maps play errors to a status and a stable code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, errEmptyWord):
		return http.StatusBadRequest, "empty_word"
	case errors.Is(err, words.ErrUnknownSource):
		return http.StatusBadRequest, "unknown_dictionary"
	case errors.Is(err, game.ErrNoSeed):
		return http.StatusInternalServerError, "no_seed"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

// ------------------------------ handlers -----------------------------------

type newGameReq struct {
	Dictionary string `json:"dictionary"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	// an empty body means "default dictionary"
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	g, err := s.startGame(r.Context(), req.Dictionary, s.owner(w, r))
	if err != nil {
		status, code := errorCode(err)
		if status >= 500 {
			log.Error().Err(err).Msg("new game")
		}
		writeError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g))
}

type turnReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	if s.daily.owns(req.GameID) {
		writeError(w, http.StatusConflict, "daily_game")
		return
	}

	res, err := s.playTurn(r.Context(), req.GameID, req.Word)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, game.ErrGameOver):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "game_over", "judgement": res.Judgement})
	default:
		status, code := errorCode(err)
		if status >= 500 {
			log.Error().Err(err).Str("gameId", req.GameID).Msg("turn")
		}
		writeError(w, status, code)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var snap game.Snapshot
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		status, code := errorCode(err)
		writeError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
