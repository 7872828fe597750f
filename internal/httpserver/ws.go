// internal/httpserver/ws.go
//
// WebSocket play on GET /ws. One connection drives one game at a time.
//
// Envelope: {"t": type, "m": payload}
//   client → server
//     {"t":"new",  "m":{"dictionary":"pokemon"}}   open a game ("m" optional)
//     {"t":"turn", "m":{"word":"リンゴ"}}            play in the open game
//   server → client
//     {"t":"state",     "m":<game view>}
//     {"t":"judgement", "m":<turn result>}
//     {"t":"error",     "m":{"error":code}}
//
// The connection closes normally when the client goes away; protocol errors
// are reported as "error" messages and never drop the connection.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/robalobadob/shiritori/internal/game"
	"github.com/robalobadob/shiritori/internal/store"
)

// wsMsg is the message envelope in both directions.
type wsMsg struct {
	T string          `json:"t"`
	M json.RawMessage `json:"m,omitempty"`
}

const wsWriteTimeout = 5 * time.Second

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)

	opts := &websocket.AcceptOptions{}
	if u, err := url.Parse(s.cfg.Server.ClientOrigin); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		log.Warn().Err(err).Msg("ws accept")
		return
	}
	defer c.Close(websocket.StatusInternalError, "unexpected close")

	ctx := r.Context()
	log.Debug().Str("requestId", chimw.GetReqID(ctx)).Msg("ws connected")

	var gameID string
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Msg("ws read")
			}
			return
		}

		var in wsMsg
		out := wsError("bad_json")
		if typ == websocket.MessageText && json.Unmarshal(data, &in) == nil {
			out, gameID = s.handleWSMessage(ctx, in, gameID, owner)
		}
		if err := s.wsWrite(ctx, c, out); err != nil {
			log.Debug().Err(err).Msg("ws write")
			return
		}
	}
}

// handleWSMessage answers one client message. It returns the reply and the
// connection's current game ID.
func (s *Server) handleWSMessage(ctx context.Context, in wsMsg, gameID string, owner store.Owner) (wsMsg, string) {
	switch in.T {
	case "new":
		var p newGameReq
		if len(in.M) > 0 {
			if err := json.Unmarshal(in.M, &p); err != nil {
				return wsError("bad_json"), gameID
			}
		}
		g, err := s.startGame(ctx, p.Dictionary, owner)
		if err != nil {
			_, code := errorCode(err)
			return wsError(code), gameID
		}
		return wsReply("state", viewOf(g)), g.ID

	case "turn":
		if gameID == "" {
			return wsError("no_game"), gameID
		}
		var p struct {
			Word string `json:"word"`
		}
		if err := json.Unmarshal(in.M, &p); err != nil {
			return wsError("bad_json"), gameID
		}
		res, err := s.playTurn(ctx, gameID, p.Word)
		if err != nil && !errors.Is(err, game.ErrGameOver) {
			_, code := errorCode(err)
			return wsError(code), gameID
		}
		if errors.Is(err, game.ErrGameOver) {
			return wsReply("error", map[string]any{"error": "game_over", "judgement": res.Judgement}), gameID
		}
		return wsReply("judgement", res), gameID

	default:
		return wsError("unknown_type"), gameID
	}
}

func (s *Server) wsWrite(ctx context.Context, c *websocket.Conn, m wsMsg) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, m)
}

func wsReply(t string, v any) wsMsg {
	b, err := json.Marshal(v)
	if err != nil {
		return wsError("server_error")
	}
	return wsMsg{T: t, M: b}
}

func wsError(code string) wsMsg {
	return wsReply("error", map[string]string{"error": code})
}
