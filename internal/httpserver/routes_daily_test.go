package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/shiritori/internal/daily"
	"github.com/robalobadob/shiritori/internal/words"
)

type dailyNewBody struct {
	GameID     string      `json:"gameId"`
	Date       string      `json:"date"`
	Played     bool        `json:"played"`
	Current    words.Entry `json:"current"`
	NextLetter string      `json:"nextLetter"`
}

func TestDaily_OneAttemptPerDay(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	idx, err := e.srv.loader.Load(words.SourceUnidic)
	require.NoError(t, err)
	seeds := idx.Seeds()
	want := seeds[daily.SeedIndex(time.Now(), "salt", len(seeds))]

	var first dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &first))
	require.NotEmpty(t, first.GameID)
	assert.False(t, first.Played)
	assert.Equal(t, daily.DateKey(time.Now()), first.Date)
	assert.Equal(t, want, first.Current)

	var again dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &again))
	assert.Equal(t, first.GameID, again.GameID)

	var out map[string]any
	require.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/daily/turn", turnReq{GameID: "other", Word: "イカ"}, &out))
	assert.Equal(t, "no_session", out["error"])

	var tr struct {
		turnBody
		Date string `json:"date"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/turn", turnReq{GameID: first.GameID, Word: "タコ"}, &tr))
	assert.True(t, tr.Judgement.GameOver)
	assert.Equal(t, first.Date, tr.Date)

	out = nil
	require.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/daily/turn", turnReq{GameID: first.GameID, Word: "タコ"}, &out))
	assert.Equal(t, "locked", out["error"])

	var done dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &done))
	assert.True(t, done.Played)
	assert.Empty(t, done.GameID)

	var lb struct {
		Date string        `json:"date"`
		Top  []daily.LBRow `json:"top"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/daily/leaderboard", nil, &lb))
	assert.Equal(t, first.Date, lb.Date)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, e.cookie(t, anonCookieName), lb.Top[0].UserID)
	assert.Equal(t, 0, lb.Top[0].Chain)
}

func TestDaily_Leaderboard(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	var lb struct {
		Date string        `json:"date"`
		Top  []daily.LBRow `json:"top"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/daily/leaderboard?date=2020-01-01", nil, &lb))
	assert.Equal(t, "2020-01-01", lb.Date)
	assert.Empty(t, lb.Top)

	var out map[string]any
	require.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/daily/leaderboard?date=yesterday", nil, &out))
	assert.Equal(t, "bad_date", out["error"])
}

func TestDaily_OnlyPlayableOnDailyRoutes(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	var first dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &first))
	require.NotEmpty(t, first.GameID)

	var out map[string]any
	require.Equal(t, http.StatusConflict, e.do(t, http.MethodPost, "/game/turn", turnReq{GameID: first.GameID, Word: "存在しない"}, &out))
	assert.Equal(t, "daily_game", out["error"])

	var again dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &again))
	assert.False(t, again.Played)
	assert.Equal(t, first.GameID, again.GameID)

	var tr turnBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/turn", turnReq{GameID: first.GameID, Word: "存在しない"}, &tr))
	require.True(t, tr.Judgement.GameOver)

	var lb struct {
		Top []daily.LBRow `json:"top"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/daily/leaderboard", nil, &lb))
	assert.Len(t, lb.Top, 1)

	var done dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &done))
	assert.True(t, done.Played)
	assert.Empty(t, done.GameID)
}

func TestDaily_FinishedSessionCountsAsPlayed(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	var first dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &first))

	// the result row is missing, e.g. after a failed insert
	d := e.srv.daily
	d.mu.Lock()
	for _, s := range d.sessions {
		s.Finished = true
	}
	d.mu.Unlock()

	var done dailyNewBody
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/daily/new", nil, &done))
	assert.True(t, done.Played)
}
