package game

import (
	"time"

	"github.com/robalobadob/shiritori/internal/words"
)

// Turn is one word of a game's history.
type Turn struct {
	Seq    int         `json:"seq"`
	Player Player      `json:"player"`
	Entry  words.Entry `json:"word"`
}

// Snapshot is a read-only view of a game for front-ends.
type Snapshot struct {
	ID         string       `json:"gameId"`
	Source     words.Source `json:"dictionary"`
	StartedAt  time.Time    `json:"startedAt"`
	Current    words.Entry  `json:"current"`
	NextLetter string       `json:"nextLetter"`
	History    []Turn       `json:"history"`
	State      State        `json:"state"`
	Chain      int          `json:"chain"`
	Judgement  Judgement    `json:"judgement"`
}

// Snapshot copies the game's visible state.
func (g *Game) Snapshot() Snapshot {
	cur := g.CurrentWord()
	next := ""
	if !g.Over() {
		next = string(cur.LastLetter())
	}
	return Snapshot{
		ID:         g.ID,
		Source:     g.Source,
		StartedAt:  g.StartedAt,
		Current:    cur,
		NextLetter: next,
		History:    g.Turns(),
		State:      g.State(),
		Chain:      g.chain,
		Judgement:  g.judgement,
	}
}
