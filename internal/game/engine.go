// internal/game/engine.go
//
// Turn engine for a single shiritori game between a bot and a human.
// Responsibilities:
//   - Open a game with a seed word that does not end in ン.
//   - Resolve a human submission against the dictionary and the rules.
//   - Draw the bot's reply and judge it by the same rules.
//   - Freeze the game once a terminal judgement is produced.
//
// Rules, in precedence order, for every played word:
//   1. duplicate: the text was already played in this game
//   2. chain:     its first unit differs from the current word's last unit
//   3. terminal:  its reading ends in ン
// The player who breaks a rule loses. A human word missing from the
// dictionary loses immediately; a bot with no word for the required unit
// forfeits.
//
// A Game is not safe for concurrent use. Callers that share one (the HTTP
// session store) serialize access themselves.
package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/shiritori/internal/words"
)

var (
	// ErrGameOver is returned by ResolveTurn once the game has ended.
	ErrGameOver = errors.New("game: game is over")
	// ErrNoSeed is returned when no dictionary word can open a game.
	ErrNoSeed = errors.New("game: no seed word available")
	// ErrInvalidSeed is returned for an explicit seed that cannot open a game.
	ErrInvalidSeed = errors.New("game: invalid seed word")
)

// Game holds the state of one game.
type Game struct {
	ID        string
	Source    words.Source
	StartedAt time.Time

	index     *words.Index
	history   []words.Entry // chronological; even positions are the bot's
	judgement Judgement
	chain     int // accepted human words
}

// New opens a game against idx with a random seed word.
func New(idx *words.Index, src words.Source) (*Game, error) {
	seed, ok := idx.RandomSeed()
	if !ok {
		return nil, ErrNoSeed
	}
	return newGame(idx, src, seed), nil
}

// NewWithSeed opens a game whose first bot word is seed. The seed need not
// be part of idx, but must have a reading that does not end in ン.
func NewWithSeed(idx *words.Index, src words.Source, seed words.Entry) (*Game, error) {
	if seed.Reading == "" || seed.EndsWithTerminal() {
		return nil, ErrInvalidSeed
	}
	return newGame(idx, src, seed), nil
}

func newGame(idx *words.Index, src words.Source, seed words.Entry) *Game {
	return &Game{
		ID:        newGameID(),
		Source:    src,
		StartedAt: time.Now().UTC(),
		index:     idx,
		history:   []words.Entry{seed},
	}
}

// ResolveTurn plays the human's word and, if it stands, the bot's reply.
// Calling it on a finished game returns the final judgement and ErrGameOver.
func (g *Game) ResolveTurn(text string) (Judgement, error) {
	if g.judgement.GameOver {
		return g.judgement, ErrGameOver
	}

	word, ok := g.index.Lookup(text)
	if !ok {
		return g.finish(over(Bot, NotFoundInDictionary)), nil
	}
	j := g.judge(word, Human)
	g.history = append(g.history, word)
	if j.GameOver {
		return g.finish(j), nil
	}
	g.chain++

	reply, ok := g.index.RandomWithPrefix(word.LastLetter())
	if !ok {
		return g.finish(over(Human, NotFoundInDictionary)), nil
	}
	j = g.judge(reply, Bot)
	g.history = append(g.history, reply)
	if j.GameOver {
		return g.finish(j), nil
	}
	return Continue, nil
}

// judge checks a word by player against the history so far.
func (g *Game) judge(next words.Entry, by Player) Judgement {
	switch {
	case g.played(next.Text):
		return over(by.Opponent(), DuplicatedWord)
	case next.FirstLetter() != g.CurrentWord().LastLetter():
		return over(by.Opponent(), FirstLetterIsInvalid)
	case next.EndsWithTerminal():
		return over(by.Opponent(), LastLetterIsInvalid)
	}
	return Continue
}

func (g *Game) played(text string) bool {
	for _, e := range g.history {
		if e.Text == text {
			return true
		}
	}
	return false
}

func (g *Game) finish(j Judgement) Judgement {
	g.judgement = j
	return j
}

// CurrentWord returns the last word played.
func (g *Game) CurrentWord() words.Entry {
	return g.history[len(g.history)-1]
}

// History returns a copy of every word played, oldest first.
func (g *Game) History() []words.Entry {
	return append([]words.Entry(nil), g.history...)
}

// Turns returns the history with each word attributed to its player.
func (g *Game) Turns() []Turn {
	out := make([]Turn, len(g.history))
	for i, e := range g.history {
		p := Bot
		if i%2 == 1 {
			p = Human
		}
		out[i] = Turn{Seq: i, Player: p, Entry: e}
	}
	return out
}

// Judgement returns the terminal judgement, or Continue while in progress.
func (g *Game) Judgement() Judgement { return g.judgement }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.judgement.GameOver }

// Chain is the number of words the human got accepted.
func (g *Game) Chain() int { return g.chain }

// State reports the coarse lifecycle state.
func (g *Game) State() State {
	switch {
	case !g.judgement.GameOver:
		return StateInProgress
	case g.judgement.Winner == Human:
		return StateHumanWon
	default:
		return StateBotWon
	}
}

// newGameID draws 64 random bits. Knowing the ID is enough to play the game.
func newGameID() string {
	var id [8]byte
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("game: read random id: %v", err))
	}
	return fmt.Sprintf("%x", id[:])
}
