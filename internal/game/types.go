// internal/game/types.go
//
// Core type definitions for the shiritori turn engine.
// Defines:
//   - Player:    who won a finished game (bot or human).
//   - Reason:    why a game ended.
//   - Judgement: the result of resolving one turn.
//   - State:     coarse lifecycle of a game.
//
// Player and Reason are closed enums. Their zero values mean "none" and
// serialize to JSON null, so a Judgement always carries the wire shape
// {"game_over":bool,"winner":..|null,"reason":..|null}.

package game

import (
	"encoding/json"
	"fmt"
)

// Player identifies one side of a game.
type Player int

const (
	NoPlayer Player = iota
	Bot
	Human
)

// String returns "Bot", "Human" or "" for NoPlayer.
func (p Player) String() string {
	switch p {
	case Bot:
		return "Bot"
	case Human:
		return "Human"
	default:
		return ""
	}
}

// Opponent returns the other side. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Bot:
		return Human
	case Human:
		return Bot
	default:
		return NoPlayer
	}
}

// MarshalJSON encodes NoPlayer as null and the others by name.
func (p Player) MarshalJSON() ([]byte, error) {
	if p == NoPlayer {
		return []byte("null"), nil
	}
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts null, "Bot" or "Human".
func (p *Player) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*p = NoPlayer
		return nil
	}
	switch *s {
	case "Bot":
		*p = Bot
	case "Human":
		*p = Human
	default:
		return fmt.Errorf("game: unknown player %q", *s)
	}
	return nil
}

// Reason explains why a game ended.
type Reason int

const (
	NoReason Reason = iota
	DuplicatedWord
	FirstLetterIsInvalid
	LastLetterIsInvalid
	NotFoundInDictionary
)

var reasonNames = map[Reason]string{
	DuplicatedWord:       "DuplicatedWord",
	FirstLetterIsInvalid: "FirstLetterIsInvalid",
	LastLetterIsInvalid:  "LastLetterIsInvalid",
	NotFoundInDictionary: "NotFoundInDictionary",
}

var reasonMessages = map[Reason]string{
	DuplicatedWord:       "duplicated word",
	FirstLetterIsInvalid: "first letter is invalid",
	LastLetterIsInvalid:  "last letter is invalid",
	NotFoundInDictionary: "not found in dictionary",
}

// String returns the wire name of the reason, or "" for NoReason.
func (r Reason) String() string { return reasonNames[r] }

// Message is a short human-readable description.
func (r Reason) Message() string { return reasonMessages[r] }

// MarshalJSON encodes NoReason as null and the others by wire name.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == NoReason {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts null or one of the wire names.
func (r *Reason) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*r = NoReason
		return nil
	}
	for k, name := range reasonNames {
		if name == *s {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("game: unknown reason %q", *s)
}

// Judgement is the outcome of one call to ResolveTurn.
type Judgement struct {
	GameOver bool   `json:"game_over"`
	Winner   Player `json:"winner"`
	Reason   Reason `json:"reason"`
}

// Continue is the judgement for a turn after which play goes on.
var Continue = Judgement{}

// over builds a terminal judgement.
func over(winner Player, reason Reason) Judgement {
	return Judgement{GameOver: true, Winner: winner, Reason: reason}
}

// State is the coarse lifecycle of a game.
type State string

const (
	StateInProgress State = "playing"
	StateBotWon     State = "bot_won"
	StateHumanWon   State = "human_won"
)
