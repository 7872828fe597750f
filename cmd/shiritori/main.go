// Command shiritori plays a game against the bot in the terminal.
//
//	shiritori [-dict unidic|pokemon] [-seed n]
//
// The dictionary default and any override files come from the same
// environment as the server (WORDS_DEFAULT, WORDS_*_FILE, .env).
// An empty line quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/shiritori/internal/config"
	"github.com/robalobadob/shiritori/internal/game"
	"github.com/robalobadob/shiritori/internal/words"
)

var (
	botColor    = color.New(color.FgCyan)
	nextColor   = color.New(color.FgHiBlack)
	winColor    = color.New(color.FgGreen, color.Bold)
	loseColor   = color.New(color.FgRed, color.Bold)
	reasonColor = color.New(color.FgYellow)
)

// prompter is the part of *liner.State the game loop needs.
type prompter interface {
	Prompt(p string) (string, error)
	AppendHistory(item string)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	dict := flag.String("dict", cfg.Words.Default, "dictionary: unidic or pokemon")
	seed := flag.Uint64("seed", 0, "seed the bot's choices for a reproducible game (0 = random)")
	flag.Parse()

	src, err := words.ParseSource(*dict)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -dict")
	}
	var picker words.Picker
	if *seed != 0 {
		picker = words.NewSeededPicker(*seed)
	}
	idx, err := words.NewLoader(cfg.WordFiles(), picker).Load(src)
	if err != nil {
		log.Fatal().Err(err).Msg("load dictionary")
	}
	g, err := game.New(idx, src)
	if err != nil {
		log.Fatal().Err(err).Msg("new game")
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	err = run(line, color.Output, g)
	line.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("play")
	}
}

// run drives one game until it ends or the player enters an empty line.
func run(in prompter, out io.Writer, g *game.Game) error {
	printNext(out, g)
	for {
		text, err := in.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			text = ""
		} else if err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			fmt.Fprintln(out, "exit")
			return nil
		}
		in.AppendHistory(text)

		j, err := g.ResolveTurn(text)
		if err != nil {
			return err
		}
		if !j.GameOver {
			printNext(out, g)
			continue
		}

		turns := g.Turns()
		if j.Winner == game.Human && turns[len(turns)-1].Player == game.Bot {
			botColor.Fprintf(out, "bot> %s\n", g.CurrentWord().Text)
		}
		c := loseColor
		if j.Winner == game.Human {
			c = winColor
		}
		c.Fprintf(out, "%s win\n", j.Winner)
		reasonColor.Fprintf(out, "(%s)\n", j.Reason.Message())
		return nil
	}
}

func printNext(out io.Writer, g *game.Game) {
	w := g.CurrentWord()
	botColor.Fprintf(out, "bot> %s(%s)\n", w.Text, w.Reading)
	nextColor.Fprintf(out, "next: %c\n", w.LastLetter())
}
