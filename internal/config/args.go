package config

import (
	"fmt"
	"time"

	"github.com/alexflint/go-arg"
)

// Args are command line overrides. Unset flags leave the env value alone.
type Args struct {
	League   string        `arg:"-l,--league" help:"league id to watch"`
	Source   string        `arg:"--source" help:"kickbase or fixture"`
	Storage  string        `arg:"-s,--storage" help:"firestore, sqlite or memory"`
	SQLite   string        `arg:"--sqlite-path" help:"sqlite database file"`
	Port     string        `arg:"-p,--port" help:"status API port"`
	Feed     time.Duration `arg:"--feed-interval" help:"pause between feed cycles"`
	Chat     time.Duration `arg:"--chat-interval" help:"pause between chat cycles"`
	Market   time.Duration `arg:"--market-interval" help:"pause between market snapshots"`
	LogLevel string        `arg:"--log-level" help:"debug, info, warn or error"`
}

// Description is shown at the top of --help.
func (Args) Description() string {
	return "league-watch polls a Kickbase league and relays new activity"
}

// ParseArgs parses argv (without the program name) into Args.
func ParseArgs(argv []string) (Args, error) {
	var a Args
	p, err := arg.NewParser(arg.Config{Program: "league-watch"}, &a)
	if err != nil {
		return Args{}, fmt.Errorf("config: build arg parser: %w", err)
	}
	if err := p.Parse(argv); err != nil {
		return Args{}, err
	}
	return a, nil
}

// MustParseArgs parses os.Args, printing usage and exiting on error or --help.
func MustParseArgs() Args {
	var a Args
	arg.MustParse(&a)
	return a
}

// Apply returns c with every set flag in a applied.
func (c Config) Apply(a Args) Config {
	if a.League != "" {
		c.LeagueID = a.League
	}
	if a.Source != "" {
		c.Source = a.Source
	}
	if a.Storage != "" {
		c.Storage.Backend = a.Storage
	}
	if a.SQLite != "" {
		c.Storage.SQLitePath = a.SQLite
	}
	if a.Port != "" {
		c.Port = a.Port
	}
	if a.Feed > 0 {
		c.Intervals.Feed = a.Feed
	}
	if a.Chat > 0 {
		c.Intervals.Chat = a.Chat
	}
	if a.Market > 0 {
		c.Intervals.Market = a.Market
	}
	if a.LogLevel != "" {
		c.Log.Level = a.LogLevel
	}
	return c
}
