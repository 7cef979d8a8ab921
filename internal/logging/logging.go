// Package logging configures log/slog for hostenv, sending records to
// journald when running under systemd.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/coreos/go-systemd/v22/journal"
)

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// New builds a logger for target (stderr, journal or auto). Output for the
// stderr target goes to w.
func New(w io.Writer, level slog.Level, target string) *slog.Logger {
	if useJournal(target) {
		return slog.New(NewJournalHandler(level))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs the default logger.
func Setup(level, target string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(New(os.Stderr, lvl, target))
	return nil
}

func useJournal(target string) bool {
	switch target {
	case "journal":
		return journal.Enabled()
	case "auto":
		ok, err := journal.StderrIsJournalStream()
		return err == nil && ok && journal.Enabled()
	default:
		return false
	}
}
