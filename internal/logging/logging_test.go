package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
)

type sentEntry struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func captureJournal(t *testing.T) *[]sentEntry {
	t.Helper()
	var sent []sentEntry
	orig := send
	send = func(message string, priority journal.Priority, vars map[string]string) error {
		sent = append(sent, sentEntry{message, priority, vars})
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &sent
}

func TestJournalHandler(t *testing.T) {
	sent := captureJournal(t)

	logger := slog.New(NewJournalHandler(slog.LevelInfo)).With("source", "systemd")
	logger.Debug("dropped")
	logger.WithGroup("probe").Warn("virtualization", "id", "kvm", "took-ms", 3)

	if len(*sent) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(*sent))
	}
	e := (*sent)[0]
	if e.message != "virtualization" || e.priority != journal.PriWarning {
		t.Fatalf("unexpected entry %+v", e)
	}
	want := map[string]string{
		"HOSTENV_SOURCE":        "systemd",
		"HOSTENV_PROBE_ID":      "kvm",
		"HOSTENV_PROBE_TOOK_MS": "3",
	}
	for k, v := range want {
		if e.fields[k] != v {
			t.Errorf("field %s = %q, want %q (fields %v)", k, e.fields[k], v, e.fields)
		}
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
	}
	for _, tt := range tests {
		if got := Priority(tt.level); got != tt.want {
			t.Errorf("Priority(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestFieldName(t *testing.T) {
	if got := FieldName("session.id-2"); got != "HOSTENV_SESSION_ID_2" {
		t.Fatalf("FieldName = %q", got)
	}
}

func TestNew_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, "stderr")
	logger.Debug("probing", "source", "cpuid")
	if !strings.Contains(buf.String(), "source=cpuid") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("warn"); err != nil || lvl != slog.LevelWarn {
		t.Fatalf("ParseLevel(warn) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
