package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_JSONOutput(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	log.Debug().Str("sid", "abc").Msg("resolved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "resolved" || entry["sid"] != "abc" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	l := Get()
	l.Info().Msg("hello")
	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output on the first writer only")
	}
}

func TestComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if l := Component("guard"); l.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger before Init")
	}

	var buf bytes.Buffer
	Init(Options{Output: &buf, Service: "skillsphere", Version: "1.2.0"})
	l := Component("session")
	l.Info().Msg("sweep")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["component"] != "session" || entry["service"] != "skillsphere" || entry["version"] != "1.2.0" {
		t.Fatalf("expected component and service fields, got %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in    string
		want  zerolog.Level
		known bool
	}{
		{"trace", zerolog.TraceLevel, true},
		{" DEBUG ", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"", zerolog.InfoLevel, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, known := parseLevel(tc.in)
		if got != tc.want || known != tc.known {
			t.Errorf("parseLevel(%q) = %v, %v; want %v, %v", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestInit_ReportsUnknownLevel(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "verbose", Output: &buf})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["log_level"] != "verbose" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
