package islalog

import (
	"bytes"
	"strings"
	"testing"
)

func TestFromWritesTaggedLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.From(3, LevelInfo, "Working")

	if got := buf.String(); got != "[3] Working\n" {
		t.Fatalf("From wrote %q, want %q", got, "[3] Working\n")
	}
}

func TestFromFiltersAboveVerbosity(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.From(0, LevelVerbose, "Choice @ pc 5")

	if buf.Len() != 0 {
		t.Fatalf("From at a level above the logger's verbosity should write nothing, got %q", buf.String())
	}
}

func TestFromfFormats(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelVerbose)

	l.Fromf(7, LevelVerbose, "Calling %s", "f")

	if got := buf.String(); !strings.Contains(got, "[7] Calling f") {
		t.Fatalf("Fromf wrote %q, want it to contain %q", got, "[7] Calling f")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.From(0, LevelInfo, "should not panic")
	l.Fromf(0, LevelInfo, "should not panic either: %d", 1)
}

func TestNewDefaultsNilWriterToStderr(t *testing.T) {
	l := New(nil, LevelInfo)
	if l.out == nil {
		t.Fatal("New(nil, ...) should default out to os.Stderr, not leave it nil")
	}
}
