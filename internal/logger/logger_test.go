package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter("api-service", &buf)
	l.Info("session.join", map[string]any{"sessionId": "s1"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if entry["level"] != "INFO" || entry["service"] != "api-service" || entry["action"] != "session.join" {
		t.Fatalf("entry=%v", entry)
	}
	if entry["sessionId"] != "s1" {
		t.Fatalf("field lost: %v", entry)
	}
	if entry["timestamp"] == "" {
		t.Fatal("missing timestamp")
	}
}

func TestErrorIncludesMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter("test", &buf)
	l.Error("db.connect", errors.New("refused"), nil)

	if !strings.Contains(buf.String(), `"error":"refused"`) {
		t.Fatalf("error missing: %q", buf.String())
	}
}

func TestErrorSuppressedMutesRepeats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter("test", &buf)
	err := errors.New("boom")
	for i := 0; i < 5; i++ {
		l.ErrorSuppressed("store.fail", err, nil)
	}
	if got := strings.Count(buf.String(), "store.fail"); got != 1 {
		t.Fatalf("logged %d times, want 1", got)
	}
	// a different action is not muted
	l.ErrorSuppressed("other.fail", err, nil)
	if !strings.Contains(buf.String(), "other.fail") {
		t.Fatal("distinct action was muted")
	}
}
