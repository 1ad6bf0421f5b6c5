package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Writer
	Writer = &buf
	t.Cleanup(func() { Writer = prev })
	return &buf
}

func TestMessages(t *testing.T) {
	buf := capture(t)

	Success("applied %d migration(s)", 2)
	Warning("no migrations found")
	Error("failed: %s", "boom")
	Info("dry run")
	Muted("  up: %s", "x.up.sql")

	out := buf.String()
	for _, want := range []string{"applied 2 migration(s)", "no migrations found", "failed: boom", "dry run", "  up: x.up.sql"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestSection(t *testing.T) {
	buf := capture(t)
	Section("Applying")
	assert.Contains(t, buf.String(), "Applying")
	assert.Contains(t, buf.String(), strings.Repeat("═", len("Applying")))
}

func TestStatusIcon(t *testing.T) {
	tests := map[string]string{
		"applied":   "✓",
		"responded": "✓",
		"pending":   "○",
		"unread":    "○",
		"failed":    "✗",
		"reviewed":  "◉",
		"other":     "•",
	}
	for status, icon := range tests {
		t.Run(status, func(t *testing.T) {
			assert.Contains(t, StatusIcon(status), icon)
		})
	}
}
