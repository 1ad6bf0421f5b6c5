package tui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationDialog(t *testing.T) {
	d := NewConfirmationDialog("Confirm", "Proceed?")
	assert.False(t, d.YesSelected)

	assert.Nil(t, d.Update(key("y")))
	assert.True(t, d.YesSelected)
	assert.Nil(t, d.Update(key("n")))
	assert.False(t, d.YesSelected)

	cmd := d.Update(key("enter"))
	if assert.NotNil(t, cmd) {
		assert.Equal(t, confirmedMsg{yes: false}, cmd())
	}
	assert.Contains(t, d.View(), "Proceed?")
}

func TestLogView_KeepsNewest(t *testing.T) {
	l := NewLogView(3)
	assert.Contains(t, l.View(), "No logs")
	for i := range 5 {
		l.AddLog(fmt.Sprintf("entry %d", i))
	}
	assert.Equal(t, []string{"entry 2", "entry 3", "entry 4"}, l.Logs)
}

func TestFormatProgressBar(t *testing.T) {
	assert.Contains(t, FormatProgressBar(1, 4, 8), "1/4")
	assert.Contains(t, FormatProgressBar(0, 0, 8), "0/0")
	assert.Contains(t, FormatProgressBar(9, 4, 8), "9/4")
}

func TestFormatStatus(t *testing.T) {
	for _, s := range []string{"applied", "pending", "failed", "reviewed", "unread", "other"} {
		assert.Contains(t, FormatStatus(s), s)
	}
}
