package migration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPending(t *testing.T) {
	migrations := []Migration{{Version: "1"}, {Version: "2"}, {Version: "3"}}
	records := []MigrationRecord{
		{Version: "1", Status: StatusApplied},
		{Version: "2", Status: StatusFailed},
	}

	got := Pending(migrations, records)
	want := []Migration{{Version: "2"}, {Version: "3"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pending() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFileName(t *testing.T) {
	if got := GenerateFileName("20240101120000", "create_catalog", "up"); got != "20240101120000_create_catalog.up.sql" {
		t.Errorf("GenerateFileName() = %q", got)
	}
	if v := GenerateVersion(); len(v) != 14 {
		t.Errorf("GenerateVersion() = %q, want 14 digits", v)
	}
}
