package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "simple statements",
			sql:  "CREATE TABLE a (id int);\nCREATE TABLE b (id int);",
			want: []string{"CREATE TABLE a (id int)", "CREATE TABLE b (id int)"},
		},
		{
			name: "comments are dropped",
			sql:  "-- header\n-- more\nSELECT 1; -- trailing\n",
			want: []string{"SELECT 1"},
		},
		{
			name: "semicolon inside string literal",
			sql:  "INSERT INTO t (v) VALUES ('a;b');SELECT 2;",
			want: []string{"INSERT INTO t (v) VALUES ('a;b')", "SELECT 2"},
		},
		{
			name: "escaped quote",
			sql:  "SELECT 'it''s; fine';",
			want: []string{"SELECT 'it''s; fine'"},
		},
		{
			name: "dollar quoted body",
			sql:  "CREATE FUNCTION f() RETURNS int AS $body$ SELECT 1; $body$ LANGUAGE sql;SELECT 3",
			want: []string{"CREATE FUNCTION f() RETURNS int AS $body$ SELECT 1; $body$ LANGUAGE sql", "SELECT 3"},
		},
		{
			name: "positional parameters are not dollar quotes",
			sql:  "SELECT $1, $2;",
			want: []string{"SELECT $1, $2"},
		},
		{
			name: "comment only",
			sql:  "-- nothing here\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSQL(tt.sql))
		})
	}
}

func TestNewExecutor_Defaults(t *testing.T) {
	e := NewExecutor(nil)
	assert.NotNil(t, e.log)

	e.WithLogger(nil)
	assert.NotNil(t, e.log, "a nil logger keeps the no-op default")
}

func TestRollbackPlan(t *testing.T) {
	migrations := []Migration{{Version: "001"}, {Version: "002"}, {Version: "003"}}
	applied := []MigrationRecord{{Version: "001"}, {Version: "002"}, {Version: "003"}}
	versions := func(ms []Migration) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Version
		}
		return out
	}

	tests := []struct {
		name string
		more func(int, MigrationRecord) bool
		want []string
	}{
		{"two steps", func(n int, _ MigrationRecord) bool { return n < 2 }, []string{"003", "002"}},
		{"more steps than applied", func(n int, _ MigrationRecord) bool { return n < 10 }, []string{"003", "002", "001"}},
		{"zero steps", func(n int, _ MigrationRecord) bool { return n < 0 }, nil},
		{"down to target", func(_ int, r MigrationRecord) bool { return r.Version > "001" }, []string{"003", "002"}},
		{"target is newest", func(_ int, r MigrationRecord) bool { return r.Version > "003" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := rollbackPlan(applied, migrations, tt.more)
			require.NoError(t, err)
			assert.Equal(t, tt.want, versionsOrNil(versions(plan)))
		})
	}

	_, err := rollbackPlan([]MigrationRecord{{Version: "009"}}, migrations, func(int, MigrationRecord) bool { return true })
	assert.ErrorContains(t, err, "migration file not found for version 009")
}

func versionsOrNil(v []string) []string {
	if len(v) == 0 {
		return nil
	}
	return v
}
