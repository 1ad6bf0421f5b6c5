package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []error
		not  []error
	}{
		{
			name: "no rows is not found",
			err:  pgx.ErrNoRows,
			want: []error{ErrNotFound},
			not:  []error{ErrStoreUnavailable},
		},
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", Message: "duplicate key"},
			want: []error{ErrDuplicateKey},
			not:  []error{ErrStoreUnavailable},
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
			want: []error{ErrForeignKeyViolation},
			not:  []error{ErrStoreUnavailable},
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("query: %w", context.DeadlineExceeded),
			want: []error{ErrStoreUnavailable},
		},
		{
			name: "connection failure",
			err:  errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			want: []error{ErrStoreUnavailable},
			not:  []error{ErrNotFound},
		},
		{
			name: "bad input syntax stays a data error",
			err:  &pgconn.PgError{Code: "22P02"},
			not:  []error{ErrStoreUnavailable, ErrNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			for _, target := range tt.want {
				assert.ErrorIs(t, got, target)
			}
			for _, target := range tt.not {
				assert.NotErrorIs(t, got, target)
			}
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestQueryError_Is(t *testing.T) {
	qe := &QueryError{Query: "SELECT 1", Err: errors.New("broken pipe")}
	assert.ErrorIs(t, qe, ErrStoreUnavailable)

	dup := &QueryError{Query: "INSERT", Err: &pgconn.PgError{Code: "23505"}}
	assert.ErrorIs(t, dup, ErrDuplicateKey)
	assert.NotErrorIs(t, dup, ErrStoreUnavailable)
}

func TestValidationError(t *testing.T) {
	err := Invalid("email", "must contain %q", "@")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "email" {
		t.Errorf("Field = %q, want email", ve.Field)
	}
	assert.Equal(t, `validation error on field email: must contain "@"`, err.Error())
}

func TestBuildConnectionString(t *testing.T) {
	got := buildConnectionString(&Config{Host: "db", User: "app", Password: "secret", Database: "catalog"})
	want := "host=db port=5432 user=app password=secret dbname=catalog sslmode=prefer"
	if got != want {
		t.Errorf("buildConnectionString() = %q, want %q", got, want)
	}
}
