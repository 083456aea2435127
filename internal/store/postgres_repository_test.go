package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolationConstraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "accounts_iban_key"},
			want: "accounts_iban_key",
		},
		{
			name: "wrapped unique violation",
			err:  fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}),
			want: "users_username_key",
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "accounts_user_id_fkey"},
			want: "",
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: "",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uniqueViolationConstraint(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
