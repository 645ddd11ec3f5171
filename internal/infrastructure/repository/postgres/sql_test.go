package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches sql.ErrNoRows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatalf("expected true for sql.ErrNoRows")
		}
	})

	t.Run("matches wrapped sql.ErrNoRows", func(t *testing.T) {
		err := fmt.Errorf("get ownership: %w", sql.ErrNoRows)
		if !isNotFound(err) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fakeErr("pq: relation drivers does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches pq error code", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for pq 23505 error")
		}
	})

	t.Run("matches wrapped pq error", func(t *testing.T) {
		err := fmt.Errorf("insert ownership: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for wrapped pq 23505 error")
		}
	})

	t.Run("matches by message code", func(t *testing.T) {
		err := fakeErr("pq: duplicate key value violates unique constraint (SQLSTATE 23505)")
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for 23505 in message")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isUniqueViolation(fakeErr("pq: relation drivers does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})

	t.Run("ignores nil", func(t *testing.T) {
		if isUniqueViolation(nil) {
			t.Fatalf("expected false for nil error")
		}
	})
}

func TestNullableID(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		got := nullableID(sql.NullInt64{Int64: 7, Valid: true})
		if got == nil || *got != 7 {
			t.Fatalf("expected pointer to 7, got %v", got)
		}
	})

	t.Run("null value", func(t *testing.T) {
		if got := nullableID(sql.NullInt64{}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestNullableArg(t *testing.T) {
	t.Run("pointer value", func(t *testing.T) {
		id := int64(4)
		if got := nullableArg(&id); got != int64(4) {
			t.Fatalf("expected 4, got %v", got)
		}
	})

	t.Run("nil pointer", func(t *testing.T) {
		if got := nullableArg(nil); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
