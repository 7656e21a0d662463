package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpCapturesPgxDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users", Message: "duplicate key value"}
	err := Wrap(CodeDuplicate, fmt.Errorf("insert user: %w", pgErr), "email already registered")

	d := Dump(err)
	if d.Code != CodeDuplicate {
		t.Fatalf("expected duplicate code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "users_email_key" || d.PGTable != "users" {
		t.Fatalf("pg fields not captured: %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain links, got %d (%v)", len(d.Chain), d.Chain)
	}

	fields := d.Fields()
	if fields["pg_constraint"] != "users_email_key" {
		t.Fatalf("expected pg_constraint field, got %v", fields)
	}
}

func TestDumpCapturesPQDetails(t *testing.T) {
	d := Dump(&pq.Error{Code: "23503", Constraint: "ratings_store_id_fkey", Table: "ratings"})
	if d.PGCode != "23503" || d.PGConstraint != "ratings_store_id_fkey" {
		t.Fatalf("pq fields not captured: %+v", d)
	}
	if _, ok := d.Fields()["error_code"]; ok {
		t.Fatal("untyped errors should not carry an error_code field")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected zero dump, got %+v", d)
	}
}
