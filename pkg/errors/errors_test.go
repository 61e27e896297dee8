package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapPreservesCauseAndCode(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "schedule store unreachable")

	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found with errors.Is")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: schedule store unreachable" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeStateConflict, "order already queued")
	wrapped := fmt.Errorf("running dispatch: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
}

func TestDumpExtractsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_scheduled_orders_customer_slot",
		TableName:      "scheduled_orders",
		Detail:         "duplicate slot",
	}
	err := Wrap(CodeConflict, pgErr, "insert schedule")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("unexpected code: %s", dump.Code)
	}
	if dump.PGCode != "23505" {
		t.Fatalf("unexpected pg code: %s", dump.PGCode)
	}
	if dump.PGConstraint != "ux_scheduled_orders_customer_slot" {
		t.Fatalf("unexpected constraint: %s", dump.PGConstraint)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain entries, got %d", len(dump.Chain))
	}
}
