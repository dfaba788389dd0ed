package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNewAndAccessors(t *testing.T) {
	err := New(CodeNotFound, "product not found")
	if err.Code() != CodeNotFound {
		t.Fatalf("Code = %q", err.Code())
	}
	if err.Message() != "product not found" {
		t.Fatalf("Message = %q", err.Message())
	}
	if err.Error() != "NOT_FOUND: product not found" {
		t.Fatalf("Error = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Fatal("New must not carry a cause")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeInternal, cause, "loading product")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause must survive errors.Is")
	}
	if err.Code() != CodeInternal {
		t.Fatalf("Code = %q", err.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeValidation, nil, "bad input")
	if err.Unwrap() != nil {
		t.Fatal("nil cause must stay nil")
	}
	if err.Code() != CodeValidation {
		t.Fatalf("Code = %q", err.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeConflict, "cart was modified concurrently, please retry")
	outer := fmt.Errorf("mutating cart: %w", inner)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeConflict {
		t.Fatalf("As(%v) = %v", outer, typed)
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors must not convert")
	}
	if As(nil) != nil {
		t.Fatal("nil must not convert")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeInsufficientStock, "not enough stock").
		WithDetails(map[string]any{"available": 2, "requested": 5})

	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("Details = %T", err.Details())
	}
	if details["available"] != 2 || details["requested"] != 5 {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestMetadataFor(t *testing.T) {
	cases := []struct {
		code    Code
		status  int
		details bool
	}{
		{CodeValidation, http.StatusBadRequest, true},
		{CodeUnauthorized, http.StatusUnauthorized, false},
		{CodeForbidden, http.StatusForbidden, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeConflict, http.StatusConflict, false},
		{CodeInsufficientStock, http.StatusConflict, true},
		{CodeRateLimit, http.StatusTooManyRequests, false},
		{CodeInternal, http.StatusInternalServerError, false},
		{CodeDependency, http.StatusServiceUnavailable, true},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("%s: status %d, want %d", tc.code, meta.HTTPStatus, tc.status)
		}
		if meta.DetailsAllowed != tc.details {
			t.Fatalf("%s: DetailsAllowed %v, want %v", tc.code, meta.DetailsAllowed, tc.details)
		}
	}

	if meta := MetadataFor("NO_SUCH_CODE"); meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code must map to internal, got %d", meta.HTTPStatus)
	}
}

func TestDumpCollectsChainAndPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_users_email",
		TableName:      "users",
		Detail:         "Key (email) already exists.",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("creating user: %w", pgErr), "create user")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("Code = %q", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "idx_users_email" || dump.PGTable != "users" {
		t.Fatalf("postgres fields not extracted: %+v", dump)
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected full unwrap chain, got %v", dump.Chain)
	}

	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatalf("Dump(nil) = %+v", empty)
	}
}
