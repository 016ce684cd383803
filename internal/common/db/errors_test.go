package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
)

var errNotFound = errors.New("not found")

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	other := &pgconn.PgError{Code: "23502"}

	if !IsUniqueViolation(unique) {
		t.Error("expected 23505 to be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(other) {
		t.Error("expected 23502 not to be a unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("expected plain error not to be a unique violation")
	}
}

func TestHandleQueryError(t *testing.T) {
	start := time.Now()

	if err := HandleQueryError(nil, errNotFound, "find user", start); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	if err := HandleQueryError(pgx.ErrNoRows, errNotFound, "find user", start); !errors.Is(err, errNotFound) {
		t.Errorf("expected not found sentinel, got %v", err)
	}

	cause := errors.New("connection reset")
	err := HandleQueryError(cause, errNotFound, "find user", start)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if !errors.Is(err, commonerrors.ErrDatabaseError) {
		t.Errorf("expected ErrDatabaseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to find user") {
		t.Errorf("expected operation in message, got %q", err.Error())
	}
}

func TestHandleExecError(t *testing.T) {
	if err := HandleExecError(nil, "insert user", time.Now()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	cause := errors.New("disk full")
	if err := HandleExecError(cause, "insert user", time.Now()); !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestExtractTableFromOperation(t *testing.T) {
	if got := extractTableFromOperation("insert user"); got != "users" {
		t.Errorf("expected users, got %s", got)
	}
	if got := extractTableFromOperation("ping"); got != "unknown" {
		t.Errorf("expected unknown, got %s", got)
	}
}
