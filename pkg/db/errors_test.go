package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestWrapErrorBadNoRows(t *testing.T) {
	for _, e := range []error{
		fmt.Errorf("foo"),
		errors.New("bar"),
	} {
		if err := WrapError(e); err != e {
			t.Errorf("WrapError(%v) => %v, want %v", e, err, e)
		}
	}
}

func TestWrapErrorGoodNoRows(t *testing.T) {
	if err := WrapError(sql.ErrNoRows); err != ErrRecordNotFound {
		t.Errorf("WrapError(sql.ErrNoRows) => %v, want %v", err, ErrRecordNotFound)
	}
	wrapped := fmt.Errorf("get user: %w", sql.ErrNoRows)
	if err := WrapError(wrapped); err != ErrRecordNotFound {
		t.Errorf("WrapError(%v) => %v, want %v", wrapped, err, ErrRecordNotFound)
	}
}

func TestWrapErrorPostgresUnique(t *testing.T) {
	if err := WrapError(&pq.Error{Code: "23505"}); err != ErrDuplicateKey {
		t.Errorf("WrapError(unique_violation) => %v, want %v", err, ErrDuplicateKey)
	}
	fk := &pq.Error{Code: "23503"}
	if err := WrapError(fk); err != fk {
		t.Errorf("WrapError(foreign_key_violation) => %v, want %v", err, fk)
	}
}

func TestWrapErrorNil(t *testing.T) {
	if err := WrapError(nil); err != nil {
		t.Errorf("WrapError(nil) => %v, want nil", err)
	}
}
