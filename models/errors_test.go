package models

import (
	"errors"
	"testing"
)

func TestFetchErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	ferr := NewFetchError(ErrCodeStore, "upsert failed", cause)

	if !errors.Is(ferr, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := ferr.Error(); got != "STORE_FAILURE: upsert failed: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFetchErrorWithoutCause(t *testing.T) {
	ferr := NewFetchError(ErrCodeInvalidInput, "url is required", nil)

	if got := ferr.Error(); got != "INVALID_INPUT: url is required" {
		t.Errorf("Error() = %q", got)
	}
	if ferr.Unwrap() != nil {
		t.Error("Unwrap should be nil without a cause")
	}
}

func TestFetchErrorToDetail(t *testing.T) {
	ferr := NewFetchError(ErrCodeInternal, "aggregating results failed", errors.New("sql: database is closed"))
	detail := ferr.ToDetail()

	if detail.Code != ErrCodeInternal {
		t.Errorf("Code = %q, want %q", detail.Code, ErrCodeInternal)
	}
	// The wrapped cause stays internal; only the message crosses the API.
	if detail.Message != "aggregating results failed" {
		t.Errorf("Message = %q", detail.Message)
	}
}
