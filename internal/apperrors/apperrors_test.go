package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindPredicates(t *testing.T) {
	cases := []struct {
		err          error
		isValidation bool
		isNotFound   bool
		isStorage    bool
	}{
		{Validation("bad input %d", 7), true, false, false},
		{NotFound("missing %q", "x"), false, true, false},
		{Storage("query failed", errors.New("conn reset")), false, false, true},
		{errors.New("plain"), false, false, false},
		{nil, false, false, false},
	}
	for _, tc := range cases {
		if got := IsValidation(tc.err); got != tc.isValidation {
			t.Errorf("IsValidation(%v) = %v", tc.err, got)
		}
		if got := IsNotFound(tc.err); got != tc.isNotFound {
			t.Errorf("IsNotFound(%v) = %v", tc.err, got)
		}
		if got := IsStorage(tc.err); got != tc.isStorage {
			t.Errorf("IsStorage(%v) = %v", tc.err, got)
		}
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("check-in: %w", Validation("quantity must be positive"))
	if !IsValidation(wrapped) {
		t.Error("IsValidation should unwrap")
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Storage("pallet update failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Storage error should wrap its cause")
	}
}
