package model

import "testing"

func TestOperationType_IsValid(t *testing.T) {
	t.Parallel()

	for _, typ := range OperationTypes {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}

	invalid := []OperationType{"", "modulo", "Addition", "random", "sqrt"}
	for _, typ := range invalid {
		if typ.IsValid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}

func TestUserStatus_IsValid(t *testing.T) {
	t.Parallel()

	if !StatusActive.IsValid() || !StatusSuspended.IsValid() {
		t.Error("known statuses should be valid")
	}
	if UserStatus("deleted").IsValid() {
		t.Error("unknown status should be invalid")
	}
}
