package domain

import (
	"errors"
	"testing"
)

func TestDomainErrorIs(t *testing.T) {
	err := ErrClientIDInvalid.WithDetails("client rocinate")

	if !errors.Is(err, ErrClientIDInvalid) {
		t.Error("detailed error should match its base by code")
	}
	if errors.Is(err, ErrAuthTokenInvalid) {
		t.Error("errors with different codes should not match")
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrStorage.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("WithCause should support errors.Is on the cause")
	}
	if ErrorCode(err) != "STORAGE_ERROR" {
		t.Errorf("ErrorCode = %q; want STORAGE_ERROR", ErrorCode(err))
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrScopeNotFound, "SCOPE_NOT_FOUND") {
		t.Error("IsDomainError should match by code")
	}
	if !IsDomainError(ErrScopeNotFound, "") {
		t.Error("empty code should match any DomainError")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("plain errors are not domain errors")
	}
}

func TestSessionIDFormat(t *testing.T) {
	id, err := GenerateSessionID()
	if err != nil {
		t.Fatal(err)
	}

	if !IsValidSessionID(id) {
		t.Errorf("generated id %q should validate", id)
	}
	for _, bad := range []string{"", "stss-", "stss-short", "tmss-01hgw2bw6qawx7e2vkv8pr4n0y", id + "x"} {
		if IsValidSessionID(bad) {
			t.Errorf("id %q should not validate", bad)
		}
	}
}

func TestRelationshipMatches(t *testing.T) {
	rel := &Relationship{
		Kind:     RelAuthorized,
		Username: "holden",
		ClientID: "rocinate",
		Scope:    "command",
	}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"empty predicate", Predicate{}, true},
		{"full match", Predicate{"username": "holden", "client_id": "rocinate"}, true},
		{"scope match", Predicate{"scope": "command"}, true},
		{"wrong user", Predicate{"username": "naomi"}, false},
		{"unknown key", Predicate{"color": "blue"}, false},
	}
	for _, tt := range tests {
		if got := rel.Matches(tt.pred); got != tt.want {
			t.Errorf("%s: Matches = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewCommandAssignsUniqueIDs(t *testing.T) {
	a := NewCommand("what time is it")
	b := NewCommand("what time is it")

	if a.ID == "" || b.ID == "" {
		t.Fatal("command ids must not be empty")
	}
	if a.ID == b.ID {
		t.Error("command ids must be unique")
	}
}
