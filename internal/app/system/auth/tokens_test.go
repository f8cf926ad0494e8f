package auth_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenSet_Lookup(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	ts, err := auth.ParseTokenSet([]string{
		"*:platform-secret",
		" sch-1 : school-secret ",
		"sch-2:" + string(hashed),
	})
	if err != nil {
		t.Fatalf("ParseTokenSet: %v", err)
	}
	if ts.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ts.Len())
	}

	tests := []struct {
		token       string
		wantOK      bool
		wantCompany string
	}{
		{"platform-secret", true, ""},
		{"school-secret", true, "sch-1"},
		{"hashed-secret", true, "sch-2"},
		{"bogus", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		company, ok := ts.Lookup(tt.token)
		if ok != tt.wantOK || company != tt.wantCompany {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.token, company, ok, tt.wantCompany, tt.wantOK)
		}
	}
}

func TestTokenSet_NilAndEmpty(t *testing.T) {
	var nilSet *auth.TokenSet
	if _, ok := nilSet.Lookup("anything"); ok {
		t.Error("nil set should accept nothing")
	}
	empty, err := auth.ParseTokenSet(nil)
	if err != nil {
		t.Fatalf("ParseTokenSet(nil): %v", err)
	}
	if _, ok := empty.Lookup("anything"); ok {
		t.Error("empty set should accept nothing")
	}
}

func TestParseTokenSet_BadEntries(t *testing.T) {
	for _, entry := range []string{"no-scope", ":secret", "sch-1:", "  "} {
		if _, err := auth.ParseTokenSet([]string{entry}); !errors.Is(err, auth.ErrBadTokenEntry) {
			t.Errorf("ParseTokenSet(%q) err = %v, want ErrBadTokenEntry", entry, err)
		}
	}
}
