// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PlatformScope marks a token entry that is not bound to one company.
const PlatformScope = "*"

// tokenCost is used for entries configured in plain text. The hash only
// lives in memory, so the minimum cost is enough to avoid keeping the
// plain token around.
const tokenCost = bcrypt.MinCost

var ErrBadTokenEntry = errors.New("access token entry must be scope:token")

type tokenEntry struct {
	company string
	hash    []byte
}

// TokenSet holds the sign-in tokens accepted when the gateway cannot
// authenticate callers itself (fixture and mongo sources). A nil *TokenSet
// means the gateway does the checking.
type TokenSet struct {
	entries []tokenEntry
}

// ParseTokenSet reads entries of the form "scope:token". Scope is a
// company ID, or "*" for platform-wide access. Token may already be a
// bcrypt hash; anything else is hashed here.
func ParseTokenSet(entries []string) (*TokenSet, error) {
	ts := &TokenSet{}
	for _, raw := range entries {
		scope, secret, ok := strings.Cut(strings.TrimSpace(raw), ":")
		scope, secret = strings.TrimSpace(scope), strings.TrimSpace(secret)
		if !ok || scope == "" || secret == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadTokenEntry, redact(raw))
		}
		hash := []byte(secret)
		if _, err := bcrypt.Cost(hash); err != nil {
			if hash, err = bcrypt.GenerateFromPassword([]byte(secret), tokenCost); err != nil {
				return nil, fmt.Errorf("hash access token for %s: %w", scope, err)
			}
		}
		company := scope
		if scope == PlatformScope {
			company = ""
		}
		ts.entries = append(ts.entries, tokenEntry{company: company, hash: hash})
	}
	return ts, nil
}

// Len reports how many tokens are accepted.
func (ts *TokenSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.entries)
}

// Lookup reports whether token is accepted and the company it is bound to
// ("" for platform-wide).
func (ts *TokenSet) Lookup(token string) (company string, ok bool) {
	if ts == nil || token == "" {
		return "", false
	}
	for _, e := range ts.entries {
		if bcrypt.CompareHashAndPassword(e.hash, []byte(token)) == nil {
			return e.company, true
		}
	}
	return "", false
}

// redact keeps the scope of a malformed entry for error messages.
func redact(raw string) string {
	if scope, _, ok := strings.Cut(raw, ":"); ok {
		return strings.TrimSpace(scope) + ":***"
	}
	return "***"
}
