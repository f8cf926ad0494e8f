// Package normalize provides the small string canonicalizers applied to
// upstream fields before they reach dashboard entities.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query parameter. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// FullName picks the best display name for a user: the full name when
// present, otherwise "first last", otherwise the username.
func FullName(full, first, last, username string) string {
	if n := Name(full); n != "" {
		return n
	}
	if n := Name(first + " " + last); n != "" {
		return n
	}
	return Name(username)
}

// OrDefault returns def when s is blank after trimming.
func OrDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
