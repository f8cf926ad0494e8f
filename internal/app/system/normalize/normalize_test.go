package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Amara Okafor", "Amara Okafor"},
		{"  Amara Okafor  ", "Amara Okafor"},
		{"Amara   Okafor", "Amara Okafor"},
		{"", ""},
		{"   ", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"}, // Name preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatusAndRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"active", "active"},
		{"ACTIVE", "active"},
		{"  EditingTeacher  ", "editingteacher"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Status(tt.input); got != tt.want {
				t.Errorf("Status(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if got := Role(tt.input); got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryParam(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"search term", "search term"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
		{"UPPERCASE", "UPPERCASE"}, // Preserves case
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := QueryParam(tt.input)
			if got != tt.want {
				t.Errorf("QueryParam(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		full, first, last, username string
		want                        string
	}{
		{"Ngozi Eze", "N", "E", "ngozi", "Ngozi Eze"},
		{"", "Ngozi", "Eze", "ngozi", "Ngozi Eze"},
		{"", "Ngozi", "", "ngozi", "Ngozi"},
		{"  ", "", "", "ngozi", "ngozi"},
		{"", "", "", "", ""},
	}
	for _, tt := range tests {
		if got := FullName(tt.full, tt.first, tt.last, tt.username); got != tt.want {
			t.Errorf("FullName(%q,%q,%q,%q) = %q, want %q", tt.full, tt.first, tt.last, tt.username, got, tt.want)
		}
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault("  ", "TBD"); got != "TBD" {
		t.Errorf("OrDefault(blank) = %q", got)
	}
	if got := OrDefault(" Lagos ", "TBD"); got != "Lagos" {
		t.Errorf("OrDefault(value) = %q", got)
	}
}
