package logger

import "testing"

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, c := range cases {
		if got := RedactEmail(c.in); got != c.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRedactPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 (555) 867-5309", "***09"},
		{"5551234", "***34"},
		{"x", "***"},
	}
	for _, c := range cases {
		if got := RedactPhone(c.in); got != c.want {
			t.Errorf("RedactPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRedactPIIValue(t *testing.T) {
	cases := []struct {
		key  string
		val  string
		want string
	}{
		{"contact_email", "john.doe@example.com", "jo***@example.com"},
		{"recipient", "jane@example.com", "ja***@example.com"},
		{"phone", "555-867-5309", "***09"},
		{"note", "ping sara.lee@example.com tomorrow", "ping sa***@example.com tomorrow"},
		{"message_id", "b2c0f1d4", "b2c0f1d4"},
	}
	for _, c := range cases {
		if got := redactPIIValue(c.key, c.val); got != c.want {
			t.Errorf("redactPIIValue(%q, %q) = %q, want %q", c.key, c.val, got, c.want)
		}
	}
}
