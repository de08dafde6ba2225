package logging

import "testing"

func TestShouldMask(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"AWS_SECRET_ACCESS_KEY", true},
		{"github_token", true},
		{"bucket", false},
		{"slug", false},
	}
	for _, tt := range tests {
		if got := ShouldMask(tt.key); got != tt.want {
			t.Errorf("ShouldMask(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestMaskValue(t *testing.T) {
	if got := MaskValue("abc"); got != "********" {
		t.Errorf("MaskValue(short) = %q", got)
	}
	if got := MaskValue("abcdef12"); got != "****ef12" {
		t.Errorf("MaskValue(long) = %q", got)
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dsn with password", "postgres://ccdir:hunter2pass@db:5432/dir", "postgres://ccdir:%2A%2A%2A%2Apass@db:5432/dir"},
		{"no credentials", "https://example.com/x", "https://example.com/x"},
		{"user only", "postgres://ccdir@db/dir", "postgres://ccdir@db/dir"},
		{"sqlite path", "file:ccdir.db", "file:ccdir.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskURL(tt.in); got != tt.want {
				t.Errorf("MaskURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
