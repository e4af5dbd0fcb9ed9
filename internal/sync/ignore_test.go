package sync

import (
	"regexp"
	"testing"
)

func TestIgnoreFilter_ReservedDir(t *testing.T) {
	// The reserved identity dir is excluded even with an empty pattern list.
	filter := NewIgnoreFilter(nil, nil)

	reserved := []string{
		"default",
		"default/profile.json",
		"default/keys/identity.pem",
	}
	for _, path := range reserved {
		if !filter.Ignored(path) {
			t.Errorf("%q should always be ignored", path)
		}
	}

	if filter.Ignored("defaults/profile.json") {
		t.Error("defaults/ is not the reserved dir and should sync")
	}
	if filter.Ignored("data/default.json") {
		t.Error("a file merely named default.json should sync")
	}
}

func TestIgnoreFilter_Patterns(t *testing.T) {
	filter := NewIgnoreFilter(
		[]string{".tmp", "cache/"},
		[]*regexp.Regexp{regexp.MustCompile(`\.log$`)},
	)

	tests := []struct {
		path    string
		ignored bool
	}{
		{"data/file.txt", false},
		{"data/file.tmp", true},
		{"cache/blob", true},
		{"deep/cache/blob", true},
		{"logs/app.log", true},
		{"logs/app.log.1", false},
		{"notes.md", false},
	}
	for _, tt := range tests {
		if got := filter.Ignored(tt.path); got != tt.ignored {
			t.Errorf("Ignored(%q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestIgnoreFilter_LeadingDotSlash(t *testing.T) {
	filter := NewIgnoreFilter([]string{"secret"}, nil)
	if !filter.Ignored("./default/inner.txt") {
		t.Error("reserved dir should be ignored with a ./ prefix")
	}
	if !filter.Ignored("./dir/secret.txt") {
		t.Error("pattern match should survive a ./ prefix")
	}
}
