package sync

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ReservedIdentityDir is the per-root directory holding the default system
// identity. It never syncs, regardless of configuration.
const ReservedIdentityDir = "default"

// IgnoreFilter decides whether a root-relative path participates in sync.
// The same filter instance is consulted by the initial walk, the live event
// path and restore, so the three can never disagree about membership.
type IgnoreFilter struct {
	patterns []string
	regexps  []*regexp.Regexp
}

// NewIgnoreFilter creates a filter from literal substrings and compiled
// expressions.
func NewIgnoreFilter(patterns []string, regexps []*regexp.Regexp) *IgnoreFilter {
	return &IgnoreFilter{patterns: patterns, regexps: regexps}
}

// Ignored reports whether the given root-relative path is excluded from
// sync. The reserved identity directory is always excluded, then literal
// patterns, then regular expressions.
func (f *IgnoreFilter) Ignored(relPath string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	if normalized == ReservedIdentityDir || strings.HasPrefix(normalized, ReservedIdentityDir+"/") {
		return true
	}
	for _, pattern := range f.patterns {
		if pattern != "" && strings.Contains(normalized, pattern) {
			return true
		}
	}
	for _, re := range f.regexps {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
