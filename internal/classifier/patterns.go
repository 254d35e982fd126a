package classifier

import (
	"path/filepath"
	"strings"
)

// signal maps a dependency name pattern to a tag.
//
// Pattern grammar:
//   - "name"      exact match
//   - "prefix/"   prefix match ("@nestjs/" matches "@nestjs/core")
//   - "*glob*"    filepath.Match wildcard, used for substring matches
type signal struct {
	pattern string
	tag     string
}

// firstMatch returns the tag of the first signal matching any of names.
func firstMatch(signals []signal, names []string) string {
	for _, s := range signals {
		for _, name := range names {
			if matchesPattern(name, s.pattern) {
				return s.tag
			}
		}
	}
	return ""
}

// allMatches returns the tags of every matching signal, in table order, without duplicates.
func allMatches(signals []signal, names []string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, s := range signals {
		if seen[s.tag] {
			continue
		}
		for _, name := range names {
			if matchesPattern(name, s.pattern) {
				tags = append(tags, s.tag)
				seen[s.tag] = true
				break
			}
		}
	}
	return tags
}

// matchesPattern checks if a dependency name matches a given pattern
func matchesPattern(name, pattern string) bool {
	name = strings.ToLower(name)
	if name == pattern {
		return true
	}
	if matchesWildcardPattern(name, pattern) {
		return true
	}
	return matchesPrefixPattern(name, pattern)
}

// matchesWildcardPattern checks if name matches a wildcard pattern
func matchesWildcardPattern(name, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return false
	}

	matched, err := filepath.Match(pattern, name)
	return err == nil && matched
}

// matchesPrefixPattern checks if name matches a prefix pattern
func matchesPrefixPattern(name, pattern string) bool {
	if !strings.HasSuffix(pattern, "/") {
		return false
	}
	return strings.HasPrefix(name, pattern) || name == strings.TrimSuffix(pattern, "/")
}
