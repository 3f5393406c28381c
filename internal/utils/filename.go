package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters dropped from cover filenames (anything outside letters,
	// digits, underscores, whitespace and hyphens)
	invalidCoverChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	// Whitespace runs collapsed into a single underscore
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeTitleFragment turns a book title into a safe, length-capped
// filename fragment. The fragment is stable for a given title, so derived
// cover filenames stay predictable across runs.
func SanitizeTitleFragment(title string) string {
	fragment := invalidCoverChars.ReplaceAllString(title, "")
	if runes := []rune(fragment); len(runes) > 30 {
		fragment = string(runes[:30])
	}
	fragment = strings.TrimSpace(fragment)
	fragment = whitespaceRuns.ReplaceAllString(fragment, "_")
	return fragment
}
