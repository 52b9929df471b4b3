// Package strings holds the list normalisation shared by configuration and
// role matching.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value into trimmed entries, dropping
// blanks and repeats. Order of first appearance is kept.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalize(strings.Split(raw, ","), false)
}

// FoldSet returns the trimmed, lowercased entries as a set. Blank entries are
// skipped.
func FoldSet(values []string) map[string]struct{} {
	folded := normalize(values, true)
	set := make(map[string]struct{}, len(folded))
	for _, v := range folded {
		set[v] = struct{}{}
	}
	return set
}

// Fold trims and lowercases a single value the same way FoldSet does.
func Fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalize(values []string, fold bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if fold {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
