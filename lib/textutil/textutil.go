package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Slug lowercases name and replaces whitespace runs with dashes, ex.
// "Salad Bar" -> "salad-bar".
func Slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRegex.ReplaceAllString(name, "-")
}

// TrimItemName trims whitespace and trailing non-breaking space artifacts (both
// the literal entity and the decoded rune) off an item name.
func TrimItemName(name string) string {
	for {
		trimmed := strings.TrimSpace(name)
		trimmed = strings.TrimSuffix(trimmed, "&nbsp;")
		trimmed = strings.TrimRight(trimmed, "\u00a0 ")
		if trimmed == name {
			return trimmed
		}
		name = trimmed
	}
}

// Capitalize uppercases the first letter and lowercases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := []rune(strings.ToLower(s))
	lower[0] = []rune(strings.ToUpper(string(lower[0])))[0]
	return string(lower)
}

// SplitList splits a comma separated cell into trimmed, non-empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
