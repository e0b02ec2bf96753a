package models

import (
	"regexp"
	"strings"
)

// Threads carry up to this many condition tags. More than this is a
// validation error, not a silent truncation.
const MaxConditionTags = 10

var REValidTag = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateTagText checks the free-form thread tags (not condition tags).
func ValidateTagText(text string) bool {
	if text == "" {
		return true
	}

	if len(text) > 20 {
		return false
	}
	if !REValidTag.MatchString(text) {
		return false
	}

	return true
}

var reWhitespaceRun = regexp.MustCompile(`\s+`)

func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}

// NormalizeConditionTag lowercases a tag and collapses its whitespace, so
// "  Type 2   Diabetes " and "type 2 diabetes" count as the same condition.
func NormalizeConditionTag(tag string) string {
	return normalizeText(tag)
}

// NormalizeConditionTags normalizes every tag and drops empties and
// duplicates, preserving first-seen order.
func NormalizeConditionTags(tags []string) []string {
	var result []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = NormalizeConditionTag(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

// NormalizeTitle produces the canonical form used to detect that a promotion
// seed duplicates an existing thread. Same rules as condition tags.
func NormalizeTitle(title string) string {
	return normalizeText(title)
}
