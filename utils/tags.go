package utils

import "strings"

// SplitTags parses a comma separated tag field. Entries are trimmed and
// empty ones dropped; duplicates are kept in input order.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags, used to prefill edit forms.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
