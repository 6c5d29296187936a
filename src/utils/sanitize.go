package utils

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	fieldKeyRe   = regexp.MustCompile(`[^a-z0-9-_]`)
)

// Sanitize converts a field label or slug into a storage-safe key:
// lowercase, trimmed, whitespace collapsed to "_", everything outside
// [a-z0-9-_] stripped. Idempotent.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRe.ReplaceAllString(s, "_")
	return fieldKeyRe.ReplaceAllString(s, "")
}

// CollectionName derives the entry collection for a form, optionally
// suffixed with the project name. The frontend sometimes sends the literal
// string "null" for the project; treat it as absent.
func CollectionName(slug, projectName string) string {
	p := strings.TrimSpace(projectName)
	if p != "" && p != "null" {
		return Sanitize(slug) + "_" + Sanitize(p)
	}
	return Sanitize(slug)
}

// SearchRegex builds a case-insensitive Mongo regex with all special
// characters escaped, so user input can never widen the match.
func SearchRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
}
