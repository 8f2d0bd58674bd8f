// Package slug derives URL-safe identifiers from brand names and subdomains.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// subdomainRegex is the allowed character set for a brand subdomain.
var subdomainRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// collapseRegex matches runs of characters outside [a-z0-9-].
var collapseRegex = regexp.MustCompile(`[^a-z0-9-]+`)

// foldTransformer strips combining marks so accented input folds to ASCII.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ValidSubdomain reports whether s is a well-formed subdomain: non-empty,
// lowercase letters, digits, and hyphens only.
func ValidSubdomain(s string) bool {
	return subdomainRegex.MatchString(s)
}

// Normalize derives a slug from arbitrary input: folds diacritics, lowercases,
// replaces runs of disallowed characters with a single hyphen, and trims
// leading/trailing hyphens. Deterministic for identical input.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	lowered := strings.ToLower(strings.TrimSpace(folded))
	collapsed := collapseRegex.ReplaceAllString(lowered, "-")
	return strings.Trim(collapsed, "-")
}
