package dedup

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	titlePrefixPattern = regexp.MustCompile(`^(breaking:?\s*|just in:?\s*|update:?\s*)`)
	titleSuffixPattern = regexp.MustCompile(`\s*-\s*[^-]+$`)
	punctPattern       = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spacePattern       = regexp.MustCompile(`\s+`)

	caseFolder = cases.Fold()
)

// Tracking query parameters stripped during URL canonicalization.
var trackingParams = []string{"utm_", "ref", "source", "campaign", "fbclid", "gclid"}

// CanonicalURL normalizes a URL into the item's canonical identifier:
// scheme and www. are dropped, host is lowercased, tracking parameters and
// fragments are removed, and the trailing slash is trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Not parseable as an absolute URL; fall back to a lowercase trim.
		return strings.TrimRight(strings.ToLower(raw), "/")
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimRight(u.Path, "/")

	query := u.Query()
	for key := range query {
		if isTrackingParam(key) {
			query.Del(key)
		}
	}

	canonical := host + path
	if encoded := query.Encode(); encoded != "" {
		canonical += "?" + encoded
	}

	return canonical
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	for _, param := range trackingParams {
		if strings.HasSuffix(param, "_") {
			if strings.HasPrefix(key, param) {
				return true
			}
		} else if key == param {
			return true
		}
	}
	return false
}

// NormalizeTitle prepares a title for similarity comparison: Unicode
// normalization and case folding, editorial prefixes and trailing source
// suffixes stripped, punctuation removed, whitespace collapsed.
func NormalizeTitle(title string) string {
	title = norm.NFKC.String(title)
	title = caseFolder.String(title)
	title = titlePrefixPattern.ReplaceAllString(title, "")
	title = titleSuffixPattern.ReplaceAllString(title, "")
	title = punctPattern.ReplaceAllString(title, " ")
	title = spacePattern.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
