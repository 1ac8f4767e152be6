// Package channel extracts canonical channel identifiers from site paths.
//
// An identifier is the first path segment of a link or page URL when it is
// 3 to 25 characters of [a-zA-Z0-9_]. Identifiers are compared in their
// lowercase form, so "/TrainwrecksTV" and "/trainwreckstv" name the same
// channel.
package channel

import (
	"net/url"
	"regexp"
	"strings"
)

// ID is a canonical (lowercase) channel identifier.
type ID string

func (id ID) String() string { return string(id) }

var (
	hrefPattern = regexp.MustCompile(`^/([a-zA-Z0-9_]{3,25})(/|$)`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,25}$`)
)

// Extract returns the identifier named by the first segment of a
// site-relative href such as "/name" or "/name/clips". Anything else,
// including absolute URLs, fragment-only hrefs and "/name?query", yields
// ok == false.
func Extract(href string) (ID, bool) {
	m := hrefPattern.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return ID(strings.ToLower(m[1])), true
}

// FromURL extracts the identifier of a full page URL from its path.
func FromURL(raw string) (ID, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return Extract(u.Path)
}

// Parse validates a bare identifier (no leading slash) and canonicalises it.
func Parse(name string) (ID, bool) {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) {
		return "", false
	}
	return ID(strings.ToLower(name)), true
}
