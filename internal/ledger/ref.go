package ledger

import (
	"errors"
	"regexp"
)

// ErrInvalidRef means no ledger identifier could be extracted from the text.
var ErrInvalidRef = errors.New("no ledger id found in link")

var refPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ParseRef extracts the ledger identifier from a URL-shaped string, e.g.
// "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0".
func ParseRef(text string) (Ref, error) {
	m := refPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ErrInvalidRef
	}
	return Ref(m[1]), nil
}
