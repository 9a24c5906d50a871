package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/constants"
)

// ParseDate accepts either a calendar date (2006-01-02) or an RFC 3339
// timestamp. An empty string yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(constants.DateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}
	return &t, nil
}

// MustDate parses a calendar date and panics on failure. Used for fixtures.
func MustDate(value string) time.Time {
	t, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}
